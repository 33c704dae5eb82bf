// Package symbols implements the symbol id grammar: generation and parsing of
// file-local and globally package-qualified symbol identifiers.
//
// Local form:
//
//	local <scope>.<name><suffix>
//
// Global form:
//
//	<scheme> <manager> <package> <version> <scope>.<name><suffix>
//
// Generation failures are *FormatError values scoped to the one symbol; a bad
// descriptor never fails the whole file.
package symbols
