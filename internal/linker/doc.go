// Package linker resolves cross-document symbol references into relationship
// edges over a complete document set.
//
// Linking is two-pass and language-generic. Pass 1 builds an ephemeral
// SymbolRegistry mapping every definition's id — and, where the extractor
// supplies one, a package-qualified alias — to its document and symbol. Pass 2
// walks every reference occurrence, computes the referenced symbol's id from
// the document's import map, and on a registry hit appends a reference edge to
// the target symbol, deduplicated on (source, target). The registry is
// discarded after linking.
//
// An extractor may take over linking entirely; otherwise the generic passes
// run, with or without aliasing depending on what the extractor provides.
//
// The containing symbol for a reference is approximated as the first
// top-level definition in the same document, since occurrences carry only a
// position, not a parent pointer.
package linker
