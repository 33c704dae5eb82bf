// Package extractor defines the per-language collaborator contract consumed
// by the indexing core, plus the two bundled implementations: a go/ast based
// extractor for Go sources and a fallback extractor that emits a single
// file-level symbol for anything else.
//
// The core never parses source itself. It hands each file's content to an
// Extractor and receives a Document of symbol definitions and occurrences.
// Cross-document linking consults the extractor for per-file import maps and
// package-qualified symbol aliases; an extractor may also take over linking
// entirely via BuildCrossDocumentRelationships.
package extractor
