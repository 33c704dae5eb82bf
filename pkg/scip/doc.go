// Package scip defines the interchange data model for code intelligence
// indexes: documents, symbol information, occurrences, and relationships.
//
// The model mirrors the SCIP interchange format. An Index is the project-wide
// artifact for one build; each Document records the symbols defined in one
// source file and every syntactic mention (Occurrence) of a symbol within it.
// Relationships are directed, typed edges between symbols, materialized on the
// target symbol's relationship list.
//
// Types in this package are plain data with validation helpers. The engines
// that produce and consume them live under internal/.
package scip
