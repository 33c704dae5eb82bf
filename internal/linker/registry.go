package linker

import (
	"github.com/dshills/scipdex/pkg/scip"
)

// entry pairs a definition with the document that owns it.
type entry struct {
	doc *scip.Document
	sym *scip.SymbolInformation
}

// AliasFunc supplies a package-qualified alias for a definition, for
// languages with package-qualified naming. ok is false when no alias applies.
type AliasFunc func(doc *scip.Document, sym *scip.SymbolInformation) (alias string, ok bool)

// Registry is the ephemeral pass-1 map from symbol id (and qualified alias)
// to definition. Built once per link run and discarded afterwards.
type Registry struct {
	entries map[string]entry
}

// BuildRegistry indexes every definition in docs by its symbol id, plus its
// qualified alias when aliasFn provides one. aliasFn may be nil.
func BuildRegistry(docs []*scip.Document, aliasFn AliasFunc) *Registry {
	r := &Registry{entries: make(map[string]entry)}
	for _, doc := range docs {
		for _, sym := range doc.Symbols {
			e := entry{doc: doc, sym: sym}
			r.entries[sym.Symbol] = e
			if aliasFn != nil {
				if alias, ok := aliasFn(doc, sym); ok {
					r.entries[alias] = e
				}
			}
		}
	}
	return r
}

// Lookup resolves a symbol id or qualified alias.
func (r *Registry) Lookup(id string) (entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	return len(r.entries)
}
