package linker

import (
	"log"
	"strings"

	"github.com/dshills/scipdex/internal/extractor"
	"github.com/dshills/scipdex/internal/symbols"
	"github.com/dshills/scipdex/pkg/scip"
)

// Linker builds the global relationship graph across a document set.
type Linker struct {
	ex extractor.Extractor
}

// New creates a linker backed by the given extractor's import and alias
// semantics.
func New(ex extractor.Extractor) *Linker {
	return &Linker{ex: ex}
}

// Link resolves cross-document references in the index and returns the number
// of relationship edges added. If the extractor implements linking itself,
// its result is used; otherwise the generic two passes run.
func (l *Linker) Link(index *scip.Index) int {
	if added, handled := l.ex.BuildCrossDocumentRelationships(index.Documents, index); handled {
		return added
	}
	return l.linkGeneric(index.Documents, l.ex.QualifiedSymbol)
}

func (l *Linker) linkGeneric(docs []*scip.Document, aliasFn AliasFunc) int {
	// Pass 1: registry of every definition, plus qualified aliases.
	registry := BuildRegistry(docs, aliasFn)
	log.Printf("linker: built symbol registry with %d entries for %d documents", registry.Len(), len(docs))

	// Pass 2: resolve reference occurrences through each document's import
	// map and attach edges to the targets.
	added := 0
	for _, doc := range docs {
		var imports map[string]string
		if l.ex != nil {
			imports = l.ex.FileImports(doc)
		}
		if len(imports) == 0 {
			continue
		}

		source := containingSymbol(doc)
		if source == nil {
			continue
		}
		sourceID := source.Symbol
		if aliasFn != nil {
			if alias, ok := aliasFn(doc, source); ok {
				sourceID = alias
			}
		}

		for _, occ := range doc.Occurrences {
			if !occ.IsReference() {
				continue
			}
			targetID := resolveReference(occ.Symbol, imports)
			if targetID == "" {
				continue
			}
			target, ok := registry.Lookup(targetID)
			if !ok {
				continue
			}
			if target.sym == source {
				continue
			}
			// Duplicate guard on (source, target).
			if target.sym.HasRelationship(sourceID) {
				continue
			}
			target.sym.Relationships = append(target.sym.Relationships, &scip.Relationship{
				Symbol:      sourceID,
				IsReference: true,
			})
			added++
		}
	}

	log.Printf("linker: added %d cross-document relationships", added)
	return added
}

// resolveReference computes the referenced symbol's id from the occurrence
// and the document's import map. Global occurrence ids are already resolved;
// local ones resolve their first scope component through the imports.
func resolveReference(occSymbol string, imports map[string]string) string {
	if !symbols.IsLocal(occSymbol) {
		return occSymbol
	}
	desc := symbols.LocalDescriptor(occSymbol)
	first, remainder := desc, ""
	if i := strings.IndexByte(desc, '.'); i >= 0 {
		first, remainder = desc[:i], desc[i+1:]
	}
	target, ok := imports[first]
	if !ok {
		return ""
	}
	if remainder != "" {
		target += "." + remainder
	}
	return target
}

// containingSymbol approximates the symbol a reference belongs to as the
// first top-level definition in the document. Occurrences carry only a
// position, not a parent pointer, so this is a heuristic, not a scope lookup.
func containingSymbol(doc *scip.Document) *scip.SymbolInformation {
	for _, sym := range doc.Symbols {
		if sym.IsDefinitionKind() {
			return sym
		}
	}
	return nil
}
