// Package validator checks built documents and indexes against the
// interchange grammar before they are handed to callers.
//
// Violations are collected, not thrown: a Report carries structured errors
// and warnings and the caller decides whether to abort. Validation itself
// never mutates or repairs the input.
package validator

import (
	"fmt"

	"github.com/dshills/scipdex/internal/symbols"
	"github.com/dshills/scipdex/pkg/scip"
)

// Issue is one validation finding, located by document path and symbol id
// where applicable.
type Issue struct {
	Path    string
	Symbol  string
	Message string
}

func (i Issue) String() string {
	switch {
	case i.Path != "" && i.Symbol != "":
		return fmt.Sprintf("%s: %s: %s", i.Path, i.Symbol, i.Message)
	case i.Path != "":
		return fmt.Sprintf("%s: %s", i.Path, i.Message)
	case i.Symbol != "":
		return fmt.Sprintf("%s: %s", i.Symbol, i.Message)
	default:
		return i.Message
	}
}

// Report aggregates the findings of one validation run.
type Report struct {
	Errors   []Issue
	Warnings []Issue
}

// Valid reports whether the run found no errors. Warnings do not fail
// validation.
func (r *Report) Valid() bool { return len(r.Errors) == 0 }

func (r *Report) errorf(path, symbol, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Path: path, Symbol: symbol, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) warnf(path, symbol, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Path: path, Symbol: symbol, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) absorb(other *Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// ValidateDocument checks one document: symbol id grammar, kind enums,
// duplicate ids, range ordering, role bits, and occurrence/symbol
// consistency.
func ValidateDocument(doc *scip.Document) *Report {
	r := &Report{}
	path := doc.RelativePath

	if path == "" {
		r.errorf("", "", "document has no relative path")
	}
	if doc.Language == "" {
		r.warnf(path, "", "document has no language")
	}

	defined := make(map[string]bool, len(doc.Symbols))
	for _, sym := range doc.Symbols {
		if err := symbols.Validate(sym.Symbol); err != nil {
			r.errorf(path, sym.Symbol, "invalid symbol id: %v", err)
		}
		if err := sym.ValidateKind(); err != nil {
			r.errorf(path, sym.Symbol, "%v: %q", err, sym.Kind)
		}
		if defined[sym.Symbol] {
			r.errorf(path, sym.Symbol, "duplicate symbol id in document")
		}
		defined[sym.Symbol] = true
		if sym.DisplayName == "" {
			r.warnf(path, sym.Symbol, "symbol has no display name")
		}
		for _, rel := range sym.Relationships {
			if err := symbols.Validate(rel.Symbol); err != nil {
				r.errorf(path, sym.Symbol, "relationship source has invalid id %q: %v", rel.Symbol, err)
			}
			if !rel.IsReference && !rel.IsImplementation && !rel.IsTypeDefinition && !rel.IsDefinition {
				r.warnf(path, sym.Symbol, "relationship from %q carries no flags", rel.Symbol)
			}
		}
	}

	for i, occ := range doc.Occurrences {
		if err := symbols.Validate(occ.Symbol); err != nil {
			r.errorf(path, occ.Symbol, "occurrence %d has invalid symbol id: %v", i, err)
		}
		if !occ.Range.Valid() {
			r.errorf(path, occ.Symbol, "occurrence %d has unordered or negative range", i)
		}
		if err := occ.ValidateRoles(); err != nil {
			r.errorf(path, occ.Symbol, "occurrence %d: %v", i, err)
		}
		if occ.IsDefinition() && !defined[occ.Symbol] {
			r.warnf(path, occ.Symbol, "definition occurrence %d has no symbol information", i)
		}
	}

	return r
}

// ValidateIndex checks metadata, every document, duplicate document paths,
// and the external-symbol list.
func ValidateIndex(index *scip.Index) *Report {
	r := &Report{}

	if index.Metadata.ToolName == "" {
		r.warnf("", "", "metadata has no tool name")
	}
	if index.Metadata.TextEncoding != scip.EncodingUTF8 {
		r.errorf("", "", "unsupported text encoding %q", index.Metadata.TextEncoding)
	}

	seenPaths := make(map[string]bool, len(index.Documents))
	for _, doc := range index.Documents {
		if seenPaths[doc.RelativePath] {
			r.errorf(doc.RelativePath, "", "duplicate document path in index")
		}
		seenPaths[doc.RelativePath] = true
		r.absorb(ValidateDocument(doc))
	}

	seenExternal := make(map[string]bool, len(index.ExternalSymbols))
	for _, sym := range index.ExternalSymbols {
		if err := symbols.Validate(sym.Symbol); err != nil {
			r.errorf("", sym.Symbol, "invalid external symbol id: %v", err)
		} else if symbols.IsLocal(sym.Symbol) {
			r.errorf("", sym.Symbol, "external symbol must use a global id")
		}
		if err := sym.ValidateKind(); err != nil {
			r.errorf("", sym.Symbol, "%v: %q", err, sym.Kind)
		}
		if seenExternal[sym.Symbol] {
			r.errorf("", sym.Symbol, "duplicate external symbol id")
		}
		seenExternal[sym.Symbol] = true
	}

	return r
}
