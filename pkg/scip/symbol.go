package scip

import "errors"

// SymbolKind classifies a defined symbol.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindStruct    SymbolKind = "struct"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindConst     SymbolKind = "const"
	KindVar       SymbolKind = "var"
	KindField     SymbolKind = "field"
	KindModule    SymbolKind = "module"
	KindFile      SymbolKind = "file"
)

// SymbolInformation describes one defined symbol: its id, display name, kind,
// documentation, and the relationship edges that target it.
type SymbolInformation struct {
	Symbol        string          `json:"symbol"`
	DisplayName   string          `json:"display_name"`
	Kind          SymbolKind      `json:"kind"`
	Documentation []string        `json:"documentation,omitempty"`
	Relationships []*Relationship `json:"relationships,omitempty"`
}

// ValidateKind checks that the kind is a known enum value.
func (s *SymbolInformation) ValidateKind() error {
	switch s.Kind {
	case KindFunction, KindMethod, KindStruct, KindClass, KindInterface,
		KindType, KindConst, KindVar, KindField, KindModule, KindFile:
		return nil
	default:
		return errors.New("invalid symbol kind")
	}
}

// IsDefinitionKind reports whether the symbol can contain other code, i.e. it
// is a plausible "containing symbol" for a reference occurrence.
func (s *SymbolInformation) IsDefinitionKind() bool {
	switch s.Kind {
	case KindFunction, KindMethod, KindStruct, KindClass, KindInterface, KindType:
		return true
	default:
		return false
	}
}

// HasRelationship reports whether an edge from source already exists on this
// symbol's relationship list.
func (s *SymbolInformation) HasRelationship(source string) bool {
	for _, rel := range s.Relationships {
		if rel.Symbol == source {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the symbol information.
func (s *SymbolInformation) Clone() *SymbolInformation {
	out := &SymbolInformation{
		Symbol:      s.Symbol,
		DisplayName: s.DisplayName,
		Kind:        s.Kind,
	}
	out.Documentation = append([]string(nil), s.Documentation...)
	if s.Relationships != nil {
		out.Relationships = make([]*Relationship, 0, len(s.Relationships))
		for _, rel := range s.Relationships {
			c := *rel
			out.Relationships = append(out.Relationships, &c)
		}
	}
	return out
}
