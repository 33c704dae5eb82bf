package scip

import "errors"

// SymbolRoles is a bitset describing how a symbol is used at an occurrence.
type SymbolRoles int32

const (
	RoleDefinition SymbolRoles = 1 << 0
	RoleImport     SymbolRoles = 1 << 1
	RoleWrite      SymbolRoles = 1 << 2
	RoleRead       SymbolRoles = 1 << 3
	RoleTest       SymbolRoles = 1 << 5
)

const roleMask = RoleDefinition | RoleImport | RoleWrite | RoleRead | RoleTest

// Range is a half-open source range: (StartLine, StartColumn) up to
// (EndLine, EndColumn), zero-based.
type Range struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
}

// Valid reports whether the range is ordered and non-negative.
func (r Range) Valid() bool {
	if r.StartLine < 0 || r.StartColumn < 0 || r.EndLine < 0 || r.EndColumn < 0 {
		return false
	}
	if r.StartLine > r.EndLine {
		return false
	}
	return r.StartLine < r.EndLine || r.StartColumn <= r.EndColumn
}

// Occurrence is a single syntactic mention of a symbol with its position and
// role bitset.
type Occurrence struct {
	Symbol string      `json:"symbol"`
	Range  Range       `json:"range"`
	Roles  SymbolRoles `json:"roles"`
}

// IsDefinition reports whether the definition role bit is set.
func (o *Occurrence) IsDefinition() bool {
	return o.Roles&RoleDefinition != 0
}

// IsReference reports whether the occurrence is a read reference that is not
// itself a definition.
func (o *Occurrence) IsReference() bool {
	return o.Roles&RoleRead != 0 && o.Roles&RoleDefinition == 0
}

// ValidateRoles checks that only known role bits are set.
func (o *Occurrence) ValidateRoles() error {
	if o.Roles&^roleMask != 0 {
		return errors.New("unknown symbol role bits")
	}
	return nil
}
