package scip

// Document is the per-file record of symbol definitions and occurrences.
// A document is owned by the build that produced it and replaced wholesale
// when its file is re-indexed.
type Document struct {
	RelativePath string               `json:"relative_path"`
	Language     string               `json:"language"`
	Occurrences  []*Occurrence        `json:"occurrences,omitempty"`
	Symbols      []*SymbolInformation `json:"symbols,omitempty"`
}

// SymbolByID returns the SymbolInformation with the given symbol id, or nil.
func (d *Document) SymbolByID(id string) *SymbolInformation {
	for _, sym := range d.Symbols {
		if sym.Symbol == id {
			return sym
		}
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		RelativePath: d.RelativePath,
		Language:     d.Language,
	}
	// Nil slices stay nil so a clone round-trips deep equality.
	if d.Occurrences != nil {
		out.Occurrences = make([]*Occurrence, 0, len(d.Occurrences))
		for _, occ := range d.Occurrences {
			c := *occ
			out.Occurrences = append(out.Occurrences, &c)
		}
	}
	if d.Symbols != nil {
		out.Symbols = make([]*SymbolInformation, 0, len(d.Symbols))
		for _, sym := range d.Symbols {
			out.Symbols = append(out.Symbols, sym.Clone())
		}
	}
	return out
}
