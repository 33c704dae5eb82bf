package scip

// Index is the project-wide artifact containing all documents, symbols, and
// external symbols for one build.
type Index struct {
	Metadata        Metadata             `json:"metadata"`
	Documents       []*Document          `json:"documents"`
	ExternalSymbols []*SymbolInformation `json:"external_symbols,omitempty"`
}

// Metadata identifies the tool and project that produced an index.
type Metadata struct {
	ToolName      string   `json:"tool_name"`
	ToolVersion   string   `json:"tool_version"`
	ToolArguments []string `json:"tool_arguments,omitempty"`
	ProjectRoot   string   `json:"project_root"`
	TextEncoding  string   `json:"text_encoding"`
}

// EncodingUTF8 is the only text encoding produced by this indexer.
const EncodingUTF8 = "UTF-8"

// DocumentByPath returns the document with the given relative path, or nil.
func (idx *Index) DocumentByPath(relativePath string) *Document {
	for _, doc := range idx.Documents {
		if doc.RelativePath == relativePath {
			return doc
		}
	}
	return nil
}

// Clone returns a deep copy of the index. Incremental builds mutate document
// sets; cloning keeps the caller's prior index intact.
func (idx *Index) Clone() *Index {
	out := &Index{Metadata: idx.Metadata}
	out.Metadata.ToolArguments = append([]string(nil), idx.Metadata.ToolArguments...)
	if idx.Documents != nil {
		out.Documents = make([]*Document, 0, len(idx.Documents))
		for _, doc := range idx.Documents {
			out.Documents = append(out.Documents, doc.Clone())
		}
	}
	if idx.ExternalSymbols != nil {
		out.ExternalSymbols = make([]*SymbolInformation, 0, len(idx.ExternalSymbols))
		for _, sym := range idx.ExternalSymbols {
			out.ExternalSymbols = append(out.ExternalSymbols, sym.Clone())
		}
	}
	return out
}
