package extractor

import (
	"path/filepath"
	"strings"

	"github.com/dshills/scipdex/pkg/scip"
)

// Extractor is implemented once per supported language and consumed by the
// indexing core.
type Extractor interface {
	// Language returns the language tag stamped on produced documents.
	Language() string

	// SupportedExtensions returns the file extensions (with leading dot)
	// this extractor handles.
	SupportedExtensions() []string

	// CanHandle reports whether the extractor accepts the given path.
	CanHandle(path string) bool

	// CreateDocument parses content into a per-file document. The returned
	// document carries the given relative path.
	CreateDocument(relativePath string, content []byte) (*scip.Document, error)

	// ExternalSymbols computes the external-symbol list for a document set.
	// It depends on every document's imports, so it is always recomputed in
	// full, never incrementally.
	ExternalSymbols(docs []*scip.Document) []*scip.SymbolInformation

	// BuildCrossDocumentRelationships may take over cross-document linking.
	// It returns the number of relationship edges added and whether the
	// extractor handled linking at all; when handled is false the generic
	// linker runs instead.
	BuildCrossDocumentRelationships(docs []*scip.Document, index *scip.Index) (added int, handled bool)

	// FileImports returns the document's import map: locally visible name
	// to the imported target's symbol id. Derived from the document itself
	// so cached documents resolve identically to freshly parsed ones.
	FileImports(doc *scip.Document) map[string]string

	// QualifiedSymbol returns the package-qualified alias for a symbol
	// defined in doc, for languages with package-qualified naming. ok is
	// false when no alias applies.
	QualifiedSymbol(doc *scip.Document, sym *scip.SymbolInformation) (alias string, ok bool)
}

// ForPath selects the first extractor that can handle path, falling back to
// the last entry. Callers put the fallback extractor last.
func ForPath(extractors []Extractor, path string) Extractor {
	for _, ex := range extractors {
		if ex.CanHandle(path) {
			return ex
		}
	}
	if len(extractors) > 0 {
		return extractors[len(extractors)-1]
	}
	return nil
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
