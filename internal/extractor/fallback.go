package extractor

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/dshills/scipdex/pkg/scip"
)

// FallbackExtractor handles files no language extractor claims. It emits a
// single file-level symbol and one occurrence spanning the whole file, which
// keeps unsupported files visible in the index without pretending to parse
// them.
type FallbackExtractor struct{}

// NewFallbackExtractor creates the fallback extractor.
func NewFallbackExtractor() *FallbackExtractor {
	return &FallbackExtractor{}
}

// Language returns "text".
func (e *FallbackExtractor) Language() string { return "text" }

// SupportedExtensions returns nil: the fallback accepts anything.
func (e *FallbackExtractor) SupportedExtensions() []string { return nil }

// CanHandle always reports true.
func (e *FallbackExtractor) CanHandle(path string) bool { return true }

// CreateDocument produces a document with one file-level symbol.
func (e *FallbackExtractor) CreateDocument(relativePath string, content []byte) (*scip.Document, error) {
	doc := &scip.Document{
		RelativePath: relativePath,
		Language:     e.Language(),
	}

	stem := strings.TrimSuffix(filepath.Base(relativePath), filepath.Ext(relativePath))
	if stem == "" {
		return doc, nil
	}

	id := "local " + stem
	doc.Symbols = append(doc.Symbols, &scip.SymbolInformation{
		Symbol:      id,
		DisplayName: stem,
		Kind:        scip.KindFile,
	})
	doc.Occurrences = append(doc.Occurrences, &scip.Occurrence{
		Symbol: id,
		Range: scip.Range{
			EndLine: bytes.Count(content, []byte("\n")),
		},
		Roles: scip.RoleDefinition,
	})
	return doc, nil
}

// ExternalSymbols returns nil: the fallback does not analyze dependencies.
func (e *FallbackExtractor) ExternalSymbols(docs []*scip.Document) []*scip.SymbolInformation {
	return nil
}

// BuildCrossDocumentRelationships declines; there is nothing to link.
func (e *FallbackExtractor) BuildCrossDocumentRelationships(docs []*scip.Document, index *scip.Index) (int, bool) {
	return 0, true
}

// FileImports returns nil: fallback documents carry no imports.
func (e *FallbackExtractor) FileImports(doc *scip.Document) map[string]string {
	return nil
}

// QualifiedSymbol reports no alias: fallback symbols are file-local only.
func (e *FallbackExtractor) QualifiedSymbol(doc *scip.Document, sym *scip.SymbolInformation) (string, bool) {
	return "", false
}
