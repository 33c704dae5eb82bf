package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/scipdex/pkg/scip"
)

func validDocument() *scip.Document {
	return &scip.Document{
		RelativePath: "util/parse.go",
		Language:     "go",
		Symbols: []*scip.SymbolInformation{
			{Symbol: "local Parse().", DisplayName: "Parse", Kind: scip.KindFunction},
		},
		Occurrences: []*scip.Occurrence{
			{Symbol: "local Parse().", Range: scip.Range{StartLine: 3, EndLine: 3, EndColumn: 5}, Roles: scip.RoleDefinition},
		},
	}
}

func TestValidateDocument_Clean(t *testing.T) {
	r := ValidateDocument(validDocument())
	assert.True(t, r.Valid())
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestValidateDocument_BadSymbolID(t *testing.T) {
	doc := validDocument()
	doc.Symbols[0].Symbol = "bad id"
	doc.Occurrences = nil

	r := ValidateDocument(doc)
	assert.False(t, r.Valid())
	require.NotEmpty(t, r.Errors)
	assert.Contains(t, r.Errors[0].Message, "invalid symbol id")
}

func TestValidateDocument_BadKind(t *testing.T) {
	doc := validDocument()
	doc.Symbols[0].Kind = "gadget"

	r := ValidateDocument(doc)
	assert.False(t, r.Valid())
}

func TestValidateDocument_DuplicateSymbol(t *testing.T) {
	doc := validDocument()
	doc.Symbols = append(doc.Symbols, &scip.SymbolInformation{
		Symbol: "local Parse().", DisplayName: "Parse", Kind: scip.KindFunction,
	})

	r := ValidateDocument(doc)
	assert.False(t, r.Valid())
	found := false
	for _, issue := range r.Errors {
		if issue.Message == "duplicate symbol id in document" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateDocument_UnorderedRange(t *testing.T) {
	doc := validDocument()
	doc.Occurrences[0].Range = scip.Range{StartLine: 5, EndLine: 3}

	r := ValidateDocument(doc)
	assert.False(t, r.Valid())
	assert.Contains(t, r.Errors[0].Message, "unordered")
}

func TestValidateDocument_UnknownRoleBits(t *testing.T) {
	doc := validDocument()
	doc.Occurrences[0].Roles |= 1 << 12

	r := ValidateDocument(doc)
	assert.False(t, r.Valid())
}

func TestValidateDocument_OrphanDefinitionWarns(t *testing.T) {
	doc := validDocument()
	doc.Occurrences = append(doc.Occurrences, &scip.Occurrence{
		Symbol: "local Ghost().",
		Range:  scip.Range{EndColumn: 1},
		Roles:  scip.RoleDefinition,
	})

	r := ValidateDocument(doc)
	assert.True(t, r.Valid(), "consistency issues warn, not fail")
	require.NotEmpty(t, r.Warnings)
	assert.Contains(t, r.Warnings[0].Message, "no symbol information")
}

func TestValidateDocument_RelationshipIssues(t *testing.T) {
	doc := validDocument()
	doc.Symbols[0].Relationships = []*scip.Relationship{
		{Symbol: "scip-go gomod m HEAD main().", IsReference: true},
		{Symbol: "scip-go gomod m HEAD other()."},
	}

	r := ValidateDocument(doc)
	assert.True(t, r.Valid())
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0].Message, "no flags")
}

func TestValidateIndex(t *testing.T) {
	index := &scip.Index{
		Metadata: scip.Metadata{
			ToolName:     "scipdex",
			TextEncoding: scip.EncodingUTF8,
		},
		Documents: []*scip.Document{validDocument()},
		ExternalSymbols: []*scip.SymbolInformation{
			{Symbol: "scip-go gomod m HEAD fmt", DisplayName: "fmt", Kind: scip.KindModule},
		},
	}
	r := ValidateIndex(index)
	assert.True(t, r.Valid())
	assert.Empty(t, r.Warnings)
}

func TestValidateIndex_BadEncoding(t *testing.T) {
	index := &scip.Index{Metadata: scip.Metadata{ToolName: "scipdex", TextEncoding: "latin-1"}}
	r := ValidateIndex(index)
	assert.False(t, r.Valid())
	assert.Contains(t, r.Errors[0].Message, "unsupported text encoding")
}

func TestValidateIndex_DuplicateDocuments(t *testing.T) {
	index := &scip.Index{
		Metadata:  scip.Metadata{ToolName: "scipdex", TextEncoding: scip.EncodingUTF8},
		Documents: []*scip.Document{validDocument(), validDocument()},
	}
	r := ValidateIndex(index)
	assert.False(t, r.Valid())
}

func TestValidateIndex_ExternalSymbols(t *testing.T) {
	index := &scip.Index{
		Metadata: scip.Metadata{ToolName: "scipdex", TextEncoding: scip.EncodingUTF8},
		ExternalSymbols: []*scip.SymbolInformation{
			{Symbol: "local notglobal", DisplayName: "x", Kind: scip.KindModule},
			{Symbol: "scip-go gomod m HEAD io", DisplayName: "io", Kind: scip.KindModule},
			{Symbol: "scip-go gomod m HEAD io", DisplayName: "io", Kind: scip.KindModule},
		},
	}
	r := ValidateIndex(index)
	require.Len(t, r.Errors, 2)
	assert.Contains(t, r.Errors[0].Message, "global id")
	assert.Contains(t, r.Errors[1].Message, "duplicate external symbol")
}

func TestIssueString(t *testing.T) {
	assert.Equal(t, "a.go: local X: bad", Issue{Path: "a.go", Symbol: "local X", Message: "bad"}.String())
	assert.Equal(t, "a.go: bad", Issue{Path: "a.go", Message: "bad"}.String())
	assert.Equal(t, "bad", Issue{Message: "bad"}.String())
}
