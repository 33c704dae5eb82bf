package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/scipdex/internal/extractor"
	"github.com/dshills/scipdex/pkg/scip"
)

const utilSource = `package util

// Parse parses a raw input string.
func Parse(raw string) string {
	return raw
}
`

const mainSource = `package main

import (
	"fmt"

	"example.com/proj/util"
)

func main() {
	fmt.Println(util.Parse("x"))
}
`

const unrelatedSource = `package other

func Standalone() {}
`

func buildIndex(t *testing.T, ex *extractor.GoExtractor, files map[string]string) *scip.Index {
	t.Helper()
	index := &scip.Index{}
	// Stable order so containing symbols are predictable.
	for _, p := range []string{"util/parse.go", "main.go", "other/thing.go"} {
		src, ok := files[p]
		if !ok {
			continue
		}
		doc, err := ex.CreateDocument(p, []byte(src))
		require.NoError(t, err)
		index.Documents = append(index.Documents, doc)
	}
	return index
}

func TestLink_CrossDocumentReference(t *testing.T) {
	ex, err := extractor.NewGoExtractor("example.com/proj", "HEAD")
	require.NoError(t, err)

	index := buildIndex(t, ex, map[string]string{
		"util/parse.go":  utilSource,
		"main.go":        mainSource,
		"other/thing.go": unrelatedSource,
	})

	added := New(ex).Link(index)
	assert.Equal(t, 1, added)

	utilDoc := index.DocumentByPath("util/parse.go")
	require.NotNil(t, utilDoc)
	parse := utilDoc.SymbolByID("local Parse().")
	require.NotNil(t, parse)

	require.Len(t, parse.Relationships, 1)
	rel := parse.Relationships[0]
	assert.Equal(t, "scip-go gomod example.com/proj HEAD example.com/proj.main().", rel.Symbol)
	assert.True(t, rel.IsReference)

	// The unrelated document neither gains nor contributes edges.
	otherDoc := index.DocumentByPath("other/thing.go")
	require.NotNil(t, otherDoc)
	for _, sym := range otherDoc.Symbols {
		assert.Empty(t, sym.Relationships)
	}
}

func TestLink_Idempotent(t *testing.T) {
	ex, err := extractor.NewGoExtractor("example.com/proj", "HEAD")
	require.NoError(t, err)

	index := buildIndex(t, ex, map[string]string{
		"util/parse.go": utilSource,
		"main.go":       mainSource,
	})

	l := New(ex)
	assert.Equal(t, 1, l.Link(index))
	assert.Equal(t, 0, l.Link(index), "relinking adds no duplicate edges")

	parse := index.DocumentByPath("util/parse.go").SymbolByID("local Parse().")
	require.NotNil(t, parse)
	assert.Len(t, parse.Relationships, 1)
}

func TestLink_UnresolvedReferencesSkipped(t *testing.T) {
	ex, err := extractor.NewGoExtractor("example.com/proj", "HEAD")
	require.NoError(t, err)

	// main.go calls into util, but util/parse.go is absent from the set.
	index := buildIndex(t, ex, map[string]string{
		"main.go": mainSource,
	})

	assert.Equal(t, 0, New(ex).Link(index))
}

func TestLink_ExtractorOverride(t *testing.T) {
	fb := extractor.NewFallbackExtractor()
	doc, err := fb.CreateDocument("notes.txt", []byte("hello"))
	require.NoError(t, err)

	index := &scip.Index{Documents: []*scip.Document{doc}}
	assert.Equal(t, 0, New(fb).Link(index))
	assert.Empty(t, doc.Symbols[0].Relationships)
}

func TestResolveReference(t *testing.T) {
	imports := map[string]string{
		"util": "scip-go gomod example.com/proj HEAD example.com/proj/util",
	}

	tests := []struct {
		name string
		id   string
		want string
	}{
		{
			name: "selector through import map",
			id:   "local util.Parse().",
			want: "scip-go gomod example.com/proj HEAD example.com/proj/util.Parse().",
		},
		{
			name: "global id passes through",
			id:   "scip-go gomod example.com/dep v1 pkg.Fn().",
			want: "scip-go gomod example.com/dep v1 pkg.Fn().",
		},
		{
			name: "unknown package unresolvable",
			id:   "local strings.Split().",
			want: "",
		},
		{
			name: "bare local name unresolvable",
			id:   "local helper",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveReference(tt.id, imports))
		})
	}
}

func TestBuildRegistry_Aliases(t *testing.T) {
	ex, err := extractor.NewGoExtractor("example.com/proj", "HEAD")
	require.NoError(t, err)

	doc, err := ex.CreateDocument("util/parse.go", []byte(utilSource))
	require.NoError(t, err)

	r := BuildRegistry([]*scip.Document{doc}, ex.QualifiedSymbol)

	_, ok := r.Lookup("local Parse().")
	assert.True(t, ok)
	e, ok := r.Lookup("scip-go gomod example.com/proj HEAD example.com/proj/util.Parse().")
	require.True(t, ok)
	assert.Equal(t, "Parse", e.sym.DisplayName)
}

func TestContainingSymbol(t *testing.T) {
	doc := &scip.Document{
		Symbols: []*scip.SymbolInformation{
			{Symbol: "local pkg", Kind: scip.KindModule},
			{Symbol: "local First().", Kind: scip.KindFunction},
			{Symbol: "local Second().", Kind: scip.KindFunction},
		},
	}
	sym := containingSymbol(doc)
	require.NotNil(t, sym)
	assert.Equal(t, "local First().", sym.Symbol)

	assert.Nil(t, containingSymbol(&scip.Document{}))
}
