package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/scipdex/pkg/scip"
)

func indexWith(root string, paths ...string) *scip.Index {
	idx := &scip.Index{
		Metadata: scip.Metadata{ToolName: "scipdex", ProjectRoot: root, TextEncoding: scip.EncodingUTF8},
	}
	for _, p := range paths {
		idx.Documents = append(idx.Documents, &scip.Document{RelativePath: p, Language: "go"})
	}
	return idx
}

func TestMerge_Empty(t *testing.T) {
	_, err := Merge(nil, nil)
	assert.ErrorIs(t, err, ErrNoIndexes)
}

func TestMerge_DocumentDedup(t *testing.T) {
	a := indexWith("/a", "x.go", "a.go")
	b := indexWith("/b", "x.go", "b.go")

	merged, err := Merge([]*scip.Index{a, b}, nil)
	require.NoError(t, err)

	paths := make([]string, 0, len(merged.Documents))
	for _, doc := range merged.Documents {
		paths = append(paths, doc.RelativePath)
	}
	assert.Equal(t, []string{"x.go", "a.go", "b.go"}, paths)

	// First occurrence wins.
	assert.Same(t, a.Documents[0], merged.Documents[0])
}

func TestMerge_ExternalSymbolDedup(t *testing.T) {
	a := indexWith("/a", "a.go")
	a.ExternalSymbols = []*scip.SymbolInformation{
		{Symbol: "scip-go gomod m HEAD fmt", DisplayName: "fmt", Kind: scip.KindModule},
	}
	b := indexWith("/b", "b.go")
	b.ExternalSymbols = []*scip.SymbolInformation{
		{Symbol: "scip-go gomod m HEAD fmt", DisplayName: "fmt", Kind: scip.KindModule},
		{Symbol: "scip-go gomod m HEAD io", DisplayName: "io", Kind: scip.KindModule},
	}

	merged, err := Merge([]*scip.Index{a, b}, nil)
	require.NoError(t, err)
	require.Len(t, merged.ExternalSymbols, 2)
	assert.Equal(t, "fmt", merged.ExternalSymbols[0].DisplayName)
	assert.Equal(t, "io", merged.ExternalSymbols[1].DisplayName)
}

func TestMerge_Metadata(t *testing.T) {
	a := indexWith("/a", "a.go")
	b := indexWith("/b", "b.go")

	merged, err := Merge([]*scip.Index{a, b}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/a", merged.Metadata.ProjectRoot, "first index's metadata by default")

	override := &scip.Metadata{ToolName: "scipdex", ProjectRoot: "/merged", TextEncoding: scip.EncodingUTF8}
	merged, err = Merge([]*scip.Index{a, b}, override)
	require.NoError(t, err)
	assert.Equal(t, "/merged", merged.Metadata.ProjectRoot)
}
