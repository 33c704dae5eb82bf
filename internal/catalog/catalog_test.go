package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestProjectLifecycle(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	_, err := c.GetProject(ctx, "/proj")
	assert.ErrorIs(t, err, ErrNotFound)

	project, err := c.GetOrCreateProject(ctx, "/proj", "example.com/proj")
	require.NoError(t, err)
	assert.NotZero(t, project.ID)
	assert.Equal(t, CurrentSchemaVersion, project.IndexVersion)

	again, err := c.GetOrCreateProject(ctx, "/proj", "example.com/proj")
	require.NoError(t, err)
	assert.Equal(t, project.ID, again.ID)

	require.NoError(t, c.TouchProject(ctx, project.ID))
	touched, err := c.GetProject(ctx, "/proj")
	require.NoError(t, err)
	assert.False(t, touched.LastBuiltAt.IsZero())
}

func TestManifestUpsertAndList(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	project, err := c.GetOrCreateProject(ctx, "/proj", "m")
	require.NoError(t, err)

	rec := &FileRecord{ProjectID: project.ID, Path: "a.go", ContentHash: "h1", SizeBytes: 10}
	require.NoError(t, c.UpsertFile(ctx, rec))

	// Upsert replaces, not duplicates.
	rec.ContentHash = "h2"
	require.NoError(t, c.UpsertFile(ctx, rec))

	files, err := c.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "h2", files[0].ContentHash)
}

func TestDiffManifest(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	project, err := c.GetOrCreateProject(ctx, "/proj", "m")
	require.NoError(t, err)

	require.NoError(t, c.ReplaceManifest(ctx, project.ID, map[string]string{
		"a.go": "ha",
		"b.go": "hb",
		"c.go": "hc",
	}))

	changes, err := c.DiffManifest(ctx, project.ID, map[string]string{
		"a.go": "ha",      // unchanged
		"b.go": "changed", // modified
		"d.go": "hd",      // new
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.go", "d.go"}, changes.Modified)
	assert.Equal(t, []string{"c.go"}, changes.Deleted)
}

func TestDiffManifest_EmptyCatalog(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	project, err := c.GetOrCreateProject(ctx, "/proj", "m")
	require.NoError(t, err)

	changes, err := c.DiffManifest(ctx, project.ID, map[string]string{"a.go": "ha"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, changes.Modified, "everything is modified on first build")
	assert.Empty(t, changes.Deleted)
}

func TestReplaceManifest(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	project, err := c.GetOrCreateProject(ctx, "/proj", "m")
	require.NoError(t, err)

	require.NoError(t, c.ReplaceManifest(ctx, project.ID, map[string]string{"a.go": "ha", "b.go": "hb"}))
	require.NoError(t, c.ReplaceManifest(ctx, project.ID, map[string]string{"b.go": "hb2"}))

	files, err := c.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "b.go", files[0].Path)
	assert.Equal(t, "hb2", files[0].ContentHash)
}

func TestBuildHistory(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	project, err := c.GetOrCreateProject(ctx, "/proj", "m")
	require.NoError(t, err)

	_, err = c.LatestBuild(ctx, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	first := &Build{ProjectID: project.ID, IndexPath: "/out/1.scip", Documents: 10, ExternalSymbols: 3, Duration: 1500 * time.Millisecond}
	require.NoError(t, c.RecordBuild(ctx, first))
	second := &Build{ProjectID: project.ID, IndexPath: "/out/2.scip", Documents: 11, FailedFiles: 1, Duration: 200 * time.Millisecond}
	require.NoError(t, c.RecordBuild(ctx, second))

	latest, err := c.LatestBuild(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, 11, latest.Documents)
	assert.Equal(t, 1, latest.FailedFiles)
	assert.Equal(t, 200*time.Millisecond, latest.Duration)
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// Reopening applies no migration twice.
	c, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
