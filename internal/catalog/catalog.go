package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNotFound is returned when a requested entity doesn't exist
var ErrNotFound = errors.New("not found")

// Project is one tracked codebase.
type Project struct {
	ID           int64
	RootPath     string
	ModuleName   string
	IndexVersion string
	LastBuiltAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FileRecord is one manifest row: a file path and the content hash it had at
// the last successful build.
type FileRecord struct {
	ID          int64
	ProjectID   int64
	Path        string
	ContentHash string
	ModTime     time.Time
	SizeBytes   int64
	UpdatedAt   time.Time
}

// Build is one recorded build run.
type Build struct {
	ID              int64
	ProjectID       int64
	IndexPath       string
	Documents       int
	ExternalSymbols int
	FailedFiles     int
	Duration        time.Duration
	CreatedAt       time.Time
}

// Changes is the diff between the current tree and the stored manifest.
type Changes struct {
	Modified []string // new files plus files whose hash changed
	Deleted  []string // manifest entries with no current counterpart
}

// Catalog wraps the SQLite database.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at dbPath and applies
// pending migrations.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for concurrent readers; single writer suits SQLite.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// CreateProject inserts a new project record.
func (c *Catalog) CreateProject(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (root_path, module_name, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := c.db.ExecContext(ctx, query,
		project.RootPath, project.ModuleName, project.IndexVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

// GetProject looks a project up by root path.
func (c *Catalog) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	query := `
		SELECT id, root_path, module_name, index_version, last_built_at, created_at, updated_at
		FROM projects
		WHERE root_path = ?
	`
	var (
		project     Project
		lastBuiltAt sql.NullTime
	)
	err := c.db.QueryRowContext(ctx, query, rootPath).Scan(
		&project.ID, &project.RootPath, &project.ModuleName, &project.IndexVersion,
		&lastBuiltAt, &project.CreatedAt, &project.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if lastBuiltAt.Valid {
		project.LastBuiltAt = lastBuiltAt.Time
	}
	return &project, nil
}

// GetOrCreateProject returns the existing record for rootPath or creates one.
func (c *Catalog) GetOrCreateProject(ctx context.Context, rootPath, moduleName string) (*Project, error) {
	project, err := c.GetProject(ctx, rootPath)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	project = &Project{
		RootPath:     rootPath,
		ModuleName:   moduleName,
		IndexVersion: CurrentSchemaVersion,
	}
	if err := c.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// TouchProject stamps the project's last build time.
func (c *Catalog) TouchProject(ctx context.Context, projectID int64) error {
	now := time.Now()
	_, err := c.db.ExecContext(ctx,
		"UPDATE projects SET last_built_at = ?, updated_at = ? WHERE id = ?", now, now, projectID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// ListFiles returns the stored manifest for a project, ordered by path.
func (c *Catalog) ListFiles(ctx context.Context, projectID int64) ([]*FileRecord, error) {
	query := `
		SELECT id, project_id, file_path, content_hash, mod_time, size_bytes, updated_at
		FROM files
		WHERE project_id = ?
		ORDER BY file_path
	`
	rows, err := c.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*FileRecord
	for rows.Next() {
		var (
			rec     FileRecord
			modTime sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.Path, &rec.ContentHash,
			&modTime, &rec.SizeBytes, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		if modTime.Valid {
			rec.ModTime = modTime.Time
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// UpsertFile inserts or replaces one manifest row.
func (c *Catalog) UpsertFile(ctx context.Context, rec *FileRecord) error {
	query := `
		INSERT INTO files (project_id, file_path, content_hash, mod_time, size_bytes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, file_path) DO UPDATE SET
			content_hash = excluded.content_hash,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	_, err := c.db.ExecContext(ctx, query,
		rec.ProjectID, rec.Path, rec.ContentHash, rec.ModTime, rec.SizeBytes, now)
	if err != nil {
		return fmt.Errorf("failed to upsert file %s: %w", rec.Path, err)
	}
	return nil
}

// DiffManifest compares the current path->hash map against the stored
// manifest. Both result sets come back sorted.
func (c *Catalog) DiffManifest(ctx context.Context, projectID int64, current map[string]string) (*Changes, error) {
	stored, err := c.ListFiles(ctx, projectID)
	if err != nil {
		return nil, err
	}

	storedHashes := make(map[string]string, len(stored))
	for _, rec := range stored {
		storedHashes[rec.Path] = rec.ContentHash
	}

	changes := &Changes{}
	for path, hash := range current {
		if prev, ok := storedHashes[path]; !ok || prev != hash {
			changes.Modified = append(changes.Modified, path)
		}
	}
	for path := range storedHashes {
		if _, ok := current[path]; !ok {
			changes.Deleted = append(changes.Deleted, path)
		}
	}
	sort.Strings(changes.Modified)
	sort.Strings(changes.Deleted)
	return changes, nil
}

// ReplaceManifest makes the stored manifest match current exactly, inside one
// transaction.
func (c *Catalog) ReplaceManifest(ctx context.Context, projectID int64, current map[string]string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("failed to clear manifest: %w", err)
	}

	now := time.Now()
	for path, hash := range current {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO files (project_id, file_path, content_hash, updated_at) VALUES (?, ?, ?, ?)",
			projectID, path, hash, now)
		if err != nil {
			return fmt.Errorf("failed to insert manifest row %s: %w", path, err)
		}
	}
	return tx.Commit()
}

// RecordBuild appends one build to the project's history.
func (c *Catalog) RecordBuild(ctx context.Context, build *Build) error {
	query := `
		INSERT INTO builds (project_id, index_path, documents, external_symbols, failed_files, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := c.db.ExecContext(ctx, query,
		build.ProjectID, build.IndexPath, build.Documents, build.ExternalSymbols,
		build.FailedFiles, build.Duration.Milliseconds(), now)
	if err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	build.ID = id
	build.CreatedAt = now
	return nil
}

// LatestBuild returns the most recent build for a project.
func (c *Catalog) LatestBuild(ctx context.Context, projectID int64) (*Build, error) {
	query := `
		SELECT id, project_id, index_path, documents, external_symbols, failed_files, duration_ms, created_at
		FROM builds
		WHERE project_id = ?
		ORDER BY id DESC
		LIMIT 1
	`
	var (
		build      Build
		durationMS int64
	)
	err := c.db.QueryRowContext(ctx, query, projectID).Scan(
		&build.ID, &build.ProjectID, &build.IndexPath, &build.Documents,
		&build.ExternalSymbols, &build.FailedFiles, &durationMS, &build.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest build: %w", err)
	}
	build.Duration = time.Duration(durationMS) * time.Millisecond
	return &build, nil
}
