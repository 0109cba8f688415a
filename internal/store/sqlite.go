// Package store persists manual override sets (flipped chains and excluded
// corner panels) per project in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/piwi3910/wallplan/internal/model"
)

// ErrNotFound is returned when a project has no stored override set.
var ErrNotFound = errors.New("override set not found")

const schema = `
CREATE TABLE IF NOT EXISTS override_sets (
    project_id TEXT PRIMARY KEY,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS flipped_chains (
    project_id TEXT NOT NULL REFERENCES override_sets(project_id) ON DELETE CASCADE,
    chain_id   TEXT NOT NULL,
    PRIMARY KEY (project_id, chain_id)
);
CREATE TABLE IF NOT EXISTS excluded_panels (
    project_id TEXT NOT NULL REFERENCES override_sets(project_id) ON DELETE CASCADE,
    panel_key  TEXT NOT NULL,
    PRIMARY KEY (project_id, panel_key)
);
`

// OverrideStore reads and writes override sets.
type OverrideStore struct {
	db *sql.DB
}

// New wraps an open database. Call Init before first use.
func New(db *sql.DB) *OverrideStore {
	return &OverrideStore{db: db}
}

// Init creates the tables if they do not exist.
func (s *OverrideStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Get returns the override set of a project. Chain ids and panel keys come
// back sorted.
func (s *OverrideStore) Get(ctx context.Context, projectID string) (model.Overrides, error) {
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM override_sets WHERE project_id = ?`, projectID).Scan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Overrides{}, ErrNotFound
		}
		return model.Overrides{}, err
	}

	flipped, err := s.column(ctx, `SELECT chain_id FROM flipped_chains WHERE project_id = ? ORDER BY chain_id`, projectID)
	if err != nil {
		return model.Overrides{}, fmt.Errorf("read flipped chains: %w", err)
	}
	excluded, err := s.column(ctx, `SELECT panel_key FROM excluded_panels WHERE project_id = ? ORDER BY panel_key`, projectID)
	if err != nil {
		return model.Overrides{}, fmt.Errorf("read excluded panels: %w", err)
	}
	return model.Overrides{FlippedChains: flipped, ExcludedPanels: excluded}, nil
}

// Put replaces the override set of a project. Duplicate entries are stored once.
func (s *OverrideStore) Put(ctx context.Context, projectID string, o model.Overrides) error {
	if projectID == "" {
		return fmt.Errorf("project id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO override_sets (project_id, updated_at) VALUES (?, ?)
        ON CONFLICT(project_id) DO UPDATE SET updated_at = excluded.updated_at
    `, projectID, now); err != nil {
		return fmt.Errorf("upsert override set: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM flipped_chains WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clear flipped chains: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM excluded_panels WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clear excluded panels: %w", err)
	}

	for _, id := range o.FlippedChains {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO flipped_chains (project_id, chain_id) VALUES (?, ?)`, projectID, id); err != nil {
			return fmt.Errorf("insert flipped chain %q: %w", id, err)
		}
	}
	for _, key := range o.ExcludedPanels {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO excluded_panels (project_id, panel_key) VALUES (?, ?)`, projectID, key); err != nil {
			return fmt.Errorf("insert excluded panel %q: %w", key, err)
		}
	}

	return tx.Commit()
}

// Delete removes the override set of a project.
func (s *OverrideStore) Delete(ctx context.Context, projectID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM override_sets WHERE project_id = ?`, projectID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Projects returns the ids of all projects with a stored override set.
func (s *OverrideStore) Projects(ctx context.Context) ([]string, error) {
	ids, err := s.column(ctx, `SELECT project_id FROM override_sets`)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// column runs a single-column string query.
func (s *OverrideStore) column(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// OpenSQLite opens the database file at dbPath, creating its directory.
// The caller imports a driver registered as "sqlite3".
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
