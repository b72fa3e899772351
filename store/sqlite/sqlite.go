/*
Package sqlite provides SQLite-backed persistence for children and their
manual custody state.

PURPOSE:
  Stores the configuration of each child plus the caller-mutable state that
  must survive restarts: manual custody windows and the presence override.
  The window timeline itself is never persisted; it is recomputed from
  configuration on every evaluation.

KEY TABLES:
  children:       One row per child, configuration stored as JSON
  manual_windows: One-off caller-supplied presence windows
  overrides:      At most one forced presence state per child

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode: multiple readers
  don't block, single writer at a time.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

USAGE:
  store, err := sqlite.New("./data/custody.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Child is a stored child record. Config holds the raw configuration JSON;
// parsing and validation live in the factory package.
type Child struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ManualWindow is a persisted one-off presence window.
type ManualWindow struct {
	ID      string    `json:"id"`
	ChildID string    `json:"child_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Label   string    `json:"label,omitempty"`
}

// Override is the persisted forced presence state for a child.
type Override struct {
	ChildID string     `json:"child_id"`
	State   string     `json:"state"`
	Until   *time.Time `json:"until,omitempty"`
}

// Store implements persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Children and their configuration
	CREATE TABLE IF NOT EXISTS children (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- One-off manual presence windows
	CREATE TABLE IF NOT EXISTS manual_windows (
		id TEXT PRIMARY KEY,
		child_id TEXT NOT NULL REFERENCES children(id) ON DELETE CASCADE,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		label TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_manual_windows_child
		ON manual_windows(child_id, start_at);

	-- At most one forced presence state per child
	CREATE TABLE IF NOT EXISTS overrides (
		child_id TEXT PRIMARY KEY REFERENCES children(id) ON DELETE CASCADE,
		state TEXT NOT NULL,
		until_at TEXT,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CHILDREN
// =============================================================================

// CreateChild inserts a child and returns the stored record with its
// generated id and timestamps.
func (s *Store) CreateChild(ctx context.Context, name string, config json.RawMessage) (Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	child := Child{
		ID:        uuid.NewString(),
		Name:      name,
		Config:    config,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO children (id, name, config_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		child.ID, child.Name, string(child.Config),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return Child{}, fmt.Errorf("failed to insert child: %w", err)
	}
	return child, nil
}

// GetChild loads one child by id.
func (s *Store) GetChild(ctx context.Context, id string) (Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, config_json, created_at, updated_at FROM children WHERE id = ?`, id)
	return scanChild(row)
}

// ListChildren returns all children ordered by creation time.
func (s *Store) ListChildren(ctx context.Context) ([]Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, config_json, created_at, updated_at FROM children ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []Child
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, rows.Err()
}

// UpdateChild replaces a child's name and configuration.
func (s *Store) UpdateChild(ctx context.Context, id, name string, config json.RawMessage) (Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE children SET name = ?, config_json = ?, updated_at = ? WHERE id = ?`,
		name, string(config), now.Format(time.RFC3339), id,
	)
	if err != nil {
		return Child{}, fmt.Errorf("failed to update child: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return Child{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, config_json, created_at, updated_at FROM children WHERE id = ?`, id)
	return scanChild(row)
}

// DeleteChild removes a child and, via cascade, its manual state.
func (s *Store) DeleteChild(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row rowScanner) (Child, error) {
	var (
		child      Child
		configJSON string
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&child.ID, &child.Name, &configJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Child{}, ErrNotFound
	}
	if err != nil {
		return Child{}, fmt.Errorf("failed to scan child: %w", err)
	}
	child.Config = json.RawMessage(configJSON)
	child.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	child.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return child, nil
}

// =============================================================================
// MANUAL WINDOWS
// =============================================================================

// ReplaceManualWindows atomically replaces a child's manual windows.
func (s *Store) ReplaceManualWindows(ctx context.Context, childID string, windows []ManualWindow) ([]ManualWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM manual_windows WHERE child_id = ?`, childID); err != nil {
		return nil, fmt.Errorf("failed to clear manual windows: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stored := make([]ManualWindow, 0, len(windows))
	for _, w := range windows {
		w.ID = uuid.NewString()
		w.ChildID = childID
		_, err := tx.ExecContext(ctx,
			`INSERT INTO manual_windows (id, child_id, start_at, end_at, label, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			w.ID, w.ChildID, w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), w.Label, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert manual window: %w", err)
		}
		stored = append(stored, w)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// ListManualWindows returns a child's manual windows ordered by start.
func (s *Store) ListManualWindows(ctx context.Context, childID string) ([]ManualWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, child_id, start_at, end_at, label FROM manual_windows WHERE child_id = ? ORDER BY start_at ASC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query manual windows: %w", err)
	}
	defer rows.Close()

	var windows []ManualWindow
	for rows.Next() {
		var (
			w        ManualWindow
			startStr string
			endStr   string
			label    sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.ChildID, &startStr, &endStr, &label); err != nil {
			return nil, fmt.Errorf("failed to scan manual window: %w", err)
		}
		w.Start, _ = time.Parse(time.RFC3339, startStr)
		w.End, _ = time.Parse(time.RFC3339, endStr)
		w.Label = label.String
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// =============================================================================
// OVERRIDES
// =============================================================================

// SetOverride upserts the forced presence state for a child.
func (s *Store) SetOverride(ctx context.Context, o Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var until any
	if o.Until != nil {
		until = o.Until.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO overrides (child_id, state, until_at, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(child_id) DO UPDATE SET state = excluded.state, until_at = excluded.until_at, created_at = excluded.created_at`,
		o.ChildID, o.State, until, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to set override: %w", err)
	}
	return nil
}

// GetOverride loads the override for a child, ErrNotFound when none is set.
func (s *Store) GetOverride(ctx context.Context, childID string) (Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		o        Override
		untilStr sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT child_id, state, until_at FROM overrides WHERE child_id = ?`, childID,
	).Scan(&o.ChildID, &o.State, &untilStr)
	if err == sql.ErrNoRows {
		return Override{}, ErrNotFound
	}
	if err != nil {
		return Override{}, fmt.Errorf("failed to scan override: %w", err)
	}
	if untilStr.Valid && untilStr.String != "" {
		t, err := time.Parse(time.RFC3339, untilStr.String)
		if err == nil {
			o.Until = &t
		}
	}
	return o, nil
}

// ClearOverride removes the override for a child. Clearing a child without
// an override is not an error.
func (s *Store) ClearOverride(ctx context.Context, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM overrides WHERE child_id = ?`, childID)
	if err != nil {
		return fmt.Errorf("failed to clear override: %w", err)
	}
	return nil
}
