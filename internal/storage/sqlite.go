// Package storage provides the SQLite-backed implementation of the task
// Repository. All multi-entity operations (cascading delete, extraction,
// completion) run inside a single transaction.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/knagata/kadai/internal/task"
)

// Store is a SQLite-backed task repository.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ task.Repository = (*Store)(nil)

// Open opens (or creates) the database at path and initializes the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("storage opened")
	return s, nil
}

// initSchema creates the tables if they don't exist. The mutual references
// between tasks and checklist items (origin_checklist_item_id and
// extracted_task_id) are plain columns, not constraints: both sides are
// non-owning and are nulled, never cascaded, by the delete path.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		task_type TEXT NOT NULL,
		category TEXT,
		priority TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'todo',
		due_date TEXT,
		parent_id INTEGER,
		done_criteria TEXT NOT NULL,
		decision_criteria TEXT,
		reversible INTEGER,
		exploration_limit INTEGER,
		origin_checklist_item_id INTEGER,
		last_updated_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS task_checklist_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		is_done INTEGER NOT NULL DEFAULT 0,
		order_no INTEGER NOT NULL,
		extracted_task_id INTEGER
	);

	CREATE TABLE IF NOT EXISTS completion_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL,
		completed_at TEXT NOT NULL,
		note TEXT
	);

	CREATE TABLE IF NOT EXISTS capture_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		related_task_id INTEGER,
		text TEXT NOT NULL,
		created_at TEXT NOT NULL,
		is_resolved INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_checklist_task ON task_checklist_items(task_id);
	CREATE INDEX IF NOT EXISTS idx_logs_task ON completion_logs(task_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
