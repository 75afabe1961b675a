package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/knagata/kadai/internal/task"
)

// captureUpdatable whitelists the columns UpdateCaptureFields may touch.
var captureUpdatable = map[string]bool{
	"text":            true,
	"is_resolved":     true,
	"related_task_id": true,
}

func scanCapture(row rowScanner) (*task.CaptureItem, error) {
	var (
		c         task.CaptureItem
		relatedID sql.NullInt64
		createdAt string
	)
	if err := row.Scan(&c.ID, &relatedID, &c.Text, &createdAt, &c.IsResolved); err != nil {
		return nil, err
	}
	if relatedID.Valid {
		c.RelatedTaskID = &relatedID.Int64
	}
	c.CreatedAt = parseTimestamp(createdAt)
	return &c, nil
}

// CreateCapture inserts a capture note and fills in its assigned id.
func (s *Store) CreateCapture(c *task.CaptureItem) error {
	var relatedID any
	if c.RelatedTaskID != nil {
		relatedID = *c.RelatedTaskID
	}
	res, err := s.db.Exec(`
		INSERT INTO capture_items (related_task_id, text, created_at, is_resolved)
		VALUES (?, ?, ?, ?)
	`, relatedID, c.Text, c.CreatedAt.UTC().Format(time.RFC3339), c.IsResolved)
	if err != nil {
		return fmt.Errorf("insert capture: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("capture insert id: %w", err)
	}
	c.ID = id
	return nil
}

// GetCapture retrieves a capture note by id. Returns task.ErrCaptureNotFound
// when absent.
func (s *Store) GetCapture(id int64) (*task.CaptureItem, error) {
	row := s.db.QueryRow(`
		SELECT id, related_task_id, text, created_at, is_resolved
		FROM capture_items WHERE id = ?
	`, id)
	c, err := scanCapture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrCaptureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query capture %d: %w", id, err)
	}
	return c, nil
}

// ListCaptures returns capture notes, newest first, optionally filtered by
// resolution state.
func (s *Store) ListCaptures(isResolved *bool) ([]task.CaptureItem, error) {
	query := `SELECT id, related_task_id, text, created_at, is_resolved FROM capture_items`
	args := make([]any, 0, 1)
	if isResolved != nil {
		query += ` WHERE is_resolved = ?`
		args = append(args, *isResolved)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query captures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	captures := make([]task.CaptureItem, 0)
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		captures = append(captures, *c)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	return captures, nil
}

// UpdateCaptureFields applies a partial update by column name.
func (s *Store) UpdateCaptureFields(id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set, args, err := buildSetClause(fields, captureUpdatable)
	if err != nil {
		return err
	}
	args = append(args, id)

	res, err := s.db.Exec(`UPDATE capture_items SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update capture %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrCaptureNotFound
	}
	return nil
}

// DeleteCapture removes a capture note.
func (s *Store) DeleteCapture(id int64) error {
	res, err := s.db.Exec(`DELETE FROM capture_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete capture %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrCaptureNotFound
	}
	return nil
}
