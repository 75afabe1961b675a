package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/knagata/kadai/internal/task"
)

// checklistUpdatable whitelists the columns UpdateChecklistItemFields may touch.
var checklistUpdatable = map[string]bool{
	"text":              true,
	"is_done":           true,
	"extracted_task_id": true,
}

func scanChecklistItem(row rowScanner) (*task.ChecklistItem, error) {
	var (
		item        task.ChecklistItem
		extractedID sql.NullInt64
	)
	if err := row.Scan(&item.ID, &item.TaskID, &item.Text, &item.IsDone, &item.OrderNo, &extractedID); err != nil {
		return nil, err
	}
	if extractedID.Valid {
		item.ExtractedTaskID = &extractedID.Int64
	}
	return &item, nil
}

// CreateChecklistItem inserts an item and fills in its assigned id.
func (s *Store) CreateChecklistItem(item *task.ChecklistItem) error {
	res, err := s.db.Exec(`
		INSERT INTO task_checklist_items (task_id, text, is_done, order_no, extracted_task_id)
		VALUES (?, ?, ?, ?, NULL)
	`, item.TaskID, item.Text, item.IsDone, item.OrderNo)
	if err != nil {
		return fmt.Errorf("insert checklist item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("checklist item insert id: %w", err)
	}
	item.ID = id
	return nil
}

// GetChecklistItem retrieves an item by id. Returns
// task.ErrChecklistItemNotFound when absent.
func (s *Store) GetChecklistItem(id int64) (*task.ChecklistItem, error) {
	row := s.db.QueryRow(`
		SELECT id, task_id, text, is_done, order_no, extracted_task_id
		FROM task_checklist_items WHERE id = ?
	`, id)
	item, err := scanChecklistItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrChecklistItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query checklist item %d: %w", id, err)
	}
	return item, nil
}

// ListChecklist returns a task's items ordered by order_no ascending.
func (s *Store) ListChecklist(taskID int64) ([]task.ChecklistItem, error) {
	rows, err := s.db.Query(`
		SELECT id, task_id, text, is_done, order_no, extracted_task_id
		FROM task_checklist_items WHERE task_id = ? ORDER BY order_no ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query checklist: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]task.ChecklistItem, 0)
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		items = append(items, *item)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, fmt.Errorf("list checklist: %w", err)
	}
	return items, nil
}

// CountChecklist returns the number of items on a task's checklist.
func (s *Store) CountChecklist(taskID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM task_checklist_items WHERE task_id = ?`, taskID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count checklist: %w", err)
	}
	return count, nil
}

// UpdateChecklistItemFields applies a partial update by column name.
func (s *Store) UpdateChecklistItemFields(id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set, args, err := buildSetClause(fields, checklistUpdatable)
	if err != nil {
		return err
	}
	args = append(args, id)

	res, err := s.db.Exec(`UPDATE task_checklist_items SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update checklist item %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrChecklistItemNotFound
	}
	return nil
}

// ExtractChecklistItem inserts the extraction target task and marks the item
// as extracted (extracted_task_id set, is_done forced true) in one
// transaction, so the forward and back references only ever become visible
// together.
func (s *Store) ExtractChecklistItem(itemID int64, newTask *task.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var dueDate, decisionCriteria, category any
	if newTask.DueDate != nil {
		dueDate = newTask.DueDate.String()
	}
	if newTask.DecisionCriteria != nil {
		decisionCriteria = *newTask.DecisionCriteria
	}
	if newTask.Category != nil {
		category = *newTask.Category
	}

	res, err := tx.Exec(`
		INSERT INTO tasks (title, task_type, category, priority, status, due_date, parent_id,
			done_criteria, decision_criteria, reversible, exploration_limit,
			origin_checklist_item_id, last_updated_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?, ?)
	`, newTask.Title, string(newTask.TaskType), category, string(newTask.Priority),
		string(newTask.Status), dueDate, *newTask.ParentID, newTask.DoneCriteria,
		decisionCriteria, itemID,
		newTask.LastUpdatedAt.UTC().Format(time.RFC3339),
		newTask.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert extracted task: %w", err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("extracted task id: %w", err)
	}

	upd, err := tx.Exec(`
		UPDATE task_checklist_items SET extracted_task_id = ?, is_done = 1 WHERE id = ?
	`, newID, itemID)
	if err != nil {
		return fmt.Errorf("mark item extracted: %w", err)
	}
	if n, _ := upd.RowsAffected(); n == 0 {
		return task.ErrChecklistItemNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	newTask.ID = newID
	return nil
}
