package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knagata/kadai/internal/task"
)

const taskColumns = `id, title, task_type, category, priority, status, due_date, parent_id,
	done_criteria, decision_criteria, reversible, exploration_limit,
	origin_checklist_item_id, last_updated_at, created_at`

// taskUpdatable whitelists the columns UpdateTaskFields may touch.
var taskUpdatable = map[string]bool{
	"title":                    true,
	"task_type":                true,
	"category":                 true,
	"priority":                 true,
	"status":                   true,
	"due_date":                 true,
	"done_criteria":            true,
	"decision_criteria":        true,
	"reversible":               true,
	"exploration_limit":        true,
	"origin_checklist_item_id": true,
	"last_updated_at":          true,
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t                           task.Task
		taskType, priority, status  string
		category, decisionCriteria  sql.NullString
		dueDate                     sql.NullString
		parentID, originID          sql.NullInt64
		reversible                  sql.NullBool
		explorationLimit            sql.NullInt64
		lastUpdatedAt, createdAt    string
	)

	err := row.Scan(&t.ID, &t.Title, &taskType, &category, &priority, &status,
		&dueDate, &parentID, &t.DoneCriteria, &decisionCriteria, &reversible,
		&explorationLimit, &originID, &lastUpdatedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	t.TaskType = task.TaskType(taskType)
	t.Priority = task.Priority(priority)
	t.Status = task.TaskStatus(status)
	if category.Valid {
		t.Category = &category.String
	}
	if decisionCriteria.Valid {
		t.DecisionCriteria = &decisionCriteria.String
	}
	if dueDate.Valid && dueDate.String != "" {
		d, err := task.ParseDate(dueDate.String)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
	}
	if parentID.Valid {
		t.ParentID = &parentID.Int64
	}
	if originID.Valid {
		t.OriginChecklistItemID = &originID.Int64
	}
	if reversible.Valid {
		t.Reversible = &reversible.Bool
	}
	if explorationLimit.Valid {
		limit := int(explorationLimit.Int64)
		t.ExplorationLimit = &limit
	}
	t.LastUpdatedAt = parseTimestamp(lastUpdatedAt)
	t.CreatedAt = parseTimestamp(createdAt)

	return &t, nil
}

// CreateTask inserts a task and fills in its assigned id.
func (s *Store) CreateTask(t *task.Task) error {
	var dueDate any
	if t.DueDate != nil {
		dueDate = t.DueDate.String()
	}
	var category, decisionCriteria, parentID, originID, reversible, explorationLimit any
	if t.Category != nil {
		category = *t.Category
	}
	if t.DecisionCriteria != nil {
		decisionCriteria = *t.DecisionCriteria
	}
	if t.ParentID != nil {
		parentID = *t.ParentID
	}
	if t.OriginChecklistItemID != nil {
		originID = *t.OriginChecklistItemID
	}
	if t.Reversible != nil {
		reversible = *t.Reversible
	}
	if t.ExplorationLimit != nil {
		explorationLimit = *t.ExplorationLimit
	}

	res, err := s.db.Exec(`
		INSERT INTO tasks (title, task_type, category, priority, status, due_date, parent_id,
			done_criteria, decision_criteria, reversible, exploration_limit,
			origin_checklist_item_id, last_updated_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Title, string(t.TaskType), category, string(t.Priority), string(t.Status),
		dueDate, parentID, t.DoneCriteria, decisionCriteria, reversible, explorationLimit,
		originID, t.LastUpdatedAt.UTC().Format(time.RFC3339), t.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("task insert id: %w", err)
	}
	t.ID = id
	return nil
}

// GetTask retrieves a task by id. Returns task.ErrTaskNotFound when absent.
func (s *Store) GetTask(id int64) (*task.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query task %d: %w", id, err)
	}
	return t, nil
}

// UpdateTaskFields applies a partial update by column name.
func (s *Store) UpdateTaskFields(id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set, args, err := buildSetClause(fields, taskUpdatable)
	if err != nil {
		return err
	}
	args = append(args, id)

	res, err := s.db.Exec(`UPDATE tasks SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// ListTasks returns tasks matching the filter, ordered by created_at
// descending (id descending as a tiebreak).
func (s *Store) ListTasks(filter task.TaskFilter) ([]task.Task, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.TaskType != nil {
		where = append(where, "task_type = ?")
		args = append(args, string(*filter.TaskType))
	}
	if filter.Priority != nil {
		where = append(where, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.ParentID != nil {
		where = append(where, "parent_id = ?")
		args = append(args, *filter.ParentID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// DeleteTaskCascade removes a task and everything that hangs off it, in one
// transaction. Non-owning references (children's parent_id, other tasks'
// origin refs into this checklist, captures' related_task_id) are nulled
// before the owned rows (checklist items, completion logs) are deleted; the
// origin nulling has to read the checklist item ids first, so order matters.
func (s *Store) DeleteTaskCascade(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE tasks SET parent_id = NULL WHERE parent_id = ?`, id); err != nil {
		return fmt.Errorf("null child parent refs: %w", err)
	}

	rows, err := tx.Query(`SELECT id FROM task_checklist_items WHERE task_id = ?`, id)
	if err != nil {
		return fmt.Errorf("query checklist ids: %w", err)
	}
	itemIDs := make([]any, 0)
	for rows.Next() {
		var itemID int64
		if err := rows.Scan(&itemID); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan checklist id: %w", err)
		}
		itemIDs = append(itemIDs, itemID)
	}
	if err := checkRowsErr(rows); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	if len(itemIDs) > 0 {
		placeholders := strings.Repeat("?, ", len(itemIDs)-1) + "?"
		if _, err := tx.Exec(`UPDATE tasks SET origin_checklist_item_id = NULL
			WHERE origin_checklist_item_id IN (`+placeholders+`)`, itemIDs...); err != nil {
			return fmt.Errorf("null origin refs: %w", err)
		}
	}

	if _, err := tx.Exec(`UPDATE capture_items SET related_task_id = NULL WHERE related_task_id = ?`, id); err != nil {
		return fmt.Errorf("null capture refs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM task_checklist_items WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete checklist items: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM completion_logs WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete completion logs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return tx.Commit()
}

// CompleteTask flips the task to done and writes its completion log entry as
// one transaction.
func (s *Store) CompleteTask(taskID int64, log *task.CompletionLog) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	completedAt := log.CompletedAt.UTC().Format(time.RFC3339)
	res, err := tx.Exec(`UPDATE tasks SET status = ?, last_updated_at = ? WHERE id = ?`,
		string(task.StatusDone), completedAt, taskID)
	if err != nil {
		return fmt.Errorf("mark task done: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrTaskNotFound
	}

	var note any
	if log.Note != nil {
		note = *log.Note
	}
	ins, err := tx.Exec(`INSERT INTO completion_logs (task_id, completed_at, note) VALUES (?, ?, ?)`,
		taskID, completedAt, note)
	if err != nil {
		return fmt.Errorf("insert completion log: %w", err)
	}
	logID, err := ins.LastInsertId()
	if err != nil {
		return fmt.Errorf("completion log id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.ID = logID
	return nil
}

// ListCompletionLogs returns a task's completion log entries, newest first.
func (s *Store) ListCompletionLogs(taskID int64) ([]task.CompletionLog, error) {
	rows, err := s.db.Query(`
		SELECT id, task_id, completed_at, note FROM completion_logs
		WHERE task_id = ? ORDER BY completed_at DESC, id DESC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query completion logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	logs := make([]task.CompletionLog, 0)
	for rows.Next() {
		var (
			l           task.CompletionLog
			completedAt string
			note        sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.TaskID, &completedAt, &note); err != nil {
			return nil, fmt.Errorf("scan completion log: %w", err)
		}
		l.CompletedAt = parseTimestamp(completedAt)
		if note.Valid {
			l.Note = &note.String
		}
		logs = append(logs, l)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, fmt.Errorf("list completion logs: %w", err)
	}
	return logs, nil
}
