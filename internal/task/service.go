package task

import (
	"fmt"
	"time"
)

// Repository defines the data access methods required by the Service.
// The sqlite implementation lives in internal/storage; multi-entity methods
// (DeleteTaskCascade, ExtractChecklistItem, CompleteTask) must be atomic.
type Repository interface {
	CreateTask(t *Task) error
	GetTask(id int64) (*Task, error)
	UpdateTaskFields(id int64, fields map[string]any) error
	ListTasks(filter TaskFilter) ([]Task, error)
	DeleteTaskCascade(id int64) error

	CreateChecklistItem(item *ChecklistItem) error
	GetChecklistItem(id int64) (*ChecklistItem, error)
	ListChecklist(taskID int64) ([]ChecklistItem, error)
	CountChecklist(taskID int64) (int, error)
	UpdateChecklistItemFields(id int64, fields map[string]any) error
	ExtractChecklistItem(itemID int64, newTask *Task) error

	CompleteTask(taskID int64, log *CompletionLog) error
	ListCompletionLogs(taskID int64) ([]CompletionLog, error)

	CreateCapture(c *CaptureItem) error
	GetCapture(id int64) (*CaptureItem, error)
	ListCaptures(isResolved *bool) ([]CaptureItem, error)
	UpdateCaptureFields(id int64, fields map[string]any) error
	DeleteCapture(id int64) error
}

// Service encapsulates the workflow core: task lifecycle rules, checklist
// gating, carryover arithmetic and the derived diagnostics.
type Service struct {
	repo Repository
}

// NewService creates a new task Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateTask creates a standalone or child task. When ParentID is set the
// parent must exist.
func (s *Service) CreateTask(req CreateTaskRequest) (*Task, error) {
	if req.ParentID != nil {
		if _, err := s.repo.GetTask(*req.ParentID); err != nil {
			return nil, fmt.Errorf("parent: %w", err)
		}
	}

	now := time.Now().UTC()
	t := &Task{
		Title:            req.Title,
		TaskType:         req.TaskType,
		Category:         req.Category,
		Priority:         req.Priority,
		Status:           StatusTodo,
		DueDate:          req.DueDate,
		ParentID:         req.ParentID,
		DoneCriteria:     req.DoneCriteria,
		DecisionCriteria: req.DecisionCriteria,
		Reversible:       req.Reversible,
		ExplorationLimit: req.ExplorationLimit,
		LastUpdatedAt:    now,
		CreatedAt:        now,
	}
	if err := s.repo.CreateTask(t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// CreateChild creates a task with parent_id forced to parentID.
func (s *Service) CreateChild(parentID int64, req CreateTaskRequest) (*Task, error) {
	req.ParentID = &parentID
	return s.CreateTask(req)
}

// GetTask returns a task by id.
func (s *Service) GetTask(id int64) (*Task, error) {
	return s.repo.GetTask(id)
}

// UpdateTask applies a partial update. Setting status=done here is rejected;
// completion goes through Complete so the checklist gate cannot be skipped.
func (s *Service) UpdateTask(id int64, req UpdateTaskRequest) (*Task, error) {
	if _, err := s.repo.GetTask(id); err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status == StatusDone {
		return nil, ErrInvalidTransition
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.TaskType != nil {
		fields["task_type"] = string(*req.TaskType)
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Priority != nil {
		fields["priority"] = string(*req.Priority)
	}
	if req.Status != nil {
		fields["status"] = string(*req.Status)
	}
	if req.DueDate != nil {
		fields["due_date"] = req.DueDate.String()
	}
	if req.DoneCriteria != nil {
		fields["done_criteria"] = *req.DoneCriteria
	}
	if req.DecisionCriteria != nil {
		fields["decision_criteria"] = *req.DecisionCriteria
	}
	if req.Reversible != nil {
		fields["reversible"] = *req.Reversible
	}
	if req.ExplorationLimit != nil {
		fields["exploration_limit"] = *req.ExplorationLimit
	}
	fields["last_updated_at"] = time.Now().UTC()

	if err := s.repo.UpdateTaskFields(id, fields); err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return s.repo.GetTask(id)
}

// DeleteTask removes a task and cascades: children and captures keep living
// with their references nulled, origin references into this task's checklist
// are nulled, and the task's own checklist items and completion logs go with
// it. The whole cascade commits atomically.
func (s *Service) DeleteTask(id int64) error {
	if _, err := s.repo.GetTask(id); err != nil {
		return err
	}
	if err := s.repo.DeleteTaskCascade(id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

// ListTasks returns tasks matching the filter, newest first.
func (s *Service) ListTasks(filter TaskFilter) ([]Task, error) {
	return s.repo.ListTasks(filter)
}

// ListChildren returns the direct children of a task.
func (s *Service) ListChildren(taskID int64) ([]Task, error) {
	if _, err := s.repo.GetTask(taskID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(TaskFilter{ParentID: &taskID})
}

// GetDetail returns a task with its children, ordered checklist and origin.
// Origin is only populated when both the source checklist item and its owning
// task still exist; a dangling reference is omitted, not an error.
func (s *Service) GetDetail(id int64) (*TaskDetail, error) {
	t, err := s.repo.GetTask(id)
	if err != nil {
		return nil, err
	}

	children, err := s.repo.ListTasks(TaskFilter{ParentID: &id})
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	checklist, err := s.repo.ListChecklist(id)
	if err != nil {
		return nil, fmt.Errorf("list checklist: %w", err)
	}

	detail := &TaskDetail{
		Task:      *t,
		Children:  children,
		Checklist: checklist,
	}

	if t.OriginChecklistItemID != nil {
		item, err := s.repo.GetChecklistItem(*t.OriginChecklistItemID)
		if err == nil {
			parent, perr := s.repo.GetTask(item.TaskID)
			if perr == nil {
				detail.Origin = &OriginInfo{
					ParentTaskID:      parent.ID,
					ParentTaskTitle:   parent.Title,
					ChecklistItemText: item.Text,
				}
			}
		}
	}

	return detail, nil
}
