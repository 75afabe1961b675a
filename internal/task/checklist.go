package task

import (
	"fmt"
	"time"
)

// ListChecklist returns a task's checklist ordered by order_no ascending.
func (s *Service) ListChecklist(taskID int64) ([]ChecklistItem, error) {
	if _, err := s.repo.GetTask(taskID); err != nil {
		return nil, err
	}
	return s.repo.ListChecklist(taskID)
}

// CreateChecklistItem adds an item to a task's checklist. When no order_no is
// given it is assigned item count + 1. That is a sequential counter, not
// max+1: deleting items can make later assignments collide, which is accepted.
func (s *Service) CreateChecklistItem(taskID int64, req CreateChecklistItemRequest) (*ChecklistItem, error) {
	if _, err := s.repo.GetTask(taskID); err != nil {
		return nil, err
	}

	orderNo := 0
	if req.OrderNo != nil {
		orderNo = *req.OrderNo
	} else {
		count, err := s.repo.CountChecklist(taskID)
		if err != nil {
			return nil, fmt.Errorf("count checklist: %w", err)
		}
		orderNo = count + 1
	}

	item := &ChecklistItem{
		TaskID:  taskID,
		Text:    req.Text,
		IsDone:  false,
		OrderNo: orderNo,
	}
	if err := s.repo.CreateChecklistItem(item); err != nil {
		return nil, fmt.Errorf("create checklist item: %w", err)
	}
	return item, nil
}

// UpdateChecklistItem applies a partial update to an item. The item must
// belong to taskID.
func (s *Service) UpdateChecklistItem(taskID, itemID int64, req UpdateChecklistItemRequest) (*ChecklistItem, error) {
	item, err := s.itemOfTask(taskID, itemID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.IsDone != nil {
		fields["is_done"] = *req.IsDone
	}
	if req.Text != nil {
		fields["text"] = *req.Text
	}
	if len(fields) == 0 {
		return item, nil
	}

	if err := s.repo.UpdateChecklistItemFields(itemID, fields); err != nil {
		return nil, fmt.Errorf("update checklist item %d: %w", itemID, err)
	}
	return s.repo.GetChecklistItem(itemID)
}

// ExtractResult pairs the task created by an extraction with the checklist
// item it came from.
type ExtractResult struct {
	ExtractedTask Task          `json:"extracted_task"`
	ChecklistItem ChecklistItem `json:"checklist_item"`
}

// Extract promotes a checklist item into its own child task. It is a one-time
// transition: a second attempt fails with ErrAlreadyExtracted. The new task
// and the item mutation (extracted_task_id set, is_done forced true) commit as
// one transaction.
func (s *Service) Extract(taskID, itemID int64, req ExtractRequest) (*ExtractResult, error) {
	parent, err := s.repo.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	item, err := s.itemOfTask(taskID, itemID)
	if err != nil {
		return nil, err
	}
	if item.ExtractedTaskID != nil {
		return nil, ErrAlreadyExtracted
	}

	title := item.Text
	if req.Title != nil && *req.Title != "" {
		title = *req.Title
	}
	doneCriteria := title
	if req.DoneCriteria != nil && *req.DoneCriteria != "" {
		doneCriteria = *req.DoneCriteria
	}
	priority := parent.Priority
	if req.Priority != nil {
		priority = *req.Priority
	}
	taskType := TypeExecution
	if req.TaskType != "" {
		taskType = req.TaskType
	}

	now := time.Now().UTC()
	child := &Task{
		Title:                 title,
		TaskType:              taskType,
		Priority:              priority,
		Status:                StatusTodo,
		DueDate:               req.DueDate,
		ParentID:              &taskID,
		DoneCriteria:          doneCriteria,
		OriginChecklistItemID: &itemID,
		LastUpdatedAt:         now,
		CreatedAt:             now,
	}

	if err := s.repo.ExtractChecklistItem(itemID, child); err != nil {
		return nil, fmt.Errorf("extract checklist item %d: %w", itemID, err)
	}

	extracted, err := s.repo.GetChecklistItem(itemID)
	if err != nil {
		return nil, err
	}
	return &ExtractResult{ExtractedTask: *child, ChecklistItem: *extracted}, nil
}

// itemOfTask fetches an item and verifies it belongs to taskID.
func (s *Service) itemOfTask(taskID, itemID int64) (*ChecklistItem, error) {
	item, err := s.repo.GetChecklistItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.TaskID != taskID {
		return nil, ErrChecklistItemNotFound
	}
	return item, nil
}
