package task

import (
	"fmt"
	"time"
)

// Complete finishes a task. Checklist items that are neither done nor
// extracted block completion; the returned error carries their count. On
// success the status flip and the completion log commit as one transaction.
func (s *Service) Complete(taskID int64, req CompleteRequest) (*CompletionLog, error) {
	if _, err := s.repo.GetTask(taskID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListChecklist(taskID)
	if err != nil {
		return nil, fmt.Errorf("list checklist: %w", err)
	}
	blocking := 0
	for _, item := range items {
		if !item.IsDone && item.ExtractedTaskID == nil {
			blocking++
		}
	}
	if blocking > 0 {
		return nil, &ChecklistIncompleteError{Count: blocking}
	}

	log := &CompletionLog{
		TaskID:      taskID,
		CompletedAt: time.Now().UTC(),
		Note:        req.Note,
	}
	if err := s.repo.CompleteTask(taskID, log); err != nil {
		return nil, fmt.Errorf("complete task %d: %w", taskID, err)
	}
	return log, nil
}

// ListCompletionLogs returns a task's completion log entries, newest first.
func (s *Service) ListCompletionLogs(taskID int64) ([]CompletionLog, error) {
	if _, err := s.repo.GetTask(taskID); err != nil {
		return nil, err
	}
	return s.repo.ListCompletionLogs(taskID)
}
