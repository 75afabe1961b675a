package task

import (
	"fmt"
	"time"
)

// ListCaptures returns capture notes, newest first, optionally filtered by
// resolution state.
func (s *Service) ListCaptures(isResolved *bool) ([]CaptureItem, error) {
	return s.repo.ListCaptures(isResolved)
}

// CreateCapture records a free-form note, optionally linked to a task.
func (s *Service) CreateCapture(req CreateCaptureRequest) (*CaptureItem, error) {
	c := &CaptureItem{
		RelatedTaskID: req.RelatedTaskID,
		Text:          req.Text,
		CreatedAt:     time.Now().UTC(),
		IsResolved:    false,
	}
	if err := s.repo.CreateCapture(c); err != nil {
		return nil, fmt.Errorf("create capture: %w", err)
	}
	return c, nil
}

// UpdateCapture applies a partial update to a capture note.
func (s *Service) UpdateCapture(id int64, req UpdateCaptureRequest) (*CaptureItem, error) {
	if _, err := s.repo.GetCapture(id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Text != nil {
		fields["text"] = *req.Text
	}
	if req.IsResolved != nil {
		fields["is_resolved"] = *req.IsResolved
	}
	if req.RelatedTaskID != nil {
		fields["related_task_id"] = *req.RelatedTaskID
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateCaptureFields(id, fields); err != nil {
			return nil, fmt.Errorf("update capture %d: %w", id, err)
		}
	}
	return s.repo.GetCapture(id)
}

// DeleteCapture removes a capture note.
func (s *Service) DeleteCapture(id int64) error {
	if _, err := s.repo.GetCapture(id); err != nil {
		return err
	}
	return s.repo.DeleteCapture(id)
}
