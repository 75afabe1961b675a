package task

import (
	"fmt"
	"time"
)

// ListCarryoverCandidates returns active tasks whose due date has passed,
// each with how many days overdue it is. The comparison is date-only.
func (s *Service) ListCarryoverCandidates() ([]CarryoverCandidate, error) {
	tasks, err := s.repo.ListTasks(TaskFilter{Statuses: []TaskStatus{StatusTodo, StatusDoing}})
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}

	today := Today()
	candidates := make([]CarryoverCandidate, 0)
	for _, t := range tasks {
		if t.DueDate == nil || !t.DueDate.Before(today.Time) {
			continue
		}
		candidates = append(candidates, CarryoverCandidate{
			Task:        t,
			OverdueDays: today.DaysSince(*t.DueDate),
		})
	}
	return candidates, nil
}

// ApplyCarryover reschedules a task by the given policy. today resets the due
// date; plus_2d/plus_7d shift from the current due date (or today when none is
// set); needs_redefine only flips the status and leaves the due date alone.
func (s *Service) ApplyCarryover(taskID int64, action CarryoverAction) (*Task, error) {
	t, err := s.repo.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	today := Today()
	fields := map[string]any{}
	switch action {
	case CarryoverToday:
		fields["due_date"] = today.String()
		fields["status"] = string(StatusTodo)
	case CarryoverPlus2d, CarryoverPlus7d:
		base := today
		if t.DueDate != nil {
			base = *t.DueDate
		}
		days := 2
		if action == CarryoverPlus7d {
			days = 7
		}
		fields["due_date"] = base.AddDays(days).String()
		fields["status"] = string(StatusTodo)
	case CarryoverNeedsRedefine:
		fields["status"] = string(StatusNeedsRedefine)
	default:
		return nil, fmt.Errorf("unknown carryover action %q", action)
	}
	fields["last_updated_at"] = time.Now().UTC()

	if err := s.repo.UpdateTaskFields(taskID, fields); err != nil {
		return nil, fmt.Errorf("carryover task %d: %w", taskID, err)
	}
	return s.repo.GetTask(taskID)
}
