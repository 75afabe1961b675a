package task_test

import (
	"testing"

	"github.com/knagata/kadai/internal/task"
)

func TestCarryoverCandidates(t *testing.T) {
	svc, _ := newTestService(t)
	today := task.Today()

	overdue := executionTask("Overdue")
	overdue.DueDate = datePtr(today.AddDays(-3))
	od := mustCreate(t, svc, overdue)

	dueToday := executionTask("Due today")
	dueToday.DueDate = datePtr(today)
	mustCreate(t, svc, dueToday)

	future := executionTask("Future")
	future.DueDate = datePtr(today.AddDays(5))
	mustCreate(t, svc, future)

	mustCreate(t, svc, executionTask("No due date"))

	snoozedOverdue := executionTask("Snoozed overdue")
	snoozedOverdue.DueDate = datePtr(today.AddDays(-10))
	snoozed := mustCreate(t, svc, snoozedOverdue)
	st := task.StatusSnoozed
	if _, err := svc.UpdateTask(snoozed.ID, task.UpdateTaskRequest{Status: &st}); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	candidates, err := svc.ListCarryoverCandidates()
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1: %+v", len(candidates), candidates)
	}
	if candidates[0].ID != od.ID {
		t.Errorf("candidate = #%d, want #%d", candidates[0].ID, od.ID)
	}
	if candidates[0].OverdueDays != 3 {
		t.Errorf("overdue_days = %d, want 3", candidates[0].OverdueDays)
	}
}

func TestApplyCarryover(t *testing.T) {
	today := task.Today()

	tests := []struct {
		name       string
		dueDate    *task.Date
		action     task.CarryoverAction
		wantDue    string
		wantStatus task.TaskStatus
	}{
		{
			name:       "today resets the due date",
			dueDate:    datePtr(today.AddDays(-4)),
			action:     task.CarryoverToday,
			wantDue:    today.String(),
			wantStatus: task.StatusTodo,
		},
		{
			name:       "plus_2d shifts from the current due date",
			dueDate:    datePtr(today.AddDays(-4)),
			action:     task.CarryoverPlus2d,
			wantDue:    today.AddDays(-2).String(),
			wantStatus: task.StatusTodo,
		},
		{
			name:       "plus_7d shifts from the current due date",
			dueDate:    datePtr(today.AddDays(-4)),
			action:     task.CarryoverPlus7d,
			wantDue:    today.AddDays(3).String(),
			wantStatus: task.StatusTodo,
		},
		{
			name:       "plus_2d falls back to today without a due date",
			dueDate:    nil,
			action:     task.CarryoverPlus2d,
			wantDue:    today.AddDays(2).String(),
			wantStatus: task.StatusTodo,
		},
		{
			name:       "needs_redefine leaves the due date alone",
			dueDate:    datePtr(today.AddDays(-4)),
			action:     task.CarryoverNeedsRedefine,
			wantDue:    today.AddDays(-4).String(),
			wantStatus: task.StatusNeedsRedefine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)

			req := executionTask("Reschedule me")
			req.DueDate = tt.dueDate
			created := mustCreate(t, svc, req)

			updated, err := svc.ApplyCarryover(created.ID, tt.action)
			if err != nil {
				t.Fatalf("apply %s: %v", tt.action, err)
			}
			if updated.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", updated.Status, tt.wantStatus)
			}
			if updated.DueDate == nil || updated.DueDate.String() != tt.wantDue {
				t.Errorf("due_date = %v, want %s", updated.DueDate, tt.wantDue)
			}
		})
	}
}

func TestApplyCarryoverUnknownAction(t *testing.T) {
	svc, _ := newTestService(t)
	created := mustCreate(t, svc, executionTask("Confused"))

	if _, err := svc.ApplyCarryover(created.ID, "someday"); err == nil {
		t.Error("expected error for unknown action")
	}
}
