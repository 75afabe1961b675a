package task_test

import (
	"errors"
	"testing"

	"github.com/knagata/kadai/internal/task"
)

func TestCaptureLifecycle(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateCapture(task.CreateCaptureRequest{Text: "check invoice numbers"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.IsResolved {
		t.Error("new capture starts unresolved")
	}

	updated, err := svc.UpdateCapture(created.ID, task.UpdateCaptureRequest{
		Text:       strPtr("check invoice numbers for August"),
		IsResolved: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != "check invoice numbers for August" || !updated.IsResolved {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := svc.DeleteCapture(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteCapture(created.ID); !errors.Is(err, task.ErrCaptureNotFound) {
		t.Errorf("second delete = %v, want ErrCaptureNotFound", err)
	}
}

func TestListCapturesResolvedFilter(t *testing.T) {
	svc, _ := newTestService(t)

	open, err := svc.CreateCapture(task.CreateCaptureRequest{Text: "open note"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	resolved, err := svc.CreateCapture(task.CreateCaptureRequest{Text: "resolved note"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateCapture(resolved.ID, task.UpdateCaptureRequest{IsResolved: boolPtr(true)}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	all, err := svc.ListCaptures(nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}

	onlyOpen, err := svc.ListCaptures(boolPtr(false))
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(onlyOpen) != 1 || onlyOpen[0].ID != open.ID {
		t.Errorf("open = %+v, want just #%d", onlyOpen, open.ID)
	}

	onlyResolved, err := svc.ListCaptures(boolPtr(true))
	if err != nil {
		t.Fatalf("list resolved: %v", err)
	}
	if len(onlyResolved) != 1 || onlyResolved[0].ID != resolved.ID {
		t.Errorf("resolved = %+v, want just #%d", onlyResolved, resolved.ID)
	}
}

func TestCaptureLinkedToTask(t *testing.T) {
	svc, _ := newTestService(t)

	owner := mustCreate(t, svc, executionTask("Linked work"))
	c, err := svc.CreateCapture(task.CreateCaptureRequest{
		Text:          "idea while working",
		RelatedTaskID: &owner.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.RelatedTaskID == nil || *c.RelatedTaskID != owner.ID {
		t.Errorf("related_task_id = %v, want %d", c.RelatedTaskID, owner.ID)
	}

	// Deleting the task detaches the capture instead of deleting it.
	if err := svc.DeleteTask(owner.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	got, err := svc.UpdateCapture(c.ID, task.UpdateCaptureRequest{})
	if err != nil {
		t.Fatalf("reload capture: %v", err)
	}
	if got.RelatedTaskID != nil {
		t.Errorf("related_task_id = %v, want nil after task delete", got.RelatedTaskID)
	}
}
