package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knagata/kadai/internal/server"
	"github.com/knagata/kadai/internal/storage"
	"github.com/knagata/kadai/internal/task"
)

const allowedOrigin = "http://localhost:5173"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "kadai.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := task.NewService(store)
	return server.New(0, []string{allowedOrigin}, svc, zerolog.Nop()).Handler()
}

// do sends a request with an optional JSON body and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func createTask(t *testing.T, h http.Handler, title string) task.Task {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":         title,
		"task_type":     "execution",
		"priority":      "should",
		"done_criteria": title + " finished",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[task.Task](t, rec)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestCreateAndGetTask(t *testing.T) {
	h := newTestHandler(t)

	created := createTask(t, h, "Ship it")
	assert.NotZero(t, created.ID)
	assert.Equal(t, task.StatusTodo, created.Status)

	rec := do(t, h, http.MethodGet, fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[task.TaskDetail](t, rec)
	assert.Equal(t, "Ship it", detail.Title)
	assert.Empty(t, detail.Children)
	assert.Empty(t, detail.Checklist)
	assert.Nil(t, detail.Origin)
}

func TestGetTaskNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/tasks/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["detail"], "not found")
}

func TestNonNumericTaskID(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/tasks/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaleRouteNotShadowedByID(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/tasks/stale", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[[]task.StaleTask](t, rec))

	rec = do(t, h, http.MethodGet, "/api/tasks/carryover-candidates", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[[]task.CarryoverCandidate](t, rec))
}

func TestCreateTaskValidation(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"task_type":     "execution",
		"priority":      "should",
		"done_criteria": "finished",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["detail"], "Title")
}

func TestMalformedJSONBody(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskRejectsDirectDone(t *testing.T) {
	h := newTestHandler(t)
	created := createTask(t, h, "Gated")

	rec := do(t, h, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", created.ID), map[string]any{
		"status": "done",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["detail"], "completion workflow")
}

func TestChecklistGatedCompletion(t *testing.T) {
	h := newTestHandler(t)
	created := createTask(t, h, "Gated work")
	base := fmt.Sprintf("/api/tasks/%d", created.ID)

	rec := do(t, h, http.MethodPost, base+"/checklist", map[string]any{"text": "open step"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[task.ChecklistItem](t, rec)
	assert.Equal(t, 1, item.OrderNo)

	// Blocked: one unresolved item.
	rec = do(t, h, http.MethodPost, base+"/complete", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["detail"], "1 checklist item")

	// Extract the blocker into a child task.
	rec = do(t, h, http.MethodPost, fmt.Sprintf("%s/checklist/%d/extract", base, item.ID), map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[task.ExtractResult](t, rec)
	assert.Equal(t, "open step", result.ExtractedTask.Title)
	require.NotNil(t, result.ChecklistItem.ExtractedTaskID)
	assert.Equal(t, result.ExtractedTask.ID, *result.ChecklistItem.ExtractedTaskID)

	// Second extraction refused.
	rec = do(t, h, http.MethodPost, fmt.Sprintf("%s/checklist/%d/extract", base, item.ID), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Now completion goes through.
	rec = do(t, h, http.MethodPost, base+"/complete", map[string]any{"note": "all clear"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	log := decode[task.CompletionLog](t, rec)
	require.NotNil(t, log.Note)
	assert.Equal(t, "all clear", *log.Note)

	rec = do(t, h, http.MethodGet, base+"/completion-log", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]task.CompletionLog](t, rec), 1)
}

func TestDeleteTask(t *testing.T) {
	h := newTestHandler(t)
	created := createTask(t, h, "Doomed")

	rec := do(t, h, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTasksStatusFilter(t *testing.T) {
	h := newTestHandler(t)
	created := createTask(t, h, "Movable")
	createTask(t, h, "Stays todo")

	rec := do(t, h, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", created.ID), map[string]any{
		"status": "doing",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/tasks?status=doing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]task.Task](t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestChildrenRoutes(t *testing.T) {
	h := newTestHandler(t)
	parent := createTask(t, h, "Parent")

	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/tasks/%d/children", parent.ID), map[string]any{
		"title":         "Child",
		"task_type":     "execution",
		"priority":      "must",
		"done_criteria": "child finished",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	child := decode[task.Task](t, rec)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/tasks/%d/children", parent.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]task.Task](t, rec), 1)
}

func TestCarryoverRoute(t *testing.T) {
	h := newTestHandler(t)
	created := createTask(t, h, "Reschedule me")

	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/tasks/%d/carryover", created.ID), map[string]any{
		"action": "today",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[task.Task](t, rec)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, task.Today().String(), updated.DueDate.String())

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/tasks/%d/carryover", created.ID), map[string]any{
		"action": "someday",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestConvergenceRoute(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":             "Pick a queue",
		"task_type":         "decision",
		"priority":          "must",
		"done_criteria":     "decision recorded",
		"reversible":        true,
		"exploration_limit": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[task.Task](t, rec)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/tasks/%d/convergence", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conv := decode[task.Convergence](t, rec)
	assert.True(t, conv.IsConvergeable)
	assert.Equal(t, 0, conv.ExplorationUsed)
}

func TestCaptureRoutes(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/captures", map[string]any{"text": "quick note"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[task.CaptureItem](t, rec)
	assert.False(t, created.IsResolved)

	rec = do(t, h, http.MethodPatch, fmt.Sprintf("/api/captures/%d", created.ID), map[string]any{
		"is_resolved": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/captures?is_resolved=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]task.CaptureItem](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/captures?is_resolved=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]task.CaptureItem](t, rec))

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/captures/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", allowedOrigin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
