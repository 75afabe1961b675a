package server

import "net/http"

// registerRoutes sets up all API endpoints. The literal sub-paths (stale,
// carryover-candidates) coexist with the {id} routes because ServeMux gives
// the more specific literal pattern precedence.
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/stale", s.handleListStale)
	mux.HandleFunc("GET /api/tasks/carryover-candidates", s.handleCarryoverCandidates)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("GET /api/tasks/{id}/children", s.handleListChildren)
	mux.HandleFunc("POST /api/tasks/{id}/children", s.handleCreateChild)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.handleCompleteTask)
	mux.HandleFunc("GET /api/tasks/{id}/completion-log", s.handleListCompletionLogs)
	mux.HandleFunc("GET /api/tasks/{id}/convergence", s.handleGetConvergence)
	mux.HandleFunc("POST /api/tasks/{id}/carryover", s.handleApplyCarryover)
	mux.HandleFunc("GET /api/tasks/{id}/checklist", s.handleListChecklist)
	mux.HandleFunc("POST /api/tasks/{id}/checklist", s.handleCreateChecklistItem)
	mux.HandleFunc("PATCH /api/tasks/{id}/checklist/{itemID}", s.handleUpdateChecklistItem)
	mux.HandleFunc("POST /api/tasks/{id}/checklist/{itemID}/extract", s.handleExtractChecklistItem)

	mux.HandleFunc("GET /api/captures", s.handleListCaptures)
	mux.HandleFunc("POST /api/captures", s.handleCreateCapture)
	mux.HandleFunc("PATCH /api/captures/{id}", s.handleUpdateCapture)
	mux.HandleFunc("DELETE /api/captures/{id}", s.handleDeleteCapture)

	return s.requestLogMiddleware(s.corsMiddleware(mux))
}
