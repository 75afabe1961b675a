package server

import (
	"net/http"
	"strconv"

	"github.com/knagata/kadai/internal/task"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTasks supports equality filters on status, task_type, priority
// and parent_id, ANDed together.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := task.TaskFilter{}

	if v := q.Get("status"); v != "" {
		st := task.TaskStatus(v)
		filter.Status = &st
	}
	if v := q.Get("task_type"); v != "" {
		tt := task.TaskType(v)
		filter.TaskType = &tt
	}
	if v := q.Get("priority"); v != "" {
		p := task.Priority(v)
		filter.Priority = &p
	}
	if v := q.Get("parent_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "parent_id must be an integer")
			return
		}
		filter.ParentID = &id
	}

	tasks, err := s.svc.ListTasks(filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req task.CreateTaskRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	t, err := s.svc.CreateTask(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.svc.GetDetail(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req task.UpdateTaskRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	t, err := s.svc.UpdateTask(id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteTask(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	children, err := s.svc.ListChildren(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

func (s *Server) handleCreateChild(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req task.CreateTaskRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	t, err := s.svc.CreateChild(id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req task.CompleteRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	log, err := s.svc.Complete(id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (s *Server) handleListCompletionLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	logs, err := s.svc.ListCompletionLogs(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleGetConvergence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	conv, err := s.svc.GetConvergence(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleListStale(w http.ResponseWriter, r *http.Request) {
	var priority *task.Priority
	if v := r.URL.Query().Get("priority"); v != "" {
		p := task.Priority(v)
		priority = &p
	}
	stale, err := s.svc.ListStale(priority)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stale)
}

func (s *Server) handleCarryoverCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.svc.ListCarryoverCandidates()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (s *Server) handleApplyCarryover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req task.CarryoverRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	t, err := s.svc.ApplyCarryover(id, req.Action)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
