package server

import (
	"net/http"
	"strconv"

	"github.com/knagata/kadai/internal/task"
)

func (s *Server) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	var isResolved *bool
	if v := r.URL.Query().Get("is_resolved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "is_resolved must be a boolean")
			return
		}
		isResolved = &b
	}

	captures, err := s.svc.ListCaptures(isResolved)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, captures)
}

func (s *Server) handleCreateCapture(w http.ResponseWriter, r *http.Request) {
	var req task.CreateCaptureRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	c, err := s.svc.CreateCapture(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCapture(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req task.UpdateCaptureRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	c, err := s.svc.UpdateCapture(id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCapture(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteCapture(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
