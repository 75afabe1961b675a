package server

import (
	"net/http"

	"github.com/knagata/kadai/internal/task"
)

func (s *Server) handleListChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := s.svc.ListChecklist(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req task.CreateChecklistItemRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	item, err := s.svc.CreateChecklistItem(id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req task.UpdateChecklistItemRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	item, err := s.svc.UpdateChecklistItem(taskID, itemID, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleExtractChecklistItem(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req task.ExtractRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	result, err := s.svc.Extract(taskID, itemID, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
