package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/knagata/kadai/internal/task"
)

// errorResponse is the JSON error envelope: {"detail": "..."}.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeError translates core errors into status codes: not-found to 404,
// workflow rule violations to 400, anything unexpected to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var incomplete *task.ChecklistIncompleteError
	switch {
	case task.IsNotFound(err):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.As(err, &incomplete):
		writeDetail(w, http.StatusBadRequest, incomplete.Error())
	case errors.Is(err, task.ErrInvalidTransition), errors.Is(err, task.ErrAlreadyExtracted):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("unhandled api error")
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeValid decodes the request body into v and runs validator tags.
// Malformed JSON is a 400, a validation failure a 422; both are written to w
// and reported by the false return.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := task.ValidateStruct(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// pathID parses an integer path value. A non-numeric id is a 400, written to
// w and reported by the false return.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
