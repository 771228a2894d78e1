package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.State())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	msg, ok := s.app.Status().Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// handleView applies a navigation action and returns the new state.
// "date" takes ?date=, "session" takes a session id body.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var err error
	switch action := chi.URLParam(r, "action"); action {
	case "current":
		s.app.ShowCurrent()
	case "history":
		s.app.ShowHistory()
	case "progress":
		s.app.ShowProgress()
	case "back":
		s.app.Back()
	case "date":
		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "date parameter required")
			return
		}
		err = s.app.SelectDate(date)
	case "session":
		var id history.SessionID
		if err := json.NewDecoder(r.Body).Decode(&id); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		_, err = s.app.ViewSession(id)
	default:
		writeError(w, http.StatusNotFound, "unknown view action "+action)
		return
	}

	switch {
	case errors.Is(err, tracker.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, tracker.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.app.State())
}

func (s *Server) handleFormRoutine(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Routine string `json:"routine"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.app.SelectRoutine(body.Routine); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.app.State())
}

func (s *Server) handleFormWeight(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Exercise string `json:"exercise"`
		Weight   string `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.app.SetWeight(body.Exercise, body.Weight); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFormSet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Exercise string `json:"exercise"`
		Set      int    `json:"set"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	done, err := s.app.ToggleSet(body.Exercise, body.Set)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exercise": body.Exercise,
		"set":      body.Set,
		"done":     done,
	})
}
