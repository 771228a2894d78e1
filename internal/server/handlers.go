package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.app.Store().Len(),
	})
}

func (s *Server) handleRoutines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Catalog().Routines())
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Catalog().ExerciseNames())
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, history.DistinctDates(s.app.Store().Snapshot()))
}

func (s *Server) handleSessionsForDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, history.SessionsForDate(s.app.Store().Snapshot(), date))
}

type previousWeightResponse struct {
	Exercise string        `json:"exercise"`
	Weight   models.Weight `json:"weight,omitempty"`
	Found    bool          `json:"found"`
}

// exerciseParam returns the decoded {name} segment. chi routes on the raw
// path when a name contains an escaped "/", so the value may still be
// escaped.
func exerciseParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "name"))
}

func (s *Server) handlePreviousWeight(w http.ResponseWriter, r *http.Request) {
	name, err := exerciseParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exercise name")
		return
	}
	weight, ok := history.PreviousWeight(s.app.Store().Snapshot(), name)
	writeJSON(w, http.StatusOK, previousWeightResponse{Exercise: name, Weight: weight, Found: ok})
}

type exerciseProgressResponse struct {
	Exercise string                   `json:"exercise"`
	Series   []history.ProgressPoint  `json:"series"`
	Summary  *history.ProgressSummary `json:"summary,omitempty"`
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	name, err := exerciseParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exercise name")
		return
	}
	series := history.ProgressSeries(s.app.Store().Snapshot(), name)
	resp := exerciseProgressResponse{Exercise: name, Series: series}
	if sum, ok := history.Summarize(series); ok {
		resp.Summary = &sum
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProgressOverview(w http.ResponseWriter, r *http.Request) {
	overview := history.ProgressOverview(s.app.Store().Snapshot(), s.app.Catalog())
	if overview == nil {
		overview = []history.ExerciseProgress{}
	}
	writeJSON(w, http.StatusOK, overview)
}

type saveRequest struct {
	Routine string            `json:"routine"`
	Weights map[string]string `json:"weights"`
}

type saveResponse struct {
	ID      history.SessionID `json:"id"`
	Session models.Session    `json:"session"`
}

// handleSaveSession saves weights from the body, or the current form when
// the body names no routine.
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	var (
		sess models.Session
		err  error
	)
	if req.Routine == "" {
		sess, err = s.app.SaveWorkout(r.Context())
	} else {
		sess, err = s.app.SaveWeights(r.Context(), req.Routine, req.Weights)
	}
	switch {
	case errors.Is(err, history.ErrNoWeights), errors.Is(err, history.ErrUnknownRoutine):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.log.Error("save session", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, saveResponse{ID: history.ID(sess), Session: sess})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	var id history.SessionID
	if err := json.NewDecoder(r.Body).Decode(&id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if !s.app.DeleteWorkout(r.Context(), id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFindSession(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, ok := s.app.Store().Find(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func parseSessionID(r *http.Request) (history.SessionID, error) {
	q := r.URL.Query()
	id := history.SessionID{Date: q.Get("date"), Routine: q.Get("routine")}
	if id.Date == "" || id.Routine == "" {
		return id, errors.New("date and routine parameters required")
	}
	ts, err := strconv.ParseInt(q.Get("timestamp"), 10, 64)
	if err != nil {
		return id, errors.New("invalid timestamp parameter")
	}
	id.Timestamp = ts
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type importResponse struct {
	Received int `json:"received"`
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// handleImport merges a workoutHistory export into the store without
// overwriting sessions that already exist.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	h, err := history.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := s.app.Store().Import(r.Context(), h)
	if err != nil {
		s.log.Error("import", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("history imported", "received", len(h), "imported", added)
	writeJSON(w, http.StatusOK, importResponse{Received: len(h), Imported: added, Total: s.app.Store().Len()})
}
