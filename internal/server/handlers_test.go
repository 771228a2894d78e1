package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/status"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cat, err := catalog.New([]catalog.Routine{
		{Name: "Push", Exercises: []catalog.Exercise{
			{Name: "Treadmill", Category: catalog.Cardio},
			{Name: "Bench Press", Category: catalog.Chest},
		}},
		{Name: "Pull", Exercises: []catalog.Exercise{
			{Name: "Row", Category: catalog.Back},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := time.Date(2024, 3, 1, 18, 0, 0, 0, time.Local)
	clock := func() time.Time {
		ts = ts.Add(time.Hour)
		return ts
	}
	store := history.New(storage.NewMemoryBackend(), cat, discardLog, history.WithClock(clock))
	board := status.NewBoard(time.Minute)
	t.Cleanup(board.Close)
	app := tracker.New(store, board, discardLog)
	t.Cleanup(app.Close)
	return New(app, discardLog)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

func saveSession(t *testing.T, s *Server, routine string, weights map[string]string) saveResponse {
	t.Helper()
	body, _ := json.Marshal(saveRequest{Routine: routine, Weights: weights})
	rec := do(t, s, http.MethodPost, "/api/v1/sessions", string(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp saveResponse
	decode(t, rec, &resp)
	return resp
}

// TestHealth verifies /healthz reports the session count.
func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["status"] != "ok" || body["sessions"] != float64(0) {
		t.Errorf("body = %v", body)
	}
}

func TestExercises(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/exercises", "")
	var names []string
	decode(t, rec, &names)
	want := []string{"Bench Press", "Row", "Treadmill"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("exercises = %v, want %v", names, want)
	}
}

// TestSaveAndQuery saves two sessions and reads them back through every view.
func TestSaveAndQuery(t *testing.T) {
	s := newTestServer(t)
	first := saveSession(t, s, "Push", map[string]string{"Bench Press": "60", "Treadmill": ""})
	second := saveSession(t, s, "Push", map[string]string{"Bench Press": "62,5"})

	if _, ok := first.Session.Exercises["Treadmill"]; ok {
		t.Error("blank weight should not be stored")
	}

	rec := do(t, s, http.MethodGet, "/api/v1/history/dates", "")
	var dates []string
	decode(t, rec, &dates)
	if len(dates) != 1 || dates[0] != first.Session.Date {
		t.Errorf("dates = %v, want [%s]", dates, first.Session.Date)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/history/dates/"+first.Session.Date, "")
	var sessions []models.Session
	decode(t, rec, &sessions)
	if len(sessions) != 2 || sessions[0].Timestamp != second.Session.Timestamp {
		t.Errorf("sessions = %+v, want newest first", sessions)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises/Bench%20Press/previous", "")
	var prev previousWeightResponse
	decode(t, rec, &prev)
	if !prev.Found || prev.Weight != "62,5" {
		t.Errorf("previous = %+v, want 62,5", prev)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises/Bench%20Press/progress", "")
	var progress exerciseProgressResponse
	decode(t, rec, &progress)
	if len(progress.Series) != 2 || progress.Series[1].Weight != 62.5 {
		t.Errorf("series = %+v", progress.Series)
	}
	if progress.Summary == nil || progress.Summary.Improvement != 2.5 {
		t.Errorf("summary = %+v, want improvement 2.5", progress.Summary)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/progress", "")
	var overview []history.ExerciseProgress
	decode(t, rec, &overview)
	if len(overview) != 1 || overview[0].Exercise != "Bench Press" {
		t.Errorf("overview = %+v", overview)
	}

	id := first.ID
	q := "/api/v1/sessions/find?date=" + id.Date + "&routine=" + id.Routine + "&timestamp=" + strconv.FormatInt(id.Timestamp, 10)
	rec = do(t, s, http.MethodGet, q, "")
	if rec.Code != http.StatusOK {
		t.Errorf("find status = %d, want 200", rec.Code)
	}
}

func TestSaveErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"no weights", `{"routine":"Push","weights":{"Bench Press":" "}}`, http.StatusBadRequest},
		{"unknown routine", `{"routine":"Legs","weights":{"Squat":"100"}}`, http.StatusBadRequest},
		{"empty form", ``, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := do(t, s, http.MethodPost, "/api/v1/sessions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestSaveFromForm verifies a body without a routine saves the form.
func TestSaveFromForm(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPut, "/api/v1/form/weights", `{"exercise":"Bench Press","weight":"70"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("set weight status = %d, want 204", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/form/sets", `{"exercise":"Bench Press","set":1}`)
	var toggled map[string]any
	decode(t, rec, &toggled)
	if toggled["done"] != true {
		t.Errorf("toggle = %v, want done", toggled)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/v1/status", "")
	var msg status.Message
	decode(t, rec, &msg)
	if msg.Text != tracker.MsgSaved {
		t.Errorf("status = %q, want %q", msg.Text, tracker.MsgSaved)
	}
}

func TestFormErrors(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodPost, "/api/v1/form/sets", `{"exercise":"Treadmill","set":2}`); rec.Code != http.StatusBadRequest {
		t.Errorf("cardio set 2 status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/v1/form/routine", `{"routine":"Legs"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown routine status = %d, want 400", rec.Code)
	}
	rec := do(t, s, http.MethodPut, "/api/v1/form/routine", `{"routine":"Pull"}`)
	var st tracker.State
	decode(t, rec, &st)
	if st.Form == nil || st.Form.Routine != "Pull" {
		t.Errorf("form = %+v, want Pull", st.Form)
	}
}

// TestDeleteSession verifies delete removes once and 404s after.
func TestDeleteSession(t *testing.T) {
	s := newTestServer(t)
	saved := saveSession(t, s, "Pull", map[string]string{"Row": "50"})
	body, _ := json.Marshal(saved.ID)

	if rec := do(t, s, http.MethodDelete, "/api/v1/sessions", string(body)); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/sessions", string(body)); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

// TestViewNavigation drives the view state machine over HTTP.
func TestViewNavigation(t *testing.T) {
	s := newTestServer(t)
	saved := saveSession(t, s, "Pull", map[string]string{"Row": "50"})

	if rec := do(t, s, http.MethodPost, "/api/v1/view/date?date="+saved.ID.Date, ""); rec.Code != http.StatusConflict {
		t.Errorf("date from current status = %d, want 409", rec.Code)
	}

	steps := []struct {
		target string
		body   string
		want   tracker.View
	}{
		{"/api/v1/view/history", "", tracker.ViewHistory},
		{"/api/v1/view/date?date=" + saved.ID.Date, "", tracker.ViewDate},
		{"/api/v1/view/session", mustJSON(t, saved.ID), tracker.ViewWorkoutDetail},
		{"/api/v1/view/back", "", tracker.ViewDate},
		{"/api/v1/view/back", "", tracker.ViewHistory},
		{"/api/v1/view/progress", "", tracker.ViewProgress},
		{"/api/v1/view/current", "", tracker.ViewCurrent},
	}
	for _, step := range steps {
		rec := do(t, s, http.MethodPost, step.target, step.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d: %s", step.target, rec.Code, rec.Body.String())
		}
		var st tracker.State
		decode(t, rec, &st)
		if st.View != step.want {
			t.Errorf("%s view = %s, want %s", step.target, st.View, step.want)
		}
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/view/sideways", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown action status = %d, want 404", rec.Code)
	}
}

func TestStatusEmpty(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/v1/status", ""); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestSessionsForDateRejectsBadDate(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/v1/history/dates/yesterday", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestFrontendFallback verifies unknown paths serve index.html.
func TestFrontendFallback(t *testing.T) {
	s := newTestServer(t)
	s.SetFrontend(fstest.MapFS{
		"index.html": {Data: []byte("<html>liftlog</html>")},
		"app.js":     {Data: []byte("console.log(1)")},
	})

	rec := do(t, s, http.MethodGet, "/history", "")
	if !strings.Contains(rec.Body.String(), "liftlog") {
		t.Errorf("fallback body = %q, want index.html", rec.Body.String())
	}
	rec = do(t, s, http.MethodGet, "/app.js", "")
	if !strings.Contains(rec.Body.String(), "console.log") {
		t.Errorf("asset body = %q", rec.Body.String())
	}
}

// TestSavedHistoryOnDisk verifies a save through the API reaches the file backend.
func TestSavedHistoryOnDisk(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.OpenFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	store := history.New(backend, catalog.Default(), discardLog)
	if err := store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	board := status.NewBoard(time.Minute)
	defer board.Close()
	app := tracker.New(store, board, discardLog)
	defer app.Close()
	s := New(app, discardLog)

	routine := catalog.Default().Routines()[0]
	body := mustJSON(t, saveRequest{Routine: routine.Name, Weights: map[string]string{routine.Exercises[2].Name: "40"}})
	if rec := do(t, s, http.MethodPost, "/api/v1/sessions", body); rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, history.DefaultKey+".json"))
	if err != nil {
		t.Fatal(err)
	}
	h, err := history.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(h) != 1 {
		t.Errorf("sessions on disk = %d, want 1", len(h))
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// TestImport verifies an export merges without overwriting existing keys.
func TestImport(t *testing.T) {
	s := newTestServer(t)
	saved := saveSession(t, s, "Pull", map[string]string{"Row": "50"})
	key := models.SessionKey(saved.Session.Date, saved.Session.Type, saved.Session.Timestamp)

	export := map[string]any{
		key: map[string]any{"date": saved.Session.Date, "type": "Pull", "exercises": map[string]any{"Row": "999"}, "timestamp": saved.Session.Timestamp},
		"2023-05-01-Push-1682935200000": map[string]any{"date": "2023-05-01", "type": "Push", "exercises": map[string]any{"Bench Press": 55}, "timestamp": 1682935200000},
	}
	rec := do(t, s, http.MethodPost, "/api/v1/import", mustJSON(t, export))
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp importResponse
	decode(t, rec, &resp)
	if resp.Received != 2 || resp.Imported != 1 || resp.Total != 2 {
		t.Errorf("import = %+v, want received 2, imported 1, total 2", resp)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises/Row/previous", "")
	var prev previousWeightResponse
	decode(t, rec, &prev)
	if prev.Weight != "50" {
		t.Errorf("Row previous = %q, want existing 50", prev.Weight)
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/import", "[1,2]"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad import status = %d, want 400", rec.Code)
	}
}
