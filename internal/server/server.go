package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	app    *tracker.App
	log    *slog.Logger
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(app *tracker.App, log *slog.Logger) *Server {
	s := &Server{
		app:    app,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	// Catalog and derived views
	s.router.Get("/api/v1/routines", s.handleRoutines)
	s.router.Get("/api/v1/exercises", s.handleExercises)
	s.router.Get("/api/v1/exercises/{name}/previous", s.handlePreviousWeight)
	s.router.Get("/api/v1/exercises/{name}/progress", s.handleExerciseProgress)
	s.router.Get("/api/v1/progress", s.handleProgressOverview)
	s.router.Get("/api/v1/history/dates", s.handleDates)
	s.router.Get("/api/v1/history/dates/{date}", s.handleSessionsForDate)

	// Session commands
	s.router.Post("/api/v1/sessions", s.handleSaveSession)
	s.router.Delete("/api/v1/sessions", s.handleDeleteSession)
	s.router.Get("/api/v1/sessions/find", s.handleFindSession)
	s.router.Post("/api/v1/import", s.handleImport)

	// UI shell state
	s.router.Get("/api/v1/state", s.handleState)
	s.router.Get("/api/v1/status", s.handleStatus)
	s.router.Post("/api/v1/view/{action}", s.handleView)
	s.router.Put("/api/v1/form/routine", s.handleFormRoutine)
	s.router.Put("/api/v1/form/weights", s.handleFormWeight)
	s.router.Post("/api/v1/form/sets", s.handleFormSet)
}

// SetFrontend mounts the UI shell filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
