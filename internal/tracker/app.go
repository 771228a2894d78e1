package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/status"
)

// ErrSessionNotFound is returned when a session id matches nothing.
var ErrSessionNotFound = errors.New("session not found")

// Status texts shown to the user.
const (
	MsgSaved         = "Workout saved successfully!"
	MsgNoWeights     = "Please enter at least one weight"
	MsgDeleted       = "Workout deleted"
	MsgLoaded        = "Loaded workout history from storage"
	MsgLoadFailed    = "Error loading history"
	MsgPersistFailed = "Error saving workout history"
)

// App is the tracker as the UI shell sees it: navigation, the workout form,
// the transient status line, and the store's query and command surface.
// Commands go to the store; the store's events drive the status line.
type App struct {
	store *history.Store
	board *status.Board
	log   *slog.Logger

	mu   sync.Mutex
	nav  *Navigator
	form *Form

	unsubscribe func()
}

// New wires an app around store. The store should not have been loaded yet
// if the load outcome is to appear on the status line.
func New(store *history.Store, board *status.Board, log *slog.Logger) *App {
	first := store.Catalog().Routines()[0]
	a := &App{
		store: store,
		board: board,
		log:   log,
		nav:   NewNavigator(),
		form:  newForm(first),
	}
	a.unsubscribe = store.Subscribe(a.onStoreEvent)
	return a
}

// Close detaches the app from the store.
func (a *App) Close() {
	a.unsubscribe()
}

func (a *App) onStoreEvent(ev history.Event) {
	switch ev.Kind {
	case history.EventLoaded:
		if ev.Count > 0 {
			a.board.Info(MsgLoaded)
		}
	case history.EventLoadFailed:
		a.board.Error(MsgLoadFailed)
	case history.EventSaved:
		a.board.Info(MsgSaved)
	case history.EventDeleted:
		a.board.Info(MsgDeleted)
	case history.EventPersistFailed:
		a.log.Warn("history kept in memory only", "error", ev.Err)
		a.board.Error(MsgPersistFailed)
	}
}

func (a *App) Store() *history.Store     { return a.store }
func (a *App) Catalog() *catalog.Catalog { return a.store.Catalog() }
func (a *App) Status() *status.Board     { return a.board }

// SelectRoutine switches the form to another routine and clears it.
func (a *App) SelectRoutine(name string) error {
	r, ok := a.store.Catalog().Routine(name)
	if !ok {
		return fmt.Errorf("%w: %q", history.ErrUnknownRoutine, name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.form = newForm(r)
	return nil
}

func (a *App) SetWeight(exercise, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.SetWeight(exercise, value)
}

func (a *App) ToggleSet(exercise string, set int) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.ToggleSet(exercise, set)
}

// SaveWorkout saves the form as a session and clears it.
func (a *App) SaveWorkout(ctx context.Context) (models.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.store.Save(ctx, a.form.routine.Name, a.form.weights)
	if errors.Is(err, history.ErrNoWeights) {
		a.board.Error(MsgNoWeights)
		return models.Session{}, err
	}
	if err != nil {
		return models.Session{}, err
	}
	a.form.Reset()
	return sess, nil
}

// SaveWeights saves a session for routine from weights supplied directly,
// bypassing the form.
func (a *App) SaveWeights(ctx context.Context, routine string, weights map[string]string) (models.Session, error) {
	sess, err := a.store.Save(ctx, routine, weights)
	if errors.Is(err, history.ErrNoWeights) {
		a.board.Error(MsgNoWeights)
	}
	return sess, err
}

// DeleteWorkout deletes a session. If the detail view showed it, the app
// returns to the date view.
func (a *App) DeleteWorkout(ctx context.Context, id history.SessionID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.store.Delete(ctx, id) {
		return false
	}
	a.nav.sessionDeleted(id)
	return true
}

// ShowCurrent returns to the workout form, clearing it.
func (a *App) ShowCurrent() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nav.ShowCurrent()
	a.form.Reset()
}

func (a *App) ShowHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nav.ShowHistory()
}

func (a *App) ShowProgress() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nav.ShowProgress()
}

func (a *App) SelectDate(date string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav.SelectDate(date)
}

// ViewSession opens the detail view of a saved session.
func (a *App) ViewSession(id history.SessionID) (models.Session, error) {
	sess, ok := a.store.Find(id)
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nav.ViewSession(id)
	return sess, nil
}

func (a *App) Back() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav.Back()
}

// State is everything the shell needs to render the current screen.
type State struct {
	View         View                       `json:"view"`
	SelectedDate string                     `json:"selected_date,omitempty"`
	Dates        []string                   `json:"dates,omitempty"`
	Sessions     []models.Session           `json:"sessions,omitempty"`
	Session      *models.Session            `json:"session,omitempty"`
	Form         *FormState                 `json:"form,omitempty"`
	Progress     []history.ExerciseProgress `json:"progress,omitempty"`
	Status       *status.Message            `json:"status,omitempty"`
}

// State renders the current view's data from a fresh snapshot.
func (a *App) State() State {
	h := a.store.Snapshot()

	a.mu.Lock()
	defer a.mu.Unlock()

	st := State{View: a.nav.View(), SelectedDate: a.nav.SelectedDate()}
	switch st.View {
	case ViewCurrent:
		form := a.form.state(func(ex string) (string, bool) {
			w, ok := history.PreviousWeight(h, ex)
			return string(w), ok
		})
		st.Form = &form
	case ViewHistory:
		st.Dates = history.DistinctDates(h)
	case ViewDate:
		st.Sessions = history.SessionsForDate(h, st.SelectedDate)
	case ViewWorkoutDetail:
		if id, ok := a.nav.Viewed(); ok {
			if sess, ok := a.store.Find(id); ok {
				st.Session = &sess
			}
		}
	case ViewProgress:
		st.Progress = history.ProgressOverview(h, a.store.Catalog())
	}
	if msg, ok := a.board.Current(); ok {
		st.Status = &msg
	}
	return st
}
