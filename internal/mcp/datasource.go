package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
)

// DataSource abstracts the data layer for MCP tools. Both Local (a store in
// this process) and HTTPClient (a liftlog server over its REST API) satisfy
// this interface.
type DataSource interface {
	Routines(ctx context.Context) ([]catalog.Routine, error)
	ExerciseNames(ctx context.Context) ([]string, error)
	Dates(ctx context.Context) ([]string, error)
	SessionsForDate(ctx context.Context, date string) ([]models.Session, error)
	PreviousWeight(ctx context.Context, exercise string) (models.Weight, bool, error)
	ProgressSeries(ctx context.Context, exercise string) ([]history.ProgressPoint, error)
	ProgressOverview(ctx context.Context) ([]history.ExerciseProgress, error)
}

// Local serves views from a store in this process.
type Local struct {
	store *history.Store
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func NewLocal(store *history.Store) *Local {
	return &Local{store: store}
}

func (l *Local) Routines(context.Context) ([]catalog.Routine, error) {
	return l.store.Catalog().Routines(), nil
}

func (l *Local) ExerciseNames(context.Context) ([]string, error) {
	return l.store.Catalog().ExerciseNames(), nil
}

func (l *Local) Dates(context.Context) ([]string, error) {
	return history.DistinctDates(l.store.Snapshot()), nil
}

func (l *Local) SessionsForDate(_ context.Context, date string) ([]models.Session, error) {
	return history.SessionsForDate(l.store.Snapshot(), date), nil
}

func (l *Local) PreviousWeight(_ context.Context, exercise string) (models.Weight, bool, error) {
	w, ok := history.PreviousWeight(l.store.Snapshot(), exercise)
	return w, ok, nil
}

func (l *Local) ProgressSeries(_ context.Context, exercise string) ([]history.ProgressPoint, error) {
	return history.ProgressSeries(l.store.Snapshot(), exercise), nil
}

func (l *Local) ProgressOverview(context.Context) ([]history.ExerciseProgress, error) {
	return history.ProgressOverview(l.store.Snapshot(), l.store.Catalog()), nil
}
