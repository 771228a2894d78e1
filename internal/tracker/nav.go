package tracker

import (
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/history"
)

// View is a screen of the tracker.
type View string

const (
	ViewCurrent       View = "current"
	ViewHistory       View = "history"
	ViewDate          View = "date"
	ViewWorkoutDetail View = "workout-detail"
	ViewProgress      View = "progress"
)

// ErrInvalidTransition is returned for navigation the current view does
// not allow.
var ErrInvalidTransition = errors.New("invalid navigation")

// parent is where Back leads from each view.
var parent = map[View]View{
	ViewCurrent:       ViewCurrent,
	ViewHistory:       ViewCurrent,
	ViewProgress:      ViewCurrent,
	ViewDate:          ViewHistory,
	ViewWorkoutDetail: ViewDate,
}

// Navigator tracks the current view and its selection. Not safe for
// concurrent use; App serializes access.
type Navigator struct {
	view         View
	selectedDate string
	viewed       *history.SessionID
}

func NewNavigator() *Navigator {
	return &Navigator{view: ViewCurrent}
}

func (n *Navigator) View() View           { return n.view }
func (n *Navigator) SelectedDate() string { return n.selectedDate }

// Viewed returns the session shown in the workout-detail view.
func (n *Navigator) Viewed() (history.SessionID, bool) {
	if n.viewed == nil {
		return history.SessionID{}, false
	}
	return *n.viewed, true
}

func (n *Navigator) ShowCurrent() {
	n.view = ViewCurrent
	n.viewed = nil
}

func (n *Navigator) ShowHistory() {
	n.view = ViewHistory
	n.selectedDate = ""
	n.viewed = nil
}

func (n *Navigator) ShowProgress() {
	n.view = ViewProgress
	n.viewed = nil
}

// SelectDate opens the sessions of one date. Allowed from the history view
// and when returning from a session detail.
func (n *Navigator) SelectDate(date string) error {
	if n.view != ViewHistory && n.view != ViewDate && n.view != ViewWorkoutDetail {
		return fmt.Errorf("%w: select date from %s", ErrInvalidTransition, n.view)
	}
	n.view = ViewDate
	n.selectedDate = date
	n.viewed = nil
	return nil
}

// ViewSession opens a saved session. The session's date becomes the
// selected date so Back returns to it.
func (n *Navigator) ViewSession(id history.SessionID) {
	n.view = ViewWorkoutDetail
	n.selectedDate = id.Date
	n.viewed = &id
}

// Back moves to the parent view.
func (n *Navigator) Back() View {
	next := parent[n.view]
	if next != ViewDate {
		n.selectedDate = ""
	}
	n.viewed = nil
	n.view = next
	return next
}

// sessionDeleted leaves the detail view if it showed the deleted session.
func (n *Navigator) sessionDeleted(id history.SessionID) {
	if n.view == ViewWorkoutDetail && n.viewed != nil && *n.viewed == id {
		n.view = ViewDate
		n.viewed = nil
	}
}
