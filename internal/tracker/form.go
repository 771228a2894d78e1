package tracker

import (
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/catalog"
)

var (
	// ErrInvalidSet rejects a set number outside the exercise's set count.
	ErrInvalidSet = errors.New("invalid set")
	// ErrUnknownExercise rejects input for an exercise not in the active routine.
	ErrUnknownExercise = errors.New("exercise not in routine")
)

// Form is the in-progress workout: the chosen routine, typed weights and
// ticked sets. Nothing here is persisted until the workout is saved.
type Form struct {
	routine catalog.Routine
	weights map[string]string
	sets    map[string][]bool
}

func newForm(r catalog.Routine) *Form {
	f := &Form{routine: r}
	f.Reset()
	return f
}

// Reset clears weights and ticked sets, keeping the routine.
func (f *Form) Reset() {
	f.weights = make(map[string]string)
	f.sets = make(map[string][]bool)
}

func (f *Form) exercise(name string) (catalog.Exercise, error) {
	for _, ex := range f.routine.Exercises {
		if ex.Name == name {
			return ex, nil
		}
	}
	return catalog.Exercise{}, fmt.Errorf("%w: %q", ErrUnknownExercise, name)
}

// SetWeight records the weight typed for an exercise. An empty value
// clears it.
func (f *Form) SetWeight(exercise, value string) error {
	if _, err := f.exercise(exercise); err != nil {
		return err
	}
	if value == "" {
		delete(f.weights, exercise)
		return nil
	}
	f.weights[exercise] = value
	return nil
}

// ToggleSet flips the completion mark of set (1-based) and returns the new
// state.
func (f *Form) ToggleSet(exercise string, set int) (bool, error) {
	ex, err := f.exercise(exercise)
	if err != nil {
		return false, err
	}
	n := ex.Category.SetCount()
	if set < 1 || set > n {
		return false, fmt.Errorf("%w: %s has %d sets, got %d", ErrInvalidSet, exercise, n, set)
	}
	marks, ok := f.sets[exercise]
	if !ok {
		marks = make([]bool, n)
		f.sets[exercise] = marks
	}
	marks[set-1] = !marks[set-1]
	return marks[set-1], nil
}

func (f *Form) Weights() map[string]string {
	out := make(map[string]string, len(f.weights))
	for k, v := range f.weights {
		out[k] = v
	}
	return out
}

// FormExercise is one row of the form as the shell renders it.
type FormExercise struct {
	Name           string           `json:"name"`
	Category       catalog.Category `json:"category"`
	Image          string           `json:"image,omitempty"`
	Weight         string           `json:"weight"`
	PreviousWeight string           `json:"previous_weight,omitempty"`
	Sets           []bool           `json:"sets"`
}

// FormState is the JSON view of the form.
type FormState struct {
	Routine   string         `json:"routine"`
	Exercises []FormExercise `json:"exercises"`
}

func (f *Form) state(previous func(string) (string, bool)) FormState {
	st := FormState{Routine: f.routine.Name, Exercises: make([]FormExercise, 0, len(f.routine.Exercises))}
	for _, ex := range f.routine.Exercises {
		row := FormExercise{
			Name:     ex.Name,
			Category: ex.Category,
			Weight:   f.weights[ex.Name],
			Sets:     make([]bool, ex.Category.SetCount()),
		}
		copy(row.Sets, f.sets[ex.Name])
		if img, ok := ex.ImageRef(); ok {
			row.Image = img
		}
		if prev, ok := previous(ex.Name); ok {
			row.PreviousWeight = prev
		}
		st.Exercises = append(st.Exercises, row)
	}
	return st
}
