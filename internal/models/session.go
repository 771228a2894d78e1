package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for Session.Date.
const DateLayout = "2006-01-02"

// Weight is a recorded weight as the user typed it. Stored history may
// carry numbers instead of strings; both decode to the same value.
type Weight string

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (w *Weight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*w = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = Weight(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("weight must be a string or number: %w", err)
	}
	*w = Weight(n.String())
	return nil
}

// Blank reports whether no weight was entered.
func (w Weight) Blank() bool {
	return strings.TrimSpace(string(w)) == ""
}

// Kilos parses the weight as a number. A decimal comma is accepted.
func (w Weight) Kilos() (float64, bool) {
	s := strings.TrimSpace(string(w))
	if s == "" {
		return 0, false
	}
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "NaN" and "Inf", neither of which is a weight.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Session is one saved workout. Field names follow the persisted
// workoutHistory format.
type Session struct {
	Date      string            `json:"date"`
	Type      string            `json:"type"`
	Exercises map[string]Weight `json:"exercises"`
	Timestamp int64             `json:"timestamp"`
}

// SavedAt returns the save instant.
func (s Session) SavedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Weight returns the recorded weight for an exercise, if any was entered.
func (s Session) Weight(exercise string) (Weight, bool) {
	w, ok := s.Exercises[exercise]
	if !ok || w.Blank() {
		return "", false
	}
	return w, true
}

// Clone returns a copy that shares no map with s.
func (s Session) Clone() Session {
	out := s
	out.Exercises = make(map[string]Weight, len(s.Exercises))
	for k, v := range s.Exercises {
		out.Exercises[k] = v
	}
	return out
}

// History maps composite keys to sessions. It is the value persisted under
// the workoutHistory key.
type History map[string]Session

// Clone returns a deep copy.
func (h History) Clone() History {
	out := make(History, len(h))
	for k, s := range h {
		out[k] = s.Clone()
	}
	return out
}

// SessionKey builds the composite key for a session.
func SessionKey(date, routine string, timestamp int64) string {
	return date + "-" + routine + "-" + strconv.FormatInt(timestamp, 10)
}
