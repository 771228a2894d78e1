package history

import (
	"math"
	"sort"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
)

// MinChartPoints is the smallest series worth drawing as a line.
const MinChartPoints = 2

// DistinctDates returns each session date once, most recent first.
func DistinctDates(h models.History) []string {
	seen := make(map[string]bool)
	dates := make([]string, 0)
	for _, s := range h {
		if !seen[s.Date] {
			seen[s.Date] = true
			dates = append(dates, s.Date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// SessionsForDate returns the sessions saved on date, most recently saved
// first.
func SessionsForDate(h models.History, date string) []models.Session {
	out := make([]models.Session, 0)
	for _, s := range h {
		if s.Date == date {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// PreviousWeight returns the weight from the most recent session, of any
// routine, that recorded one for exercise.
func PreviousWeight(h models.History, exercise string) (models.Weight, bool) {
	var (
		best  models.Weight
		bestT int64
		found bool
	)
	for _, s := range h {
		w, ok := s.Weight(exercise)
		if !ok {
			continue
		}
		if !found || s.Timestamp > bestT {
			best, bestT, found = w, s.Timestamp, true
		}
	}
	return best, found
}

// ProgressPoint is one numeric weight for an exercise.
type ProgressPoint struct {
	Date      string  `json:"date"`
	Weight    float64 `json:"weight"`
	Timestamp int64   `json:"timestamp"`
}

// ProgressSeries returns the numeric weights recorded for exercise, oldest
// first. Blank and non-numeric entries are skipped. Series shorter than
// MinChartPoints are returned as-is.
func ProgressSeries(h models.History, exercise string) []ProgressPoint {
	points := make([]ProgressPoint, 0)
	for _, s := range h {
		w, ok := s.Weight(exercise)
		if !ok {
			continue
		}
		kg, ok := w.Kilos()
		if !ok {
			continue
		}
		points = append(points, ProgressPoint{Date: s.Date, Weight: kg, Timestamp: s.Timestamp})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Timestamp != points[j].Timestamp {
			return points[i].Timestamp < points[j].Timestamp
		}
		return points[i].Date < points[j].Date
	})
	return points
}

// ProgressSummary describes the change across a progress series.
type ProgressSummary struct {
	First          float64 `json:"first"`
	Current        float64 `json:"current"`
	Max            float64 `json:"max"`
	Improvement    float64 `json:"improvement"`
	ImprovementPct float64 `json:"improvement_pct"`
	Sessions       int     `json:"sessions"`
}

// Summarize computes a summary for a series with at least MinChartPoints
// points.
func Summarize(points []ProgressPoint) (ProgressSummary, bool) {
	if len(points) < MinChartPoints {
		return ProgressSummary{}, false
	}
	first := points[0].Weight
	current := points[len(points)-1].Weight
	maxW := first
	for _, p := range points[1:] {
		maxW = math.Max(maxW, p.Weight)
	}
	improvement := current - first
	var pct float64
	if first != 0 {
		pct = math.Round(improvement/first*1000) / 10
	}
	return ProgressSummary{
		First:          first,
		Current:        current,
		Max:            maxW,
		Improvement:    improvement,
		ImprovementPct: pct,
		Sessions:       len(points),
	}, true
}

// ExerciseProgress is one chartable exercise for the progress view.
type ExerciseProgress struct {
	Exercise string           `json:"exercise"`
	Category catalog.Category `json:"category"`
	Image    string           `json:"image,omitempty"`
	Series   []ProgressPoint  `json:"series"`
	Summary  ProgressSummary  `json:"summary"`
}

// ProgressOverview returns the chartable exercises in name order. Cardio
// and warmup exercises are left out, as are exercises with fewer than
// MinChartPoints numeric weights.
func ProgressOverview(h models.History, cat *catalog.Catalog) []ExerciseProgress {
	out := make([]ExerciseProgress, 0)
	for _, name := range cat.ExerciseNames() {
		ex, _ := cat.Exercise(name)
		if !ex.Category.Tracked() {
			continue
		}
		series := ProgressSeries(h, name)
		summary, ok := Summarize(series)
		if !ok {
			continue
		}
		image, _ := ex.ImageRef()
		out = append(out, ExerciseProgress{
			Exercise: name,
			Category: ex.Category,
			Image:    image,
			Series:   series,
			Summary:  summary,
		})
	}
	return out
}
