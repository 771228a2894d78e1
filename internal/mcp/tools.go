package mcp

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListWorkoutDates = mcp.NewTool("list_workout_dates",
	mcp.WithDescription("List the calendar dates (YYYY-MM-DD) that have at least one logged workout session, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of dates to return. Defaults to all.")),
)

var toolGetSessionsForDate = mcp.NewTool("get_sessions_for_date",
	mcp.WithDescription("Get all workout sessions logged on a date, newest first. Each session has the routine name (type), the weights entered per exercise and a millisecond timestamp."),
	mcp.WithString("date", mcp.Required(), mcp.Description("Calendar date in YYYY-MM-DD format")),
)

var toolGetPreviousWeight = mcp.NewTool("get_previous_weight",
	mcp.WithDescription("Get the weight most recently logged for an exercise across all sessions."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name as listed by list_exercises")),
)

var toolGetProgressSeries = mcp.NewTool("get_progress_series",
	mcp.WithDescription("Weight progression of one exercise in chronological order, with a summary (first, current, max, improvement) when at least two points exist. Non-numeric entries are skipped."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name as listed by list_exercises")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List every exercise name across all routines, sorted and deduplicated."),
)

var toolGetProgressOverview = mcp.NewTool("get_progress_overview",
	mcp.WithDescription("Progress of every strength exercise that has at least two logged weights. Cardio and warm-up exercises are excluded."),
)

// --- Tool handlers ---

func (h *handlers) listWorkoutDates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dates, err := h.ds.Dates(ctx)
	if err != nil {
		h.log.Error("mcp list_workout_dates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if limit := req.GetInt("limit", 0); limit > 0 && limit < len(dates) {
		dates = dates[:limit]
	}
	if dates == nil {
		dates = []string{}
	}
	return jsonResult(dates)
}

func (h *handlers) getSessionsForDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date parameter is required"), nil
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.SessionsForDate(ctx, date)
	if err != nil {
		h.log.Error("mcp get_sessions_for_date", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return jsonResult(sessions)
}

type previousWeightResult struct {
	Exercise string        `json:"exercise"`
	Weight   models.Weight `json:"weight,omitempty"`
	Found    bool          `json:"found"`
}

func (h *handlers) getPreviousWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	w, ok, err := h.ds.PreviousWeight(ctx, exercise)
	if err != nil {
		h.log.Error("mcp get_previous_weight", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(previousWeightResult{Exercise: exercise, Weight: w, Found: ok})
}

type progressResult struct {
	Exercise string                   `json:"exercise"`
	Series   []history.ProgressPoint  `json:"series"`
	Summary  *history.ProgressSummary `json:"summary,omitempty"`
}

func (h *handlers) getProgressSeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	series, err := h.ds.ProgressSeries(ctx, exercise)
	if err != nil {
		h.log.Error("mcp get_progress_series", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	res := progressResult{Exercise: exercise, Series: series}
	if sum, ok := history.Summarize(series); ok {
		res.Summary = &sum
	}
	return jsonResult(res)
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := h.ds.ExerciseNames(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(names)
}

func (h *handlers) getProgressOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	overview, err := h.ds.ProgressOverview(ctx)
	if err != nil {
		h.log.Error("mcp get_progress_overview", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if overview == nil {
		overview = []history.ExerciseProgress{}
	}
	return jsonResult(overview)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
