package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// recentDates is how many training dates liftlog://recent_sessions covers.
const recentDates = 5

type routineResource struct {
	Name      string             `json:"name"`
	Exercises []exerciseResource `json:"exercises"`
}

type exerciseResource struct {
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
	Sets     int              `json:"sets"`
	Tracked  bool             `json:"tracked"`
}

func (h *handlers) routines(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	routines, err := h.ds.Routines(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]routineResource, 0, len(routines))
	for _, r := range routines {
		rr := routineResource{Name: r.Name}
		for _, ex := range r.Exercises {
			rr.Exercises = append(rr.Exercises, exerciseResource{
				Name:     ex.Name,
				Category: ex.Category,
				Sets:     ex.Category.SetCount(),
				Tracked:  ex.Category.Tracked(),
			})
		}
		out = append(out, rr)
	}
	return jsonContents(req.Params.URI, out)
}

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	dates, err := h.ds.Dates(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) > recentDates {
		dates = dates[:recentDates]
	}

	sessions := []models.Session{}
	for _, d := range dates {
		day, err := h.ds.SessionsForDate(ctx, d)
		if err != nil {
			h.log.Warn("recent_sessions: date query failed", "date", d, "error", err)
			continue
		}
		sessions = append(sessions, day...)
	}
	return jsonContents(req.Params.URI, sessions)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
