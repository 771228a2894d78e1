package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("liftlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("liftlog workout history server. Query training dates, logged sessions, previous weights and weight progression per exercise. Weights are kilograms as entered by the user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkoutDates, Handler: h.listWorkoutDates},
		server.ServerTool{Tool: toolGetSessionsForDate, Handler: h.getSessionsForDate},
		server.ServerTool{Tool: toolGetPreviousWeight, Handler: h.getPreviousWeight},
		server.ServerTool{Tool: toolGetProgressSeries, Handler: h.getProgressSeries},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetProgressOverview, Handler: h.getProgressOverview},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRoutines, Handler: h.routines},
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRoutines = mcp.NewResource(
	"liftlog://routines",
	"Routines",
	mcp.WithResourceDescription("All workout routines with their exercises, categories and set counts"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSessions = mcp.NewResource(
	"liftlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Sessions from the most recent training dates, newest first"),
	mcp.WithMIMEType("application/json"),
)
