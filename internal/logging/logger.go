package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	// FileName enables a rotating log file. ".log" is appended if missing.
	FileName string
	// Console also writes to the console when a file is set.
	Console bool
	// Stderr makes stderr the console, for processes whose stdout is a
	// protocol stream.
	Stderr     bool
	Level      string
	FormatJSON bool
	MaxSizeMB  int
	MaxBackups int
}

// New builds the process logger. With no file configured it writes to
// the console only. The returned closer releases the log file and is never
// nil.
func New(params Params) (*slog.Logger, io.Closer) {
	var console io.Writer = os.Stdout
	if params.Stderr {
		console = os.Stderr
	}
	out := console
	var closer io.Closer = nopCloser{}

	if params.FileName != "" {
		if !strings.HasSuffix(params.FileName, ".log") {
			params.FileName += ".log"
		}
		maxSize := params.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 50
		}
		file := &lumberjack.Logger{
			Filename:   params.FileName,
			MaxSize:    maxSize, // megabytes
			MaxBackups: params.MaxBackups,
			Compress:   true,
		}
		closer = file
		out = file
		if params.Console {
			out = io.MultiWriter(console, file)
		}
	}

	return slog.New(newHandler(out, params)), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newHandler(w io.Writer, params Params) slog.Handler {
	opts := &slog.HandlerOptions{Level: GetLevel(params.Level)}
	if params.FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// GetLevel maps a level name to a slog level. Unknown names mean info.
func GetLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
