package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/logging"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file")
	exportPath := flag.String("file", "", "path to a workoutHistory JSON export (required)")
	serverURL := flag.String("server", "", "liftlog server URL; when set, the export is sent to it instead of local storage")
	dryRun := flag.Bool("dry-run", false, "report counts without writing")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-import", Version)
		return
	}

	// Load config before logging so the configured level and file apply.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser := newLogger(cfg)
	defer logCloser.Close()

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -file export.json [-config config.yaml | -server URL] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*exportPath)
	if err != nil {
		log.Error("failed to read export", "path", *exportPath, "error", err)
		os.Exit(1)
	}
	incoming, err := history.Decode(data)
	if err != nil {
		log.Error("export is not a workout history", "path", *exportPath, "error", err)
		os.Exit(1)
	}
	log.Info("export parsed", "sessions", len(incoming))

	ctx := context.Background()

	if *serverURL != "" {
		if *dryRun {
			log.Info("DRY RUN mode: export not sent", "server", *serverURL)
			return
		}
		res, err := upload.NewClient(*serverURL).SendHistory(ctx, data)
		if err != nil {
			log.Error("upload failed", "server", *serverURL, "error", err)
			os.Exit(1)
		}
		log.Info("import complete", "received", res.Received, "imported", res.Imported, "total", res.Total)
		return
	}

	backend, err := storage.Open(ctx, cfg.Storage.Backend, cfg.Storage.DataDir)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
			log.Error("failed to load catalog", "path", cfg.Catalog.Path, "error", err)
			os.Exit(1)
		}
	}

	store := history.New(backend, cat, log, history.WithKey(cfg.Storage.Key))
	if err := store.Load(ctx); err != nil {
		// Importing over an unreadable history would replace it.
		log.Error("existing history unreadable, refusing to import", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		existing := store.Snapshot()
		fresh := 0
		for k, sess := range incoming {
			if _, ok := existing[k]; ok {
				continue
			}
			if _, ok := store.Find(history.ID(sess)); ok {
				continue
			}
			fresh++
		}
		log.Info("DRY RUN mode: nothing written", "would_import", fresh, "already_present", len(incoming)-fresh)
		return
	}

	added, err := store.Import(ctx, incoming)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete", "imported", added, "skipped", len(incoming)-added, "total", store.Len())
}

// newLogger follows the log section of the config. Import progress is
// always shown on the console.
func newLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	return logging.New(logging.Params{
		FileName:   cfg.Log.File,
		Console:    true,
		Level:      cfg.Log.Level,
		FormatJSON: cfg.Log.JSON,
	})
}
