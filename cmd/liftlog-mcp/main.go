package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/logging"
	liftmcp "github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file")
	remote := flag.String("server", "", "liftlog server URL; when set, tools query its REST API instead of local storage")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-mcp", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol.
	log, logCloser := logging.New(logging.Params{
		FileName: cfg.Log.File,
		Console:  cfg.Log.Stdout,
		Stderr:   true,
		Level:    cfg.Log.Level,
	})
	defer logCloser.Close()

	var ds liftmcp.DataSource
	if *remote != "" {
		ds = liftmcp.NewHTTPClient(*remote)
		log.Info("mcp using remote server", "url", *remote)
	} else {
		cat := catalog.Default()
		if cfg.Catalog.Path != "" {
			if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
				fmt.Fprintf(os.Stderr, "failed to load catalog: %v\n", err)
				os.Exit(1)
			}
		}

		ctx := context.Background()
		backend, err := storage.Open(ctx, cfg.Storage.Backend, cfg.Storage.DataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open storage: %v\n", err)
			os.Exit(1)
		}
		defer backend.Close()

		store := history.New(backend, cat, log, history.WithKey(cfg.Storage.Key))
		if err := store.Load(ctx); err != nil {
			log.Warn("history load failed", "error", err)
		}
		ds = liftmcp.NewLocal(store)
	}

	s := liftmcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
		os.Exit(1)
	}
}
