package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/config"
	"github.com/tgienger/eventdesk/internal/db"
	"github.com/tgienger/eventdesk/internal/logging"
	"github.com/tgienger/eventdesk/internal/session"
	"github.com/tgienger/eventdesk/internal/ui"
	"github.com/tgienger/eventdesk/internal/ui/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("eventdesk %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logging.Component(logger, "main")
	log.WithField("version", version).WithField("api", cfg.APIURL).Info("starting")

	// Initialize database
	database, err := db.New(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	client := api.New(cfg.APIURL, database,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logging.Component(logger, "api")),
	)

	store := session.New(client, database, logging.Component(logger, "session"))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if err := store.Hydrate(ctx); err != nil {
		// The token is kept; the user starts signed out until the backend is reachable
		log.WithError(err).Warn("could not restore session")
	}
	cancel()

	deps := &views.Deps{
		API:         client,
		Session:     store,
		Log:         logging.Component(logger, "ui"),
		ChatRefresh: cfg.ChatRefresh,
	}

	// Create and run the application
	app := ui.NewApp(deps, database)
	defer app.Close()
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		log.WithError(err).Error("program exited")
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
