package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"leadwatch/crawler/internal/catalog"
	"leadwatch/crawler/internal/config"
	"leadwatch/crawler/internal/database"
	"leadwatch/crawler/internal/engine"
	"leadwatch/crawler/internal/pipeline"
	"leadwatch/crawler/internal/scraper"
	"leadwatch/crawler/internal/server"
	"leadwatch/crawler/internal/store"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func usage() {
	fmt.Println("Usage: leadwatch [command] [options]")
	fmt.Println("Commands: seed, start, server, export, import, status, stats")
	fmt.Println("\nFor command-specific options, use: leadwatch [command] -h")
}

func main() {
	cfg := config.DefaultConfig()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	cmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("LEADWATCH_DB_PATH", config.DefaultDBPath),
		"Path to the SQLite database file (env: LEADWATCH_DB_PATH)")

	var logLevelStr string
	cmd.StringVar(&logLevelStr, "log-level", config.GetEnvString("LEADWATCH_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: LEADWATCH_LOG_LEVEL)")

	// Command-specific flags
	var (
		intervalMinutes    int
		minIntervalMinutes int
		subredditsStr      string
		sortModesStr       string
		exportDir          string
		importFile         string
		threadID           string
		statusValue        string
		freshDB            bool
	)

	switch os.Args[1] {
	case "start":
		cmd.StringVar(&cfg.DataDir, "data", config.GetEnvString("LEADWATCH_DATA_DIR", config.DefaultDataDir),
			"Directory for batch and status files (env: LEADWATCH_DATA_DIR)")
		cmd.IntVar(&intervalMinutes, "interval", config.GetEnvInt("LEADWATCH_INTERVAL", config.DefaultInterval),
			"Interval in minutes between crawl runs, 0 for one-shot mode (env: LEADWATCH_INTERVAL)")
		cmd.IntVar(&minIntervalMinutes, "min-interval", config.GetEnvInt("LEADWATCH_MIN_RUN_INTERVAL", config.DefaultMinRunInterval),
			"Minimum minutes since the last run before a new run starts (env: LEADWATCH_MIN_RUN_INTERVAL)")
		cmd.BoolVar(&cfg.Force, "force", false, "Run even if the minimum interval has not elapsed")
		cmd.StringVar(&subredditsStr, "subreddits", config.GetEnvString("LEADWATCH_SUBREDDITS", config.DefaultSubreddits),
			"Comma-separated subreddits to crawl, without the r/ prefix (env: LEADWATCH_SUBREDDITS)")
		cmd.StringVar(&sortModesStr, "sorts", config.GetEnvString("LEADWATCH_SORT_MODES", config.DefaultSortModes),
			"Comma-separated listing sort modes: hot, new, top, rising (env: LEADWATCH_SORT_MODES)")
	case "server":
		cmd.StringVar(&cfg.ServerHost, "host", config.GetEnvString("LEADWATCH_HOST", config.DefaultServerHost),
			"Host to bind the server to (env: LEADWATCH_HOST)")
		cmd.IntVar(&cfg.ServerPort, "port", config.GetEnvInt("LEADWATCH_PORT", config.DefaultServerPort),
			"Port to listen on (env: LEADWATCH_PORT)")
	case "export":
		cmd.StringVar(&exportDir, "out", config.GetEnvString("LEADWATCH_DATA_DIR", config.DefaultDataDir),
			"Directory to write the export file into (env: LEADWATCH_DATA_DIR)")
	case "import":
		cmd.StringVar(&importFile, "file", "", "Path to a JSON file of opportunities to import")
	case "status":
		cmd.StringVar(&threadID, "id", "", "Thread id of the opportunity to update")
		cmd.StringVar(&statusValue, "status", "", "New status: new, queued, processed or ignored")
	case "seed":
		cmd.BoolVar(&freshDB, "fresh", false, "Delete the existing database file before seeding")
	case "stats":
		// Only the common flags.
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		usage()
		os.Exit(1)
	}

	cmd.Parse(os.Args[2:])

	if level, err := zerolog.ParseLevel(logLevelStr); err == nil {
		cfg.LogLevel = level
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	cfg.Interval = time.Duration(intervalMinutes) * time.Minute
	cfg.MinRunInterval = time.Duration(minIntervalMinutes) * time.Minute
	if subredditsStr != "" {
		cfg.Subreddits = config.SplitList(subredditsStr)
	}
	if sortModesStr != "" {
		cfg.SortModes = config.SplitList(sortModesStr)
	}

	var err error
	switch os.Args[1] {
	case "seed":
		err = runSeed(cfg, freshDB)
	case "start":
		err = runStart(cfg)
	case "server":
		err = runServer(cfg)
	case "export":
		err = runExport(cfg, exportDir)
	case "import":
		err = runImport(cfg, importFile)
	case "status":
		err = runStatus(cfg, threadID, statusValue)
	case "stats":
		err = runStats(cfg)
	}

	if err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		os.Exit(1)
	}
}

func openDB(cfg *config.Config, readOnly bool) (*database.DB, error) {
	dbCfg := database.NewConfig(cfg.DBPath)
	dbCfg.ReadOnly = readOnly

	db, err := database.NewDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// runSeed initializes the database schema and the default catalog dataset.
func runSeed(cfg *config.Config, fresh bool) error {
	if fresh {
		if err := database.DeleteDB(cfg.DBPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		log.Info().Str("db", cfg.DBPath).Msg("Existing database removed")
	}

	db, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := catalog.New(db).Seed(context.Background()); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	log.Info().Str("db", cfg.DBPath).Msg("Database seeded")
	return nil
}

// runStart executes the crawl pipeline either once or periodically based on
// configuration.
func runStart(cfg *config.Config) error {
	if cfg.Interval <= 0 {
		log.Info().Msg("Running in one-shot mode")
	} else {
		log.Info().Int64("interval_minutes", int64(cfg.Interval.Minutes())).Msg("Running in periodic mode")
	}

	db, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	cat := catalog.New(db)
	runner := pipeline.NewRunner(
		scraper.New(scraper.Config{}),
		engine.New(cat),
		store.New(db),
		cfg.DataDir,
		cfg.MinRunInterval,
	)
	opts := pipeline.Options{
		Subreddits: cfg.Subreddits,
		SortModes:  cfg.SortModes,
		Force:      cfg.Force,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	if _, err := runner.Run(ctx, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("Crawl canceled by shutdown signal")
			return nil
		}
		return err
	}

	if cfg.Interval == 0 {
		log.Info().Msg("One-shot crawl completed, exiting")
		return nil
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", cfg.Interval).
		Time("next_run", time.Now().Add(cfg.Interval)).
		Msg("Waiting for next crawl")

	for {
		select {
		case <-ticker.C:
			log.Info().Msg("Starting scheduled crawl")

			if _, err := runner.Run(ctx, opts); err != nil {
				if errors.Is(err, context.Canceled) {
					log.Info().Msg("Crawl canceled by shutdown signal")
					return nil
				}
				log.Error().Err(err).Msg("Crawl failed")
				// Continue to the next cycle rather than exiting
			}

			log.Info().
				Time("next_run", time.Now().Add(cfg.Interval)).
				Msg("Waiting for next crawl")

		case <-ctx.Done():
			log.Info().Msg("Shutting down periodic crawling")
			return nil
		}
	}
}

// runServer starts the HTTP API server with the provided configuration.
func runServer(cfg *config.Config) error {
	db, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	return server.RunServer(store.New(db), cfg.ListenAddr(), log.Logger, cfg.APIKey)
}

func runExport(cfg *config.Config, dir string) error {
	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	path := store.New(db).ExportJSON(context.Background(), dir)
	if path == "" {
		log.Warn().Msg("Export produced no file")
		return nil
	}
	fmt.Printf("Exported opportunities to %s\n", path)
	return nil
}

func runImport(cfg *config.Config, file string) error {
	if file == "" {
		return fmt.Errorf("missing required flag: -file")
	}

	db, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	inserted := store.New(db).ImportJSON(context.Background(), file)
	fmt.Printf("Imported %d new opportunities\n", inserted)
	return nil
}

func runStatus(cfg *config.Config, threadID, status string) error {
	if threadID == "" || status == "" {
		return fmt.Errorf("missing required flags: -id and -status")
	}

	db, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	updated, err := store.New(db).UpdateStatus(context.Background(), threadID, status)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("no opportunity found for thread %s", threadID)
	}

	fmt.Printf("Updated %s to %s\n", threadID, status)
	return nil
}

func runStats(cfg *config.Config) error {
	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := store.New(db)
	total, byStatus, err := repo.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Total opportunities: %d\n", total)
	for _, status := range []string{"new", "queued", "processed", "ignored"} {
		if count, ok := byStatus[status]; ok {
			fmt.Printf("  %s: %d\n", status, count)
		}
	}

	top, err := repo.Top(context.Background(), 3)
	if err != nil {
		return err
	}
	if len(top) > 0 {
		fmt.Println("\nTop opportunities:")
		for i, opp := range top {
			fmt.Printf("  %d. %s (Score: %.1f, Subreddit: %s)\n", i+1, opp.Title, opp.Score, opp.Subreddit)
		}
	}
	return nil
}
