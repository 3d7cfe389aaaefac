package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/jeopardy/internal/config"
	"github.com/playperu/jeopardy/internal/database"
	"github.com/playperu/jeopardy/internal/handler/health"
	"github.com/playperu/jeopardy/internal/jeopardy"
	"github.com/playperu/jeopardy/internal/server"
	"github.com/playperu/jeopardy/internal/trivia"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	dotenvErr := godotenv.Load()
	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", dotenvErr)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	if dotenvErr != nil {
		logger.Debug("no .env file found, using environment variables")
	}

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	store, err := server.NewDocStore(ctx, db)
	if err != nil {
		return fmt.Errorf("initializing game store: %w", err)
	}
	if n, err := store.ResetLoading(ctx); err != nil {
		return fmt.Errorf("resetting interrupted games: %w", err)
	} else if n > 0 {
		logger.Warn("reset games left loading by a previous run", "count", n)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Trivia upstream ---
	source, err := trivia.New(logger, trivia.Options{
		BaseURL: cfg.TriviaBaseURL,
		Timeout: cfg.TriviaTimeout,
		Rate:    cfg.TriviaRate,
		Burst:   cfg.NumCategories,
	})
	if err != nil {
		return fmt.Errorf("creating trivia client: %w", err)
	}
	selector := jeopardy.NewSelector(source, nil,
		cfg.NumCategories, cfg.CluesPerCategory, cfg.CategoryPoolSize)

	// --- Games ---
	broker := server.NewBroker()
	games := server.NewGames(logger, store, selector, broker, cfg.SetupBudget)

	reaper, err := server.NewReaper(logger, store, cfg.GameTTL, cfg.ReapSchedule)
	if err != nil {
		return err
	}

	// --- HTTP Server ---
	healthz := health.NewHandler(logger,
		map[string]health.Checker{"sqlite": dbChecker{db}},
		map[string]health.Checker{"trivia": health.CheckerFunc(source.Ping)},
	)
	srv := server.New(cfg.HTTPAddr, logger, games, broker, healthz)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting game reaper", "schedule", cfg.ReapSchedule, "ttl", cfg.GameTTL.String())
		return reaper.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }
