package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playperu/jeopardy/internal/jeopardy"
)

var (
	ErrSetupInProgress = errors.New("setup already in progress")
	ErrSetupFailed     = errors.New("setup failed")
	ErrNotReady        = errors.New("game is not ready")
)

// SessionBuilder produces a fresh, complete session.
type SessionBuilder interface {
	NewSession(ctx context.Context) (*jeopardy.Session, error)
}

// Games coordinates the idle -> loading -> ready lifecycle of each game
// and routes cell activations to its session.
type Games struct {
	store    Store
	sessions SessionBuilder
	broker   *Broker
	logger   *slog.Logger

	// setupBudget bounds how long a game may sit in loading before a new
	// Start is allowed to take it over.
	setupBudget time.Duration
}

func NewGames(logger *slog.Logger, store Store, sessions SessionBuilder, broker *Broker, setupBudget time.Duration) *Games {
	return &Games{
		store:       store,
		sessions:    sessions,
		broker:      broker,
		logger:      logger,
		setupBudget: setupBudget,
	}
}

func (g *Games) Create(ctx context.Context) (gameDoc, error) {
	doc, err := g.store.CreateGame(ctx)
	if err != nil {
		return gameDoc{}, err
	}
	g.logger.Info("game created", "game_id", doc.ID)
	return doc, nil
}

func (g *Games) Get(ctx context.Context, id string) (gameDoc, error) {
	return g.store.GetGame(ctx, id)
}

// Start builds a new session for the game and swaps it in. A second
// trigger while the first is still loading is rejected with
// ErrSetupInProgress, unless that load started more than the setup
// budget ago, in which case it is treated as abandoned. On failure the
// game goes back to idle with no board and the error is returned wrapped
// in ErrSetupFailed.
//
// Setup is not cancelled if the caller goes away; it runs until the
// upstream answers or its HTTP timeout fires.
func (g *Games) Start(ctx context.Context, id string) (gameDoc, error) {
	now := time.Now()
	_, err := g.store.ModifyGame(ctx, id, func(d *gameDoc) error {
		if d.Status == statusLoading {
			if !g.stale(d, now) {
				return ErrSetupInProgress
			}
			g.logger.Warn("taking over abandoned setup", "game_id", id, "loading_since", d.LoadingSince)
		}
		d.Status = statusLoading
		d.LoadingSince = now.UTC().Format(timeLayout)
		d.Started = true
		d.Session = nil
		d.LastError = ""
		return nil
	})
	if err != nil {
		return gameDoc{}, err
	}
	g.broker.Publish(id, Event{Type: eventLoading})

	ctx = context.WithoutCancel(ctx)

	sess, err := g.sessions.NewSession(ctx)
	if err != nil {
		g.logger.Error("game setup failed", "game_id", id, "error", err,
			"duration_ms", time.Since(now).Milliseconds())
		return gameDoc{}, g.fail(ctx, id, err)
	}

	doc, err := g.store.ModifyGame(ctx, id, func(d *gameDoc) error {
		d.Status = statusReady
		d.LoadingSince = ""
		d.Session = newSessionDoc(sess)
		return nil
	})
	if err != nil {
		g.logger.Error("storing new session", "game_id", id, "error", err)
		return gameDoc{}, g.fail(ctx, id, err)
	}

	g.logger.Info("game ready", "game_id", id,
		"categories", len(sess.Categories),
		"duration_ms", time.Since(now).Milliseconds())
	g.broker.Publish(id, Event{Type: eventReady})
	return doc, nil
}

// fail returns the game to idle and tells subscribers. If the reset
// cannot be stored the game stays loading until its setup budget runs
// out and the next Start takes it over.
func (g *Games) fail(ctx context.Context, id string, cause error) error {
	_, err := g.store.ModifyGame(ctx, id, func(d *gameDoc) error {
		d.Status = statusIdle
		d.LoadingSince = ""
		d.Session = nil
		d.LastError = cause.Error()
		return nil
	})
	if err != nil {
		g.logger.Error("resetting game after failed setup", "game_id", id, "error", err)
	}
	g.broker.Publish(id, Event{Type: eventFailed, Error: cause.Error()})
	return fmt.Errorf("%w: %w", ErrSetupFailed, cause)
}

// stale reports whether a loading game has outlived the setup budget.
func (g *Games) stale(d *gameDoc, now time.Time) bool {
	since := d.LoadingSince
	if since == "" {
		since = d.UpdatedAt
	}
	t, err := time.Parse(timeLayout, since)
	if err != nil {
		return true
	}
	return now.Sub(t) > g.setupBudget
}

// Activate advances the clue bound to c by one step.
func (g *Games) Activate(ctx context.Context, id string, c jeopardy.Coord) (clue jeopardy.Clue, changed bool, err error) {
	_, err = g.store.ModifyGame(ctx, id, func(d *gameDoc) error {
		if d.Status != statusReady || d.Session == nil {
			return ErrNotReady
		}
		sess, err := d.Session.session()
		if err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
		clue, changed, err = sess.Activate(c)
		if err != nil {
			return err
		}
		d.Session = newSessionDoc(sess)
		return nil
	})
	if err != nil {
		return jeopardy.Clue{}, false, err
	}

	if changed {
		row, col := c.Row, c.Col
		g.broker.Publish(id, Event{
			Type:    eventCell,
			Row:     &row,
			Col:     &col,
			Text:    clue.Display(),
			Showing: clue.Showing.String(),
		})
	}
	return clue, changed, nil
}
