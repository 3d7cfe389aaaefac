package server

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestReaperReap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g, _ := store.CreateGame(ctx)

	r, err := NewReaper(slog.Default(), store, -time.Minute, "@every 1h")
	if err != nil {
		t.Fatalf("new reaper: %v", err)
	}

	if n := r.reap(ctx); n != 1 {
		t.Errorf("reaped %d, want 1", n)
	}
	if _, err := store.GetGame(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReaperKeepsFreshGames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g, _ := store.CreateGame(ctx)

	r, err := NewReaper(slog.Default(), store, time.Hour, "@every 1h")
	if err != nil {
		t.Fatalf("new reaper: %v", err)
	}
	if n := r.reap(ctx); n != 0 {
		t.Errorf("reaped %d, want 0", n)
	}
	if _, err := store.GetGame(ctx, g.ID); err != nil {
		t.Errorf("game should survive: %v", err)
	}
}

func TestReaperBadSchedule(t *testing.T) {
	if _, err := NewReaper(slog.Default(), newTestStore(t), time.Hour, "not a schedule"); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestReaperRunStops(t *testing.T) {
	r, err := NewReaper(slog.Default(), newTestStore(t), time.Hour, "@every 1h")
	if err != nil {
		t.Fatalf("new reaper: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop")
	}
}
