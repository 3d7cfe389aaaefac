package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/playperu/jeopardy/internal/jeopardy"
)

func TestDocStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g, err := store.CreateGame(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !validGameID(g.ID) {
		t.Errorf("id %q is not a valid game id", g.ID)
	}

	sess, err := buildSession("rt")
	if err != nil {
		t.Fatalf("build session: %v", err)
	}
	if _, _, err := sess.Activate(jeopardy.Coord{Row: 1, Col: 4}); err != nil {
		t.Fatalf("activate: %v", err)
	}

	want, err := store.ModifyGame(ctx, g.ID, func(d *gameDoc) error {
		d.Status = statusReady
		d.Started = true
		d.Session = newSessionDoc(sess)
		return nil
	})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}

	got, err := store.GetGame(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stored game mismatch (-want +got):\n%s", diff)
	}

	restored, err := got.Session.session()
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if diff := cmp.Diff(sess, restored); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}
}

func TestDocStoreNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetGame(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: err = %v, want ErrNotFound", err)
	}
	_, err := store.ModifyGame(ctx, "missing", func(*gameDoc) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("modify: err = %v, want ErrNotFound", err)
	}
}

func TestDocStoreModifyErrorWritesNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g, _ := store.CreateGame(ctx)
	boom := errors.New("boom")

	_, err := store.ModifyGame(ctx, g.ID, func(d *gameDoc) error {
		d.Status = statusReady
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, _ := store.GetGame(ctx, g.ID)
	if got.Status != statusIdle {
		t.Errorf("status = %q, want idle", got.Status)
	}
}

func TestDocStoreDeleteGamesBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	idle, _ := store.CreateGame(ctx)
	loading, _ := store.CreateGame(ctx)
	if _, err := store.ModifyGame(ctx, loading.ID, func(d *gameDoc) error {
		d.Status = statusLoading
		return nil
	}); err != nil {
		t.Fatalf("modify: %v", err)
	}

	n, err := store.DeleteGamesBefore(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted %d recent games, want 0", n)
	}

	n, err = store.DeleteGamesBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d games, want 1", n)
	}
	if _, err := store.GetGame(ctx, idle.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle game: err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetGame(ctx, loading.ID); err != nil {
		t.Errorf("loading game should survive: %v", err)
	}
}

func TestDocStoreResetLoading(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stuck, _ := store.CreateGame(ctx)
	ready, _ := store.CreateGame(ctx)
	sess, _ := buildSession("r")

	store.ModifyGame(ctx, stuck.ID, func(d *gameDoc) error {
		d.Status = statusLoading
		d.Started = true
		return nil
	})
	store.ModifyGame(ctx, ready.ID, func(d *gameDoc) error {
		d.Status = statusReady
		d.Session = newSessionDoc(sess)
		return nil
	})

	n, err := store.ResetLoading(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n != 1 {
		t.Errorf("reset %d games, want 1", n)
	}

	got, _ := store.GetGame(ctx, stuck.ID)
	if got.Status != statusIdle || got.LastError == "" || !got.Started {
		t.Errorf("stuck game = %+v, want idle with last error and started kept", got)
	}
	got, _ = store.GetGame(ctx, ready.ID)
	if got.Status != statusReady || got.Session == nil {
		t.Errorf("ready game = %+v, want untouched", got)
	}
}
