package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	timeLayout = "2006-01-02T15:04:05.000Z"
	idBytes    = 8
)

// DocStore implements Store with one JSON document per game.
type DocStore struct {
	db *sql.DB
}

func NewDocStore(ctx context.Context, db *sql.DB) (*DocStore, error) {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			data       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS games_updated_at ON games (updated_at)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("creating table: %w", err)
		}
	}

	return &DocStore{db: db}, nil
}

func newID() string {
	b := make([]byte, idBytes)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func nowUTC() string {
	return time.Now().UTC().Format(timeLayout)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putGame(ctx context.Context, db execer, g gameDoc) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO games (id, status, updated_at, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at, data = excluded.data`,
		g.ID, string(g.Status), g.UpdatedAt, string(data),
	)
	return err
}

func (s *DocStore) CreateGame(ctx context.Context) (gameDoc, error) {
	now := nowUTC()
	g := gameDoc{
		ID:        newID(),
		Status:    statusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := putGame(ctx, s.db, g); err != nil {
		return gameDoc{}, fmt.Errorf("inserting game: %w", err)
	}
	return g, nil
}

func (s *DocStore) GetGame(ctx context.Context, id string) (gameDoc, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM games WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return gameDoc{}, ErrNotFound
	}
	if err != nil {
		return gameDoc{}, err
	}

	var g gameDoc
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return gameDoc{}, fmt.Errorf("decoding game %s: %w", id, err)
	}
	return g, nil
}

func (s *DocStore) ModifyGame(ctx context.Context, id string, fn func(*gameDoc) error) (gameDoc, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return gameDoc{}, err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM games WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return gameDoc{}, ErrNotFound
	}
	if err != nil {
		return gameDoc{}, err
	}

	var g gameDoc
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return gameDoc{}, fmt.Errorf("decoding game %s: %w", id, err)
	}

	if err := fn(&g); err != nil {
		return gameDoc{}, err
	}

	g.UpdatedAt = nowUTC()
	if err := putGame(ctx, tx, g); err != nil {
		return gameDoc{}, err
	}

	if err := tx.Commit(); err != nil {
		return gameDoc{}, err
	}
	return g, nil
}

// DeleteGamesBefore removes games not touched since cutoff. Games that are
// loading are left alone.
func (s *DocStore) DeleteGamesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM games WHERE updated_at < ? AND status != ?`,
		cutoff.UTC().Format(timeLayout), string(statusLoading),
	)
	if err != nil {
		return 0, err
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// ResetLoading returns games stuck in loading (left by a previous process)
// to idle.
func (s *DocStore) ResetLoading(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM games WHERE status = ?`, string(statusLoading),
	)
	if err != nil {
		return 0, err
	}
	// Collect ids before modifying; the pool holds a single connection.
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		_, err := s.ModifyGame(ctx, id, func(g *gameDoc) error {
			g.Status = statusIdle
			g.LoadingSince = ""
			g.Session = nil
			g.LastError = "setup interrupted"
			return nil
		})
		if err != nil && !errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("resetting game %s: %w", id, err)
		}
	}
	return len(ids), nil
}

func (s *DocStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
