package server

import (
	"context"
	"errors"
	"time"

	"github.com/playperu/jeopardy/internal/jeopardy"
)

var ErrNotFound = errors.New("not found")

type gameStatus string

const (
	statusIdle    gameStatus = "idle"
	statusLoading gameStatus = "loading"
	statusReady   gameStatus = "ready"
)

// gameDoc is one game as stored. Session is only set while the game is
// ready; it is replaced wholesale on every successful start. LoadingSince
// is only set while the game is loading.
type gameDoc struct {
	ID           string      `json:"id"`
	Status       gameStatus  `json:"status"`
	LoadingSince string      `json:"loadingSince,omitempty"`
	Started      bool        `json:"started"`
	LastError    string      `json:"lastError,omitempty"`
	Session      *sessionDoc `json:"session,omitempty"`
	CreatedAt    string      `json:"createdAt"`
	UpdatedAt    string      `json:"updatedAt"`
}

type sessionDoc struct {
	NumCategories    int           `json:"numCategories"`
	CluesPerCategory int           `json:"cluesPerCategory"`
	Categories       []categoryDoc `json:"categories"`
}

type categoryDoc struct {
	ID    int       `json:"id"`
	Title string    `json:"title"`
	Clues []clueDoc `json:"clues"`
}

type clueDoc struct {
	Question string               `json:"question"`
	Answer   string               `json:"answer"`
	Showing  jeopardy.RevealState `json:"showing"`
}

func newSessionDoc(s *jeopardy.Session) *sessionDoc {
	d := &sessionDoc{
		NumCategories:    s.NumCategories,
		CluesPerCategory: s.CluesPerCategory,
		Categories:       make([]categoryDoc, len(s.Categories)),
	}
	for i, c := range s.Categories {
		cd := categoryDoc{ID: c.ID, Title: c.Title, Clues: make([]clueDoc, len(c.Clues))}
		for j, cl := range c.Clues {
			cd.Clues[j] = clueDoc{Question: cl.Question, Answer: cl.Answer, Showing: cl.Showing}
		}
		d.Categories[i] = cd
	}
	return d
}

func (d *sessionDoc) session() (*jeopardy.Session, error) {
	cats := make([]jeopardy.Category, len(d.Categories))
	for i, cd := range d.Categories {
		c := jeopardy.Category{ID: cd.ID, Title: cd.Title, Clues: make([]jeopardy.Clue, len(cd.Clues))}
		for j, cl := range cd.Clues {
			c.Clues[j] = jeopardy.Clue{Question: cl.Question, Answer: cl.Answer, Showing: cl.Showing}
		}
		cats[i] = c
	}
	return jeopardy.NewSession(cats, d.NumCategories, d.CluesPerCategory)
}

type Store interface {
	CreateGame(ctx context.Context) (gameDoc, error)
	GetGame(ctx context.Context, id string) (gameDoc, error)
	// ModifyGame loads a game, applies fn and saves the result atomically.
	// If fn returns an error nothing is written.
	ModifyGame(ctx context.Context, id string, fn func(*gameDoc) error) (gameDoc, error)
	DeleteGamesBefore(ctx context.Context, cutoff time.Time) (int, error)
	ResetLoading(ctx context.Context) (int, error)
}
