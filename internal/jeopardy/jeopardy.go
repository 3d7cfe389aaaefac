// Package jeopardy defines the board domain: categories, clues, the
// per-clue reveal state machine and category selection.
// It has no external dependencies.
package jeopardy

import (
	"errors"
	"fmt"
)

// Placeholder is shown in a cell whose clue is still hidden.
const Placeholder = "?"

var (
	ErrOutOfBounds    = errors.New("coordinate out of bounds")
	ErrShortCategory  = errors.New("category has too few clues")
	ErrInvalidSession = errors.New("invalid session")
)

type RevealState int

const (
	Hidden RevealState = iota
	Question
	Answer
)

func (s RevealState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Question:
		return "question"
	case Answer:
		return "answer"
	}
	return fmt.Sprintf("RevealState(%d)", int(s))
}

func (s RevealState) MarshalText() ([]byte, error) {
	switch s {
	case Hidden, Question, Answer:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown reveal state %d", int(s))
}

func (s *RevealState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "hidden", "":
		*s = Hidden
	case "question":
		*s = Question
	case "answer":
		*s = Answer
	default:
		return fmt.Errorf("unknown reveal state %q", b)
	}
	return nil
}

type Clue struct {
	Question string
	Answer   string
	Showing  RevealState
}

// Advance moves the clue one step forward. Answer is terminal: advancing
// it reports false and leaves the clue untouched.
func (c *Clue) Advance() bool {
	switch c.Showing {
	case Hidden:
		c.Showing = Question
		return true
	case Question:
		c.Showing = Answer
		return true
	}
	return false
}

// Display returns the text a cell bound to this clue shows.
func (c Clue) Display() string {
	switch c.Showing {
	case Question:
		return c.Question
	case Answer:
		return c.Answer
	}
	return Placeholder
}

type Category struct {
	ID    int
	Title string
	Clues []Clue
}

// Coord addresses one cell: Row is the clue index inside a category and
// Col is the category index.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Candidate is one entry of the upstream category list.
type Candidate struct {
	ID         int
	Title      string
	CluesCount int
}

type ClueText struct {
	Question string
	Answer   string
}

// CategoryData is a category as fetched from the upstream, before it is
// trimmed and bound to a session.
type CategoryData struct {
	ID    int
	Title string
	Clues []ClueText
}

// NewCategory keeps the first cluesPerCategory clues of data, all hidden.
func NewCategory(data CategoryData, cluesPerCategory int) (Category, error) {
	if len(data.Clues) < cluesPerCategory {
		return Category{}, fmt.Errorf("%w: %q has %d, need %d",
			ErrShortCategory, data.Title, len(data.Clues), cluesPerCategory)
	}

	clues := make([]Clue, cluesPerCategory)
	for i, ct := range data.Clues[:cluesPerCategory] {
		clues[i] = Clue{Question: ct.Question, Answer: ct.Answer, Showing: Hidden}
	}
	return Category{ID: data.ID, Title: data.Title, Clues: clues}, nil
}
