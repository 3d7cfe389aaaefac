package jeopardy

import "fmt"

// Session is one complete game: a fixed number of categories, each with a
// fixed number of clues. Only the clues' Showing fields change after
// construction.
type Session struct {
	Categories       []Category
	NumCategories    int
	CluesPerCategory int
}

// NewSession validates that cats forms a complete board.
func NewSession(cats []Category, numCategories, cluesPerCategory int) (*Session, error) {
	if numCategories <= 0 || cluesPerCategory <= 0 {
		return nil, fmt.Errorf("%w: board must be at least 1x1, got %dx%d",
			ErrInvalidSession, cluesPerCategory, numCategories)
	}
	if len(cats) != numCategories {
		return nil, fmt.Errorf("%w: got %d categories, want %d",
			ErrInvalidSession, len(cats), numCategories)
	}
	for _, c := range cats {
		if len(c.Clues) != cluesPerCategory {
			return nil, fmt.Errorf("%w: category %q has %d clues, want %d",
				ErrInvalidSession, c.Title, len(c.Clues), cluesPerCategory)
		}
	}

	return &Session{
		Categories:       cats,
		NumCategories:    numCategories,
		CluesPerCategory: cluesPerCategory,
	}, nil
}

func (s *Session) inBounds(c Coord) bool {
	return c.Col >= 0 && c.Col < len(s.Categories) &&
		c.Row >= 0 && c.Row < len(s.Categories[c.Col].Clues)
}

// Clue returns a copy of the clue bound to c.
func (s *Session) Clue(c Coord) (Clue, error) {
	if !s.inBounds(c) {
		return Clue{}, fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	return s.Categories[c.Col].Clues[c.Row], nil
}

// Activate advances the clue at c one step and returns its new value.
// changed is false when the clue was already showing its answer.
func (s *Session) Activate(c Coord) (clue Clue, changed bool, err error) {
	if !s.inBounds(c) {
		return Clue{}, false, fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	p := &s.Categories[c.Col].Clues[c.Row]
	changed = p.Advance()
	return *p, changed, nil
}

type Cell struct {
	Coord
	Text    string
	Showing RevealState
}

// Board is the render model of a session.
type Board struct {
	Headers []string
	Rows    [][]Cell
}

// Board lays the session out as CluesPerCategory rows by NumCategories
// columns, with one header per category in session order.
func (s *Session) Board() Board {
	b := Board{
		Headers: make([]string, len(s.Categories)),
		Rows:    make([][]Cell, s.CluesPerCategory),
	}
	for col, cat := range s.Categories {
		b.Headers[col] = cat.Title
	}
	for row := range b.Rows {
		cells := make([]Cell, len(s.Categories))
		for col, cat := range s.Categories {
			clue := cat.Clues[row]
			cells[col] = Cell{
				Coord:   Coord{Row: row, Col: col},
				Text:    clue.Display(),
				Showing: clue.Showing,
			}
		}
		b.Rows[row] = cells
	}
	return b
}
