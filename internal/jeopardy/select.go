package jeopardy

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

var ErrPoolTooSmall = errors.New("category pool too small")

// SelectIndices draws count distinct indices from [0, n) uniformly at
// random without replacement, using a partial Fisher-Yates shuffle.
// The result depends only on the draws taken from r.
func SelectIndices(r *rand.Rand, n, count int) ([]int, error) {
	if count < 0 || n < 0 {
		return nil, fmt.Errorf("invalid selection: n=%d count=%d", n, count)
	}
	if count > n {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrPoolTooSmall, count, n)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + r.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:count:count], nil
}

// FilterPool keeps the candidates that can supply at least minClues clues.
func FilterPool(pool []Candidate, minClues int) []Candidate {
	out := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if c.CluesCount >= minClues {
			out = append(out, c)
		}
	}
	return out
}

// Source is the upstream the selector pulls categories from.
type Source interface {
	Categories(ctx context.Context, count int) ([]Candidate, error)
	Category(ctx context.Context, id int) (CategoryData, error)
}

// Selector picks random categories from a Source and builds sessions.
type Selector struct {
	Source           Source
	NumCategories    int
	CluesPerCategory int
	PoolSize         int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector(src Source, rng *rand.Rand, numCategories, cluesPerCategory, poolSize int) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{
		Source:           src,
		NumCategories:    numCategories,
		CluesPerCategory: cluesPerCategory,
		PoolSize:         poolSize,
		rng:              rng,
	}
}

func (s *Selector) pick(pool []Candidate) ([]Candidate, error) {
	s.mu.Lock()
	idx, err := SelectIndices(s.rng, len(pool), s.NumCategories)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	picked := make([]Candidate, len(idx))
	for i, j := range idx {
		picked[i] = pool[j]
	}
	return picked, nil
}

// NewSession fetches the category list, picks NumCategories eligible
// categories and fetches each one in turn. Any failure abandons the
// attempt; no partial session is ever returned.
func (s *Selector) NewSession(ctx context.Context) (*Session, error) {
	all, err := s.Source.Categories(ctx, s.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	picked, err := s.pick(FilterPool(all, s.CluesPerCategory))
	if err != nil {
		return nil, err
	}

	cats := make([]Category, 0, len(picked))
	for _, c := range picked {
		data, err := s.Source.Category(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching category %d: %w", c.ID, err)
		}
		if data.ID == 0 {
			data.ID = c.ID
		}
		if data.Title == "" {
			data.Title = c.Title
		}
		cat, err := NewCategory(data, s.CluesPerCategory)
		if err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}

	return NewSession(cats, s.NumCategories, s.CluesPerCategory)
}
