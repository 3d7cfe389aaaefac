package jeopardy

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestSelectIndices(t *testing.T) {
	r := seeded(1)

	for n := 0; n <= 12; n++ {
		for count := 0; count <= n; count++ {
			idx, err := SelectIndices(r, n, count)
			if err != nil {
				t.Fatalf("n=%d count=%d: %v", n, count, err)
			}
			if len(idx) != count {
				t.Fatalf("n=%d count=%d: got %d indices", n, count, len(idx))
			}
			seen := make(map[int]bool, count)
			for _, i := range idx {
				if i < 0 || i >= n {
					t.Errorf("n=%d count=%d: index %d out of range", n, count, i)
				}
				if seen[i] {
					t.Errorf("n=%d count=%d: duplicate index %d", n, count, i)
				}
				seen[i] = true
			}
		}
	}
}

func TestSelectIndicesReproducible(t *testing.T) {
	a, err := SelectIndices(seeded(42), 100, 5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := SelectIndices(seeded(42), 100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different selections (-first +second):\n%s", diff)
	}
}

func TestSelectIndicesPoolTooSmall(t *testing.T) {
	if _, err := SelectIndices(seeded(1), 4, 5); !errors.Is(err, ErrPoolTooSmall) {
		t.Errorf("err = %v, want ErrPoolTooSmall", err)
	}
	if _, err := SelectIndices(seeded(1), 4, -1); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestSelectIndicesCoversPool(t *testing.T) {
	r := seeded(7)
	hits := make([]int, 10)
	for i := 0; i < 2000; i++ {
		idx, _ := SelectIndices(r, 10, 5)
		for _, j := range idx {
			hits[j]++
		}
	}
	for i, h := range hits {
		if h == 0 {
			t.Errorf("index %d never selected", i)
		}
	}
}

func TestFilterPool(t *testing.T) {
	pool := []Candidate{
		{ID: 1, CluesCount: 5},
		{ID: 2, CluesCount: 4},
		{ID: 3, CluesCount: 12},
		{ID: 4, CluesCount: 0},
	}
	got := FilterPool(pool, 5)
	want := []Candidate{{ID: 1, CluesCount: 5}, {ID: 3, CluesCount: 12}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filtered pool (-want +got):\n%s", diff)
	}
}

type fakeSource struct {
	pool    []Candidate
	cats    map[int]CategoryData
	listErr error
	failID  int
	fetched []int
}

func newFakeSource(n, clues int) *fakeSource {
	f := &fakeSource{cats: make(map[int]CategoryData)}
	for i := 1; i <= n; i++ {
		data := CategoryData{ID: i, Title: fmt.Sprintf("Category %d", i)}
		for j := 0; j < clues; j++ {
			data.Clues = append(data.Clues, ClueText{
				Question: fmt.Sprintf("q%d-%d", i, j),
				Answer:   fmt.Sprintf("a%d-%d", i, j),
			})
		}
		f.cats[i] = data
		f.pool = append(f.pool, Candidate{ID: i, Title: data.Title, CluesCount: clues})
	}
	return f
}

func (f *fakeSource) Categories(_ context.Context, count int) ([]Candidate, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if count < len(f.pool) {
		return f.pool[:count], nil
	}
	return f.pool, nil
}

func (f *fakeSource) Category(_ context.Context, id int) (CategoryData, error) {
	f.fetched = append(f.fetched, id)
	if id == f.failID {
		return CategoryData{}, errors.New("connection reset")
	}
	return f.cats[id], nil
}

func TestSelectorNewSession(t *testing.T) {
	src := newFakeSource(10, 7)
	sel := NewSelector(src, seeded(3), 5, 5, 100)

	s, err := sel.NewSession(context.Background())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if len(s.Categories) != 5 {
		t.Fatalf("categories = %d, want 5", len(s.Categories))
	}
	ids := make(map[int]bool)
	for i, c := range s.Categories {
		if ids[c.ID] {
			t.Errorf("category %d selected twice", c.ID)
		}
		ids[c.ID] = true
		if c.ID != src.fetched[i] {
			t.Errorf("category %d is id %d, fetched %d", i, c.ID, src.fetched[i])
		}
		if len(c.Clues) != 5 {
			t.Errorf("category %d has %d clues, want 5", c.ID, len(c.Clues))
		}
		for _, clue := range c.Clues {
			if clue.Showing != Hidden {
				t.Errorf("category %d: clue showing %v, want hidden", c.ID, clue.Showing)
			}
		}
	}
}

func TestSelectorSkipsThinCategories(t *testing.T) {
	src := newFakeSource(8, 5)
	for i := 1; i <= 3; i++ {
		src.pool[i-1].CluesCount = 2
	}
	sel := NewSelector(src, seeded(9), 5, 5, 100)

	s, err := sel.NewSession(context.Background())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	for _, c := range s.Categories {
		if c.ID <= 3 {
			t.Errorf("selected thin category %d", c.ID)
		}
	}
}

func TestSelectorErrors(t *testing.T) {
	t.Run("list fails", func(t *testing.T) {
		src := newFakeSource(10, 5)
		src.listErr = errors.New("dns failure")
		sel := NewSelector(src, seeded(1), 5, 5, 100)

		s, err := sel.NewSession(context.Background())
		if err == nil || s != nil {
			t.Fatalf("got session %v, err %v; want nil session and error", s, err)
		}
		if len(src.fetched) != 0 {
			t.Errorf("fetched %v after list failure", src.fetched)
		}
	})

	t.Run("category fails", func(t *testing.T) {
		src := newFakeSource(5, 5)
		src.failID = 3
		sel := NewSelector(src, seeded(1), 5, 5, 100)

		s, err := sel.NewSession(context.Background())
		if err == nil || s != nil {
			t.Fatalf("got session %v, err %v; want nil session and error", s, err)
		}
		if last := src.fetched[len(src.fetched)-1]; last != 3 {
			t.Errorf("kept fetching after failure: %v", src.fetched)
		}
	})

	t.Run("pool too small", func(t *testing.T) {
		src := newFakeSource(4, 5)
		sel := NewSelector(src, seeded(1), 5, 5, 100)

		if _, err := sel.NewSession(context.Background()); !errors.Is(err, ErrPoolTooSmall) {
			t.Errorf("err = %v, want ErrPoolTooSmall", err)
		}
	})
}
