// Package trivia is a client for jservice-style trivia APIs.
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/playperu/jeopardy/internal/jeopardy"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError reports a non-2xx response from the upstream.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s: %d", e.Path, ErrUnexpectedStatus, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

type categoryItem struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	CluesCount int    `json:"clues_count"`
}

type clueItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type categoryDetail struct {
	ID    int        `json:"id"`
	Title string     `json:"title"`
	Clues []clueItem `json:"clues"`
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// Rate is the sustained request rate; zero disables pacing.
	Rate  float64
	Burst int
}

// Client implements jeopardy.Source over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ jeopardy.Source = (*Client)(nil)

func New(logger *slog.Logger, opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		base:    base,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("trivia request",
		"path", path,
		"query", u.RawQuery,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Path: path, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// Categories lists up to count categories.
func (c *Client) Categories(ctx context.Context, count int) ([]jeopardy.Candidate, error) {
	var items []categoryItem
	q := url.Values{"count": {strconv.Itoa(count)}}
	if err := c.get(ctx, "/categories", q, &items); err != nil {
		return nil, err
	}

	out := make([]jeopardy.Candidate, 0, len(items))
	for _, it := range items {
		out = append(out, jeopardy.Candidate{
			ID:         it.ID,
			Title:      CleanText(it.Title),
			CluesCount: it.CluesCount,
		})
	}
	return out, nil
}

// Category fetches one category with all of its clues. Clues with an
// empty question or answer are dropped.
func (c *Client) Category(ctx context.Context, id int) (jeopardy.CategoryData, error) {
	var d categoryDetail
	q := url.Values{"id": {strconv.Itoa(id)}}
	if err := c.get(ctx, "/category", q, &d); err != nil {
		return jeopardy.CategoryData{}, err
	}

	data := jeopardy.CategoryData{
		ID:    d.ID,
		Title: CleanText(d.Title),
		Clues: make([]jeopardy.ClueText, 0, len(d.Clues)),
	}
	for _, cl := range d.Clues {
		q, a := CleanText(cl.Question), CleanText(cl.Answer)
		if q == "" || a == "" {
			continue
		}
		data.Clues = append(data.Clues, jeopardy.ClueText{Question: q, Answer: a})
	}
	return data, nil
}

// Ping checks that the category list endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	var items []categoryItem
	return c.get(ctx, "/categories", url.Values{"count": {"1"}}, &items)
}
