package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	labelStart   = "Start Game"
	labelRestart = "Restart Game"
)

type CellInfo struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Text    string `json:"text"`
	Showing string `json:"showing"`
}

type BoardInfo struct {
	Headers []string     `json:"headers"`
	Rows    [][]CellInfo `json:"rows"`
}

type GameResponse struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	StartLabel string     `json:"startLabel"`
	LastError  string     `json:"lastError,omitempty"`
	Board      *BoardInfo `json:"board"`
}

func gameResponse(logger *slog.Logger, g gameDoc) GameResponse {
	resp := GameResponse{
		ID:         g.ID,
		Status:     string(g.Status),
		StartLabel: labelStart,
		LastError:  g.LastError,
	}
	if g.Started {
		resp.StartLabel = labelRestart
	}
	if g.Status != statusReady || g.Session == nil {
		return resp
	}

	sess, err := g.Session.session()
	if err != nil {
		logger.Error("stored session is invalid", "game_id", g.ID, "error", err)
		return resp
	}

	b := sess.Board()
	info := &BoardInfo{Headers: b.Headers, Rows: make([][]CellInfo, len(b.Rows))}
	for i, row := range b.Rows {
		cells := make([]CellInfo, len(row))
		for j, c := range row {
			cells[j] = CellInfo{Row: c.Row, Col: c.Col, Text: c.Text, Showing: c.Showing.String()}
		}
		info.Rows[i] = cells
	}
	resp.Board = info
	return resp
}

func handleCreateGame(logger *slog.Logger, games *Games) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := games.Create(r.Context())
		if err != nil {
			logger.Error("creating game", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, gameResponse(logger, g))
	}
}

func handleGetGame(logger *slog.Logger, games *Games) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := games.Get(r.Context(), chi.URLParam(r, "gameID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			logger.Error("loading game", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, gameResponse(logger, g))
	}
}

func handleStartGame(logger *slog.Logger, games *Games) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := games.Start(r.Context(), chi.URLParam(r, "gameID"))
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "game not found")
			return
		case errors.Is(err, ErrSetupInProgress):
			writeError(w, http.StatusConflict, "game is already loading")
			return
		case errors.Is(err, ErrSetupFailed):
			writeError(w, http.StatusBadGateway, "could not load categories")
			return
		case err != nil:
			logger.Error("starting game", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, gameResponse(logger, g))
	}
}
