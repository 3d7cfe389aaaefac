package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/jeopardy/internal/jeopardy"
)

type ActivateResponse struct {
	CellInfo
	Changed bool `json:"changed"`
}

func coordFromRequest(r *http.Request) (jeopardy.Coord, error) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		return jeopardy.Coord{}, err
	}
	col, err := strconv.Atoi(chi.URLParam(r, "col"))
	if err != nil {
		return jeopardy.Coord{}, err
	}
	return jeopardy.Coord{Row: row, Col: col}, nil
}

func handleActivateCell(logger *slog.Logger, games *Games) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := coordFromRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "row and col must be integers")
			return
		}

		clue, changed, err := games.Activate(r.Context(), chi.URLParam(r, "gameID"), c)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "game not found")
			return
		case errors.Is(err, ErrNotReady):
			writeError(w, http.StatusConflict, "game is not ready")
			return
		case errors.Is(err, jeopardy.ErrOutOfBounds):
			writeError(w, http.StatusBadRequest, "cell out of bounds")
			return
		case err != nil:
			logger.Error("activating cell", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, ActivateResponse{
			CellInfo: CellInfo{
				Row:     c.Row,
				Col:     c.Col,
				Text:    clue.Display(),
				Showing: clue.Showing.String(),
			},
			Changed: changed,
		})
	}
}
