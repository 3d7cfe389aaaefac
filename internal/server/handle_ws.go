package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/playperu/jeopardy/internal/jeopardy"
)

// ClientMessage is what the board sends over its WebSocket.
type ClientMessage struct {
	Type string `json:"type"` // "activate"
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

func handleGameWS(logger *slog.Logger, games *Games, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		if _, err := games.Get(r.Context(), gameID); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "game not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		ch := broker.Subscribe(gameID)
		defer broker.Unsubscribe(gameID, ch)

		go func() {
			defer cancel()
			for {
				var msg ClientMessage
				if err := wsjson.Read(ctx, conn, &msg); err != nil {
					logger.Debug("websocket read ended", "error", err)
					return
				}
				if msg.Type != "activate" {
					continue
				}
				// Successful activations reach every subscriber through the broker.
				_, _, err := games.Activate(ctx, gameID, jeopardy.Coord{Row: msg.Row, Col: msg.Col})
				if err != nil {
					logger.Debug("websocket activation rejected", "game_id", gameID, "error", err)
					if err := wsjson.Write(ctx, conn, Event{Type: "error", Error: err.Error()}); err != nil {
						logger.Debug("websocket write failed", "error", err)
						return
					}
				}
			}
		}()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			case <-ping.C:
				if err := conn.Ping(ctx); err != nil {
					logger.Debug("websocket ping failed", "error", err)
					return
				}
			}
		}
	}
}
