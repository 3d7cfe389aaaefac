package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/jeopardy/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, games *Games, broker *Broker, healthz *health.Handler) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Jeopardy API", "/openapi.json", "/docs"))
	r.Mount("/healthz", healthz.Routes())

	r.Route("/api/games", func(r chi.Router) {
		r.Post("/", handleCreateGame(logger, games))

		r.Route("/{gameID}", func(r chi.Router) {
			r.Use(gameIDMiddleware)
			r.Get("/", handleGetGame(logger, games))
			r.Post("/start", handleStartGame(logger, games))
			r.Post("/cells/{row}/{col}", handleActivateCell(logger, games))
			r.Get("/ws", handleGameWS(logger, games, broker))
		})
	})

	r.NotFound(handleSPA())
}
