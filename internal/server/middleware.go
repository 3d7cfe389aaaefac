package server

import (
	"encoding/hex"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// gameIDMiddleware rejects game IDs that newID could never have produced
// before they reach the store.
func gameIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validGameID(chi.URLParam(r, "gameID")) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validGameID(id string) bool {
	if len(id) != 2*idBytes {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
