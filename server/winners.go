package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tgk/tipstream/internal/store"
)

const defaultRecentWinners = 24

// WinnersRouter serves the per-window winners recorded by the badger sink.
func WinnersRouter(db *store.DB) chi.Router {
	router := chi.NewRouter()

	router.Get("/", recentWinners(db))
	router.Get("/{window_end}", winnerByWindow(db))

	return router
}

func recentWinners(db *store.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			SendResponseWithHeader(w, false, nil, "winners store not configured", http.StatusNotFound, nil)
			return
		}
		n := defaultRecentWinners
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				n = parsed
			}
		}
		winners, err := db.Recent(n)
		if err != nil {
			SendResponseWithHeader(w, false, nil, err.Error(), http.StatusInternalServerError, nil)
			return
		}
		SendResponse(w, true, winners, "")
	}
}

func winnerByWindow(db *store.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			SendResponseWithHeader(w, false, nil, "winners store not configured", http.StatusNotFound, nil)
			return
		}
		windowEnd, err := strconv.ParseInt(chi.URLParam(r, "window_end"), 10, 64)
		if err != nil {
			SendResponseWithHeader(w, false, nil, "window_end must be an integer", http.StatusBadRequest, nil)
			return
		}
		winner, ok, err := db.Get(windowEnd)
		if err != nil {
			SendResponseWithHeader(w, false, nil, err.Error(), http.StatusInternalServerError, nil)
			return
		}
		if !ok {
			SendResponseWithHeader(w, false, nil, "no winner for that window", http.StatusNotFound, nil)
			return
		}
		SendResponse(w, true, winner, "")
	}
}
