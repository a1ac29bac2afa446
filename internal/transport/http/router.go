package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quiz-runner/internal/app"
)

// NewRouter mounts the read endpoints and the websocket command channel.
func NewRouter(service *app.QuizService, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	ws := NewWSHandler(service, allowedOrigins)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/session", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildView(service.Questions(), service.Duration(), service.Snapshot()))
	})
	r.Get("/session/result", func(w http.ResponseWriter, r *http.Request) {
		if service.Snapshot().Phase != app.PhaseCompleted {
			writeJSON(w, http.StatusConflict, errorPayload{Message: "session not completed"})
			return
		}
		writeJSON(w, http.StatusOK, buildResult(service.Result()))
	})
	r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		entries, err := service.Leaderboard(r.Context())
		if err != nil {
			log.Printf("list leaderboard: %v", err)
			writeJSON(w, http.StatusBadGateway, errorPayload{Message: "leaderboard unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})
	r.Get("/ws", ws.ServeWS)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
