package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the REST routes behind JWT auth and the websocket hub
// endpoint, which authenticates via its token query parameter instead.
func NewRouter(h *Handler, secret []byte, ws http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(secret))

		r.Get("/chat/history/{id}", h.GetHistory)
		r.Post("/chat/conversations/initiate", h.InitiateConversation)
		r.Get("/chat/conversations/list", h.ListConversations)
		r.Delete("/chat/conversations/{id}", h.DeleteConversation)
		r.Post("/chat/conversations/{id}/read", h.MarkRead)

		r.Post("/anki/active-deck-persistence", h.ActiveDeck)
	})

	r.Get("/ws/hub", ws)

	return r
}
