package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers trade execution routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/portfolios/{id}/purchases", func(w http.ResponseWriter, r *http.Request) {
		h.HandleBuy(w, r, chi.URLParam(r, "id"))
	})
	r.Post("/portfolios/{id}/sales", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSell(w, r, chi.URLParam(r, "id"))
	})
}
