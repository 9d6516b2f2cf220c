package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers transaction history, performance and price routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolios/{id}/transactions", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetTransactions(w, r, chi.URLParam(r, "id"))
	})
	r.Get("/portfolios/{id}/performance", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetPerformance(w, r, chi.URLParam(r, "id"))
	})
	r.Get("/prices/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetPrice(w, r, chi.URLParam(r, "ticker"))
	})
}
