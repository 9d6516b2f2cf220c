package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers portfolio lifecycle and cash routes. Patterns are
// registered flat because the trading and analysis modules add their own
// routes under the same /portfolios prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/portfolios", h.HandleCreatePortfolio)
	r.Get("/portfolios/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetPortfolio(w, r, chi.URLParam(r, "id"))
	})
	r.Post("/portfolios/{id}/deposits", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDeposit(w, r, chi.URLParam(r, "id"))
	})
	r.Post("/portfolios/{id}/withdrawals", func(w http.ResponseWriter, r *http.Request) {
		h.HandleWithdraw(w, r, chi.URLParam(r, "id"))
	})
}
