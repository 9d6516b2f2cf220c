// Package handlers provides HTTP handlers for trade execution.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/alfredorueda/portfolio-service/internal/domain"
	portfoliohandlers "github.com/alfredorueda/portfolio-service/internal/modules/portfolio/handlers"
	"github.com/alfredorueda/portfolio-service/internal/modules/trading"
)

// Handler handles trading HTTP requests.
type Handler struct {
	service *trading.Service
	log     zerolog.Logger
}

// NewHandler creates a new trading handler.
func NewHandler(service *trading.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "trading").Logger(),
	}
}

type orderRequest struct {
	Ticker   string `json:"ticker"`
	Quantity int64  `json:"quantity"`
}

// HandleBuy handles POST /api/portfolios/{id}/purchases
func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request, portfolioID string) {
	req, ok := h.decodeOrder(w, r)
	if !ok {
		return
	}

	p, err := h.service.Buy(portfolioID, req.Ticker, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, portfoliohandlers.PortfolioView(p))
}

// HandleSell handles POST /api/portfolios/{id}/sales
func (h *Handler) HandleSell(w http.ResponseWriter, r *http.Request, portfolioID string) {
	req, ok := h.decodeOrder(w, r)
	if !ok {
		return
	}

	p, result, err := h.service.Sell(portfolioID, req.Ticker, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	response := map[string]interface{}{
		"portfolio": portfoliohandlers.PortfolioView(p),
		"sale": map[string]interface{}{
			"proceeds":  result.Proceeds.String(),
			"costBasis": result.CostBasis.String(),
			"profit":    result.Profit.String(),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) decodeOrder(w http.ResponseWriter, r *http.Request) (orderRequest, bool) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
		return orderRequest{}, false
	}
	if req.Ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required", "INVALID_REQUEST")
		return orderRequest{}, false
	}
	return req, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": message,
		"code":  code,
	})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		h.log.Error().Err(err).Msg("Trade request failed")
		h.writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL")
		return
	}

	status := http.StatusInternalServerError
	switch derr.Code {
	case domain.CodeInvalidAmount, domain.CodeInvalidQuantity:
		status = http.StatusBadRequest
	case domain.CodeInsufficientFunds:
		status = http.StatusUnprocessableEntity
	case domain.CodeHoldingNotFound, domain.CodePortfolioNotFound:
		status = http.StatusNotFound
	}
	h.writeError(w, status, derr.Message, string(derr.Code))
}
