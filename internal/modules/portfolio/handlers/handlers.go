// Package handlers provides HTTP handlers for portfolio management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/domain"
	"github.com/alfredorueda/portfolio-service/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests.
type Handler struct {
	service *portfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler.
func NewHandler(service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

type createPortfolioRequest struct {
	OwnerName string `json:"ownerName"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

// HandleCreatePortfolio handles POST /api/portfolios
func (h *Handler) HandleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
		return
	}
	if req.OwnerName == "" {
		writeError(w, h.log, http.StatusBadRequest, "ownerName is required", "INVALID_REQUEST")
		return
	}

	p, err := h.service.Create(req.OwnerName)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusCreated, PortfolioView(p))
}

// HandleGetPortfolio handles GET /api/portfolios/{id}
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.service.Get(id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, PortfolioView(p))
}

// HandleDeposit handles POST /api/portfolios/{id}/deposits
func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request, id string) {
	amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}
	if err := h.service.Deposit(id, amount); err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	h.respondWithPortfolio(w, id)
}

// HandleWithdraw handles POST /api/portfolios/{id}/withdrawals
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request, id string) {
	amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}
	if err := h.service.Withdraw(id, amount); err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	h.respondWithPortfolio(w, id)
}

func (h *Handler) decodeAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, "amount must be a decimal number", "INVALID_REQUEST")
		return decimal.Zero, false
	}
	return amount, true
}

func (h *Handler) respondWithPortfolio(w http.ResponseWriter, id string) {
	p, err := h.service.Get(id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, PortfolioView(p))
}

// PortfolioView converts the aggregate into its JSON response shape.
func PortfolioView(p *domain.Portfolio) map[string]interface{} {
	holdings := make([]map[string]interface{}, 0)
	for _, hld := range p.Holdings() {
		lots := make([]map[string]interface{}, 0)
		for _, lot := range hld.Lots() {
			lots = append(lots, map[string]interface{}{
				"remaining":   lot.Remaining(),
				"unitPrice":   lot.UnitPrice().String(),
				"purchasedAt": lot.PurchasedAt().Format(time.RFC3339),
			})
		}
		holdings = append(holdings, map[string]interface{}{
			"ticker":      hld.Ticker(),
			"totalShares": hld.TotalShares(),
			"lots":        lots,
		})
	}

	return map[string]interface{}{
		"id":        p.ID(),
		"ownerName": p.OwnerName(),
		"balance":   p.Balance().String(),
		"createdAt": p.CreatedAt().Format(time.RFC3339),
		"holdings":  holdings,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error body with a machine-readable code.
func writeError(w http.ResponseWriter, log zerolog.Logger, status int, message, code string) {
	writeJSON(w, log, status, map[string]interface{}{
		"error": message,
		"code":  code,
	})
}

// writeDomainError maps a domain error to its HTTP status. Validation
// failures are client errors, missing resources are 404s, and an
// insufficient balance or position is a 422 because the request itself was
// well formed.
func writeDomainError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		log.Error().Err(err).Msg("Request failed")
		writeError(w, log, http.StatusInternalServerError, "internal server error", "INTERNAL")
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
	writeError(w, log, status, derr.Message, string(derr.Code))
}
