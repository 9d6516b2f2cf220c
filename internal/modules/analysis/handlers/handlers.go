// Package handlers provides HTTP handlers for performance reports and
// transaction history.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/domain"
	"github.com/alfredorueda/portfolio-service/internal/modules/analysis"
	"github.com/alfredorueda/portfolio-service/internal/modules/ledger"
)

// Handler handles analysis HTTP requests.
type Handler struct {
	service *analysis.Service
	prices  domain.PriceProvider
	log     zerolog.Logger
}

// NewHandler creates a new analysis handler.
func NewHandler(service *analysis.Service, prices domain.PriceProvider, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		prices:  prices,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleGetTransactions handles GET /api/portfolios/{id}/transactions
//
// Query parameters, all optional: ticker, type, from, to (RFC 3339 or
// YYYY-MM-DD), minAmount, maxAmount.
func (h *Handler) HandleGetTransactions(w http.ResponseWriter, r *http.Request, portfolioID string) {
	filter, err := parseFilter(r, portfolioID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
		return
	}

	txs, err := h.service.Transactions(filter)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	views := make([]map[string]interface{}, 0, len(txs))
	for _, tx := range txs {
		views = append(views, transactionView(tx))
	}
	h.writeJSON(w, http.StatusOK, views)
}

// HandleGetPerformance handles GET /api/portfolios/{id}/performance
//
// An optional limit query parameter caps the number of summaries returned.
func (h *Handler) HandleGetPerformance(w http.ResponseWriter, r *http.Request, portfolioID string) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer", "INVALID_REQUEST")
			return
		}
		limit = parsed
	}

	summaries, err := h.service.Performance(portfolioID, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

// HandleGetPrice handles GET /api/prices/{ticker}
func (h *Handler) HandleGetPrice(w http.ResponseWriter, r *http.Request, ticker string) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required", "INVALID_REQUEST")
		return
	}

	price, err := h.prices.CurrentPrice(ticker)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to fetch price")
		h.writeError(w, http.StatusBadGateway, "price source unavailable", "PRICE_UNAVAILABLE")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"price":  price.String(),
		"asOf":   time.Now().UTC().Format(time.RFC3339),
	})
}

func parseFilter(r *http.Request, portfolioID string) (ledger.Filter, error) {
	q := r.URL.Query()
	filter := ledger.Filter{
		PortfolioID: portfolioID,
		Ticker:      strings.ToUpper(strings.TrimSpace(q.Get("ticker"))),
	}

	if typeStr := q.Get("type"); typeStr != "" {
		typeStr = strings.ToUpper(typeStr)
		if !domain.ValidTransactionType(typeStr) {
			return ledger.Filter{}, errors.New("unknown transaction type: " + typeStr)
		}
		filter.Type = domain.TransactionType(typeStr)
	}

	if fromStr := q.Get("from"); fromStr != "" {
		from, err := parseTime(fromStr)
		if err != nil {
			return ledger.Filter{}, errors.New("invalid from date: " + fromStr)
		}
		filter.From = &from
	}
	if toStr := q.Get("to"); toStr != "" {
		to, err := parseTime(toStr)
		if err != nil {
			return ledger.Filter{}, errors.New("invalid to date: " + toStr)
		}
		filter.To = &to
	}

	if minStr := q.Get("minAmount"); minStr != "" {
		min, err := decimal.NewFromString(minStr)
		if err != nil {
			return ledger.Filter{}, errors.New("invalid minAmount: " + minStr)
		}
		filter.MinAmount = &min
	}
	if maxStr := q.Get("maxAmount"); maxStr != "" {
		max, err := decimal.NewFromString(maxStr)
		if err != nil {
			return ledger.Filter{}, errors.New("invalid maxAmount: " + maxStr)
		}
		filter.MaxAmount = &max
	}

	return filter, nil
}

// parseTime accepts RFC 3339 timestamps and bare dates.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func transactionView(tx domain.Transaction) map[string]interface{} {
	view := map[string]interface{}{
		"id":          tx.ID,
		"portfolioId": tx.PortfolioID,
		"type":        string(tx.Type),
		"totalAmount": tx.TotalAmount.String(),
		"createdAt":   tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.Ticker != "" {
		view["ticker"] = tx.Ticker
		view["quantity"] = tx.Quantity
		view["unitPrice"] = tx.UnitPrice.String()
	}
	if tx.Type == domain.TransactionSale {
		view["profit"] = tx.Profit.String()
	}
	return view
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
		h.log.Error().Err(err).Msg("Analysis request failed")
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
