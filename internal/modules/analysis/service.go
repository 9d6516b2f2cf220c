// Package analysis derives per-ticker performance summaries and transaction
// history views from the audit ledger.
package analysis

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/domain"
	"github.com/alfredorueda/portfolio-service/internal/modules/ledger"
)

// PortfolioLoader resolves a portfolio aggregate by id.
type PortfolioLoader interface {
	Load(id string) (*domain.Portfolio, error)
}

// LedgerQuerier reads transactions from the audit ledger.
type LedgerQuerier interface {
	Query(f ledger.Filter) ([]domain.Transaction, error)
}

// InvestmentSummary aggregates every trade a portfolio ever made in one
// ticker. Realized figures come from the ledger alone; the unrealized gain
// additionally prices the still-open shares at the current market quote.
type InvestmentSummary struct {
	Ticker          string          `json:"ticker"`
	SharesPurchased int64           `json:"sharesPurchased"`
	SharesSold      int64           `json:"sharesSold"`
	SharesRemaining int64           `json:"sharesRemaining"`
	TotalInvested   decimal.Decimal `json:"totalInvested"`
	TotalProceeds   decimal.Decimal `json:"totalProceeds"`
	TotalProfit     decimal.Decimal `json:"totalProfit"`
	AverageBuyPrice decimal.Decimal `json:"averageBuyPrice"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	UnrealizedGain  decimal.Decimal `json:"unrealizedGain"`
}

// Service computes performance reports over the transaction ledger.
type Service struct {
	portfolios PortfolioLoader
	ledger     LedgerQuerier
	prices     domain.PriceProvider
	log        zerolog.Logger
}

// NewService creates a new analysis service.
func NewService(portfolios PortfolioLoader, ledger LedgerQuerier, prices domain.PriceProvider, log zerolog.Logger) *Service {
	return &Service{
		portfolios: portfolios,
		ledger:     ledger,
		prices:     prices,
		log:        log.With().Str("service", "analysis").Logger(),
	}
}

// Transactions returns the portfolio's ledger entries matching the filter,
// newest first. The portfolio must exist.
func (s *Service) Transactions(f ledger.Filter) ([]domain.Transaction, error) {
	if _, err := s.portfolios.Load(f.PortfolioID); err != nil {
		return nil, err
	}
	return s.ledger.Query(f)
}

// Performance returns one summary per ticker the portfolio still holds,
// ordered by total realized profit, highest first. Positions that were fully
// exited are omitted. A positive limit caps the number of summaries returned.
//
// The average buy price is an all-time figure: total cash ever invested in
// the ticker divided by total shares ever purchased, rounded to two decimal
// places. It deliberately keeps sold lots in the denominator so the metric
// stays stable across partial exits.
func (s *Service) Performance(portfolioID string, limit int) ([]InvestmentSummary, error) {
	if _, err := s.portfolios.Load(portfolioID); err != nil {
		return nil, err
	}

	txs, err := s.ledger.Query(ledger.Filter{PortfolioID: portfolioID})
	if err != nil {
		return nil, err
	}

	// Walk oldest to newest so first-seen ticker order is deterministic,
	// keeping the profit sort below stable across calls.
	byTicker := make(map[string]*InvestmentSummary)
	var order []string
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		if tx.Type != domain.TransactionPurchase && tx.Type != domain.TransactionSale {
			continue
		}

		sum, ok := byTicker[tx.Ticker]
		if !ok {
			sum = &InvestmentSummary{
				Ticker:          tx.Ticker,
				TotalInvested:   decimal.Zero,
				TotalProceeds:   decimal.Zero,
				TotalProfit:     decimal.Zero,
				AverageBuyPrice: decimal.Zero,
				CurrentPrice:    decimal.Zero,
				UnrealizedGain:  decimal.Zero,
			}
			byTicker[tx.Ticker] = sum
			order = append(order, tx.Ticker)
		}

		switch tx.Type {
		case domain.TransactionPurchase:
			sum.SharesPurchased += tx.Quantity
			sum.TotalInvested = sum.TotalInvested.Add(tx.TotalAmount)
		case domain.TransactionSale:
			sum.SharesSold += tx.Quantity
			sum.TotalProceeds = sum.TotalProceeds.Add(tx.TotalAmount)
			sum.TotalProfit = sum.TotalProfit.Add(tx.Profit)
		}
	}

	summaries := make([]InvestmentSummary, 0, len(byTicker))
	for _, ticker := range order {
		sum := byTicker[ticker]
		sum.SharesRemaining = sum.SharesPurchased - sum.SharesSold
		if sum.SharesRemaining <= 0 {
			continue
		}

		sum.AverageBuyPrice = sum.TotalInvested.DivRound(decimal.NewFromInt(sum.SharesPurchased), 2)

		price, err := s.prices.CurrentPrice(ticker)
		if err != nil {
			// A single unquotable ticker must not sink the whole report.
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Skipping unrealized gain, no current price")
		} else {
			sum.CurrentPrice = price
			sum.UnrealizedGain = price.Sub(sum.AverageBuyPrice).Mul(decimal.NewFromInt(sum.SharesRemaining))
		}

		summaries = append(summaries, *sum)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalProfit.GreaterThan(summaries[j].TotalProfit)
	})

	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
