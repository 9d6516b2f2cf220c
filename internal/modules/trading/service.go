// Package trading executes buy and sell orders against a portfolio at the
// current market price.
package trading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/domain"
	"github.com/alfredorueda/portfolio-service/internal/modules/portfolio"
)

// maxSaveRetries bounds how often a read-modify-write cycle is retried when
// a concurrent writer wins the optimistic version check.
const maxSaveRetries = 3

// PortfolioStore loads and saves portfolio aggregates.
type PortfolioStore interface {
	Load(id string) (*domain.Portfolio, error)
	Save(p *domain.Portfolio) error
}

// LedgerAppender records a transaction in the audit ledger.
type LedgerAppender interface {
	Append(tx domain.Transaction) error
}

// Service executes trades. Orders are always priced at the provider's
// current quote; clients submit only ticker and quantity.
type Service struct {
	store  PortfolioStore
	ledger LedgerAppender
	prices domain.PriceProvider
	log    zerolog.Logger
}

// NewService creates a new trading service.
func NewService(store PortfolioStore, ledger LedgerAppender, prices domain.PriceProvider, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		prices: prices,
		log:    log.With().Str("service", "trading").Logger(),
	}
}

// Buy purchases quantity shares of ticker at the current market price,
// debiting the portfolio's cash balance and recording a PURCHASE ledger
// entry. The price is fetched once and used for every retry attempt so a
// version conflict cannot change what the caller pays.
func (s *Service) Buy(portfolioID, ticker string, quantity int64) (*domain.Portfolio, error) {
	ticker = normalizeTicker(ticker)
	if quantity <= 0 {
		return nil, domain.Errorf(domain.CodeInvalidQuantity, "quantity must be positive, got %d", quantity)
	}

	price, err := s.prices.CurrentPrice(ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to price buy order for %s: %w", ticker, err)
	}

	p, err := s.mutate(portfolioID, func(p *domain.Portfolio) error {
		return p.Buy(ticker, quantity, price)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("portfolio_id", portfolioID).
		Str("ticker", ticker).
		Int64("quantity", quantity).
		Str("unit_price", price.String()).
		Msg("Buy order executed")

	if err := s.appendLedger(domain.NewPurchaseTransaction(portfolioID, ticker, quantity, price)); err != nil {
		return nil, err
	}
	return p, nil
}

// Sell sells quantity shares of ticker at the current market price, matching
// lots oldest first, crediting the proceeds and recording a SALE ledger
// entry with the realized profit.
func (s *Service) Sell(portfolioID, ticker string, quantity int64) (*domain.Portfolio, domain.SellResult, error) {
	ticker = normalizeTicker(ticker)
	if quantity <= 0 {
		return nil, domain.SellResult{}, domain.Errorf(domain.CodeInvalidQuantity, "quantity must be positive, got %d", quantity)
	}

	price, err := s.prices.CurrentPrice(ticker)
	if err != nil {
		return nil, domain.SellResult{}, fmt.Errorf("failed to price sell order for %s: %w", ticker, err)
	}

	var result domain.SellResult
	p, err := s.mutate(portfolioID, func(p *domain.Portfolio) error {
		var err error
		result, err = p.Sell(ticker, quantity, price)
		return err
	})
	if err != nil {
		return nil, domain.SellResult{}, err
	}

	s.log.Info().
		Str("portfolio_id", portfolioID).
		Str("ticker", ticker).
		Int64("quantity", quantity).
		Str("unit_price", price.String()).
		Str("profit", result.Profit.String()).
		Msg("Sell order executed")

	tx := domain.NewSaleTransaction(portfolioID, ticker, quantity, price, result.Proceeds, result.Profit)
	if err := s.appendLedger(tx); err != nil {
		return nil, domain.SellResult{}, err
	}
	return p, result, nil
}

// Quote returns the current market price for a ticker without trading.
func (s *Service) Quote(ticker string) (decimal.Decimal, error) {
	return s.prices.CurrentPrice(normalizeTicker(ticker))
}

func (s *Service) mutate(portfolioID string, op func(*domain.Portfolio) error) (*domain.Portfolio, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		p, err := s.store.Load(portfolioID)
		if err != nil {
			return nil, err
		}
		if err := op(p); err != nil {
			return nil, err
		}
		err = s.store.Save(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, portfolio.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		s.log.Debug().
			Str("portfolio_id", portfolioID).
			Int("attempt", attempt+1).
			Msg("Version conflict, retrying trade")
	}
	return nil, fmt.Errorf("trade failed after %d attempts: %w", maxSaveRetries, lastErr)
}

func (s *Service) appendLedger(tx domain.Transaction) error {
	if err := s.ledger.Append(tx); err != nil {
		s.log.Error().
			Err(err).
			Str("portfolio_id", tx.PortfolioID).
			Str("type", string(tx.Type)).
			Msg("Ledger append failed after trade, ledger is behind aggregate state")
		return fmt.Errorf("failed to record %s transaction: %w", tx.Type, err)
	}
	return nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
