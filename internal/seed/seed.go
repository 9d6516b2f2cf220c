// Package seed loads a demo portfolio into an empty installation so the API
// has data to explore on first run.
package seed

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/di"
)

// order is one scripted trade in the demo history.
type order struct {
	ticker   string
	quantity int64
}

// Run creates a demo portfolio with a small trade history: funding, a few
// purchases across tickers, a partial sale and a follow-up buy. It is a
// no-op when the portfolio database already holds data, so restarts never
// duplicate the demo account.
func Run(c *di.Container, log zerolog.Logger) error {
	log = log.With().Str("component", "seed").Logger()

	count, err := c.PortfolioRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to check for existing portfolios: %w", err)
	}
	if count > 0 {
		log.Info().Int("portfolios", count).Msg("Database already populated, skipping demo seed")
		return nil
	}

	p, err := c.PortfolioService.Create("Demo User")
	if err != nil {
		return fmt.Errorf("failed to create demo portfolio: %w", err)
	}

	if err := c.PortfolioService.Deposit(p.ID(), decimal.NewFromInt(25000)); err != nil {
		return fmt.Errorf("failed to fund demo portfolio: %w", err)
	}

	buys := []order{
		{ticker: "AAPL", quantity: 10},
		{ticker: "MSFT", quantity: 5},
		{ticker: "GOOGL", quantity: 2},
	}
	for _, o := range buys {
		if _, err := c.TradingService.Buy(p.ID(), o.ticker, o.quantity); err != nil {
			return fmt.Errorf("failed to buy %d %s for demo portfolio: %w", o.quantity, o.ticker, err)
		}
	}

	if _, _, err := c.TradingService.Sell(p.ID(), "AAPL", 3); err != nil {
		return fmt.Errorf("failed to sell demo position: %w", err)
	}

	if err := c.PortfolioService.Deposit(p.ID(), decimal.NewFromInt(5000)); err != nil {
		return fmt.Errorf("failed to top up demo portfolio: %w", err)
	}
	if _, err := c.TradingService.Buy(p.ID(), "AMZN", 4); err != nil {
		return fmt.Errorf("failed to buy AMZN for demo portfolio: %w", err)
	}

	log.Info().Str("portfolio_id", p.ID()).Msg("Demo portfolio seeded")
	return nil
}
