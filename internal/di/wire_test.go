package di

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredorueda/portfolio-service/internal/config"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew_WiresFullContainer(t *testing.T) {
	cfg := &config.Config{
		DataDir:       t.TempDir(),
		PriceTestMode: true,
		PriceCacheTTL: time.Minute,
	}

	c, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.PortfolioDB)
	assert.NotNil(t, c.LedgerDB)
	assert.NotNil(t, c.CacheDB)
	assert.NotNil(t, c.PortfolioRepo)
	assert.NotNil(t, c.LedgerRepo)
	assert.NotNil(t, c.ClientDataRepo)
	assert.NotNil(t, c.PriceClient)
	assert.NotNil(t, c.PortfolioService)
	assert.NotNil(t, c.TradingService)
	assert.NotNil(t, c.AnalysisService)

	require.NoError(t, c.PortfolioDB.Conn().Ping())
	require.NoError(t, c.LedgerDB.Conn().Ping())
	require.NoError(t, c.CacheDB.Conn().Ping())
}

func TestNew_EndToEndTradeThroughContainer(t *testing.T) {
	cfg := &config.Config{
		DataDir:       t.TempDir(),
		PriceTestMode: true,
		PriceCacheTTL: time.Minute,
	}

	c, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	p, err := c.PortfolioService.Create("Wire Test")
	require.NoError(t, err)
	require.NoError(t, c.PortfolioService.Deposit(p.ID(), dec("5000")))

	updated, err := c.TradingService.Buy(p.ID(), "AAPL", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.HoldingFor("AAPL").TotalShares())

	summaries, err := c.AnalysisService.Performance(p.ID(), 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "AAPL", summaries[0].Ticker)
}
