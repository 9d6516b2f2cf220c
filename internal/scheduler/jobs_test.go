package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredorueda/portfolio-service/internal/clientdata"
	testhelpers "github.com/alfredorueda/portfolio-service/internal/testing"
)

type stubTickerSource struct {
	tickers []string
	err     error
}

func (s *stubTickerSource) ListHeldTickers() ([]string, error) {
	return s.tickers, s.err
}

func TestPriceWarmJob_WarmsEveryHeldTicker(t *testing.T) {
	prices := testhelpers.NewMockPriceProvider(map[string]decimal.Decimal{})
	prices.SetDefault(decimal.RequireFromString("100"))
	source := &stubTickerSource{tickers: []string{"AAPL", "MSFT", "GOOGL"}}

	job := NewPriceWarmJob(source, prices, zerolog.Nop())
	require.NoError(t, job.Run())
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL"}, prices.Calls())
}

func TestPriceWarmJob_FailingTickerDoesNotAbortSweep(t *testing.T) {
	prices := testhelpers.NewMockPriceProvider(map[string]decimal.Decimal{})
	prices.SetError(fmt.Errorf("quote backend down"))
	source := &stubTickerSource{tickers: []string{"AAPL", "MSFT"}}

	job := NewPriceWarmJob(source, prices, zerolog.Nop())
	require.NoError(t, job.Run())
	assert.Len(t, prices.Calls(), 2)
}

func TestPriceWarmJob_TickerListFailure(t *testing.T) {
	prices := testhelpers.NewMockPriceProvider(map[string]decimal.Decimal{})
	source := &stubTickerSource{err: fmt.Errorf("db gone")}

	job := NewPriceWarmJob(source, prices, zerolog.Nop())
	assert.Error(t, job.Run())
}

func TestCacheCleanupJob_DeletesExpiredEntries(t *testing.T) {
	db, cleanup := testhelpers.NewTestDB(t, "cache")
	t.Cleanup(cleanup)
	repo := clientdata.NewRepository(db.Conn())

	// One already expired entry, one fresh.
	require.NoError(t, repo.StorePrice("OLD", map[string]string{"price": "1"}, -time.Minute))
	require.NoError(t, repo.StorePrice("NEW", map[string]string{"price": "2"}, time.Hour))

	job := NewCacheCleanupJob(repo, zerolog.Nop())
	require.NoError(t, job.Run())

	var fresh map[string]string
	found, err := repo.GetPrice("NEW", &fresh)
	require.NoError(t, err)
	assert.True(t, found)

	var stale map[string]string
	found, err = repo.GetPrice("OLD", &stale)
	require.NoError(t, err)
	assert.False(t, found)
}
