package portfolio

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredorueda/portfolio-service/internal/domain"
	testhelpers "github.com/alfredorueda/portfolio-service/internal/testing"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t, "portfolio")
	t.Cleanup(cleanup)
	return NewRepository(db.Conn(), zerolog.Nop())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateAndLoad(t *testing.T) {
	repo := newTestRepo(t)

	p := domain.NewPortfolio("Alice")
	require.NoError(t, p.Deposit(dec("1000")))
	require.NoError(t, repo.Create(p))

	loaded, err := repo.Load(p.ID())
	require.NoError(t, err)
	assert.Equal(t, p.ID(), loaded.ID())
	assert.Equal(t, "Alice", loaded.OwnerName())
	// Create persists the row as-is, including the deposited balance.
	assert.True(t, loaded.Balance().Equal(dec("1000")))
	assert.Equal(t, int64(0), loaded.Version())
	assert.Empty(t, loaded.Holdings())
}

func TestLoad_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Load("missing")
	assert.True(t, domain.IsCode(err, domain.CodePortfolioNotFound))
}

func TestSave_PersistsHoldingsAndLots(t *testing.T) {
	repo := newTestRepo(t)

	p := domain.NewPortfolio("Alice")
	require.NoError(t, p.Deposit(dec("5000")))
	require.NoError(t, repo.Create(p))

	require.NoError(t, p.Buy("AAPL", 10, dec("150")))
	require.NoError(t, p.Buy("AAPL", 5, dec("170")))
	require.NoError(t, p.Buy("MSFT", 2, dec("300")))
	require.NoError(t, repo.Save(p))

	loaded, err := repo.Load(p.ID())
	require.NoError(t, err)
	assert.True(t, loaded.Balance().Equal(dec("1250")))
	assert.Equal(t, int64(1), loaded.Version())

	h := loaded.HoldingFor("AAPL")
	require.NotNil(t, h)
	assert.Equal(t, int64(15), h.TotalShares())

	// Lot order survives the round trip: oldest first, so FIFO matching
	// keeps working on the reloaded aggregate.
	lots := h.Lots()
	require.Len(t, lots, 2)
	assert.True(t, lots[0].UnitPrice().Equal(dec("150")))
	assert.True(t, lots[1].UnitPrice().Equal(dec("170")))
}

func TestSave_PartiallyConsumedLot(t *testing.T) {
	repo := newTestRepo(t)

	p := domain.NewPortfolio("Alice")
	require.NoError(t, p.Deposit(dec("5000")))
	require.NoError(t, repo.Create(p))
	require.NoError(t, p.Buy("AAPL", 10, dec("150")))
	_, err := p.Sell("AAPL", 4, dec("160"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(p))

	loaded, err := repo.Load(p.ID())
	require.NoError(t, err)
	h := loaded.HoldingFor("AAPL")
	require.NotNil(t, h)
	require.Len(t, h.Lots(), 1)
	assert.Equal(t, int64(6), h.Lots()[0].Remaining())
}

func TestSave_RemovesClosedHoldings(t *testing.T) {
	repo := newTestRepo(t)

	p := domain.NewPortfolio("Alice")
	require.NoError(t, p.Deposit(dec("5000")))
	require.NoError(t, repo.Create(p))
	require.NoError(t, p.Buy("AAPL", 10, dec("150")))
	require.NoError(t, repo.Save(p))

	reloaded, err := repo.Load(p.ID())
	require.NoError(t, err)
	_, err = reloaded.Sell("AAPL", 10, dec("160"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(reloaded))

	final, err := repo.Load(p.ID())
	require.NoError(t, err)
	assert.Empty(t, final.Holdings())
}

func TestSave_VersionConflict(t *testing.T) {
	repo := newTestRepo(t)

	p := domain.NewPortfolio("Alice")
	require.NoError(t, p.Deposit(dec("1000")))
	require.NoError(t, repo.Create(p))

	first, err := repo.Load(p.ID())
	require.NoError(t, err)
	second, err := repo.Load(p.ID())
	require.NoError(t, err)

	require.NoError(t, first.Deposit(dec("100")))
	require.NoError(t, repo.Save(first))

	require.NoError(t, second.Deposit(dec("200")))
	err = repo.Save(second)
	require.ErrorIs(t, err, ErrVersionConflict)

	// The losing write changed nothing.
	loaded, err := repo.Load(p.ID())
	require.NoError(t, err)
	assert.True(t, loaded.Balance().Equal(dec("1100")))
}

func TestCount(t *testing.T) {
	repo := newTestRepo(t)

	n, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, repo.Create(domain.NewPortfolio("Alice")))
	require.NoError(t, repo.Create(domain.NewPortfolio("Bob")))

	n, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListHeldTickers(t *testing.T) {
	repo := newTestRepo(t)

	tickers, err := repo.ListHeldTickers()
	require.NoError(t, err)
	assert.Empty(t, tickers)

	alice := domain.NewPortfolio("Alice")
	require.NoError(t, alice.Deposit(dec("10000")))
	require.NoError(t, repo.Create(alice))
	require.NoError(t, alice.Buy("MSFT", 1, dec("300")))
	require.NoError(t, alice.Buy("AAPL", 1, dec("150")))
	require.NoError(t, repo.Save(alice))

	bob := domain.NewPortfolio("Bob")
	require.NoError(t, bob.Deposit(dec("10000")))
	require.NoError(t, repo.Create(bob))
	require.NoError(t, bob.Buy("AAPL", 2, dec("150")))
	require.NoError(t, repo.Save(bob))

	tickers, err = repo.ListHeldTickers()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
}
