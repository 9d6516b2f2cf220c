package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredorueda/portfolio-service/internal/domain"
	"github.com/alfredorueda/portfolio-service/internal/modules/analysis"
	"github.com/alfredorueda/portfolio-service/internal/modules/ledger"
	"github.com/alfredorueda/portfolio-service/internal/modules/portfolio"
	testhelpers "github.com/alfredorueda/portfolio-service/internal/testing"
)

type fixture struct {
	router     chi.Router
	ledgerRepo *ledger.Repository
	prices     *testhelpers.MockPriceProvider
	portfolio  *domain.Portfolio
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	portfolioDB, cleanupP := testhelpers.NewTestDB(t, "portfolio")
	t.Cleanup(cleanupP)
	ledgerDB, cleanupL := testhelpers.NewTestDB(t, "ledger")
	t.Cleanup(cleanupL)

	repo := portfolio.NewRepository(portfolioDB.Conn(), zerolog.Nop())
	ledgerRepo := ledger.NewRepository(ledgerDB.Conn(), zerolog.Nop())
	prices := testhelpers.NewMockPriceProvider(map[string]decimal.Decimal{
		"AAPL": decimal.RequireFromString("180"),
	})

	p := domain.NewPortfolio("Ada")
	require.NoError(t, repo.Create(p))

	service := analysis.NewService(repo, ledgerRepo, prices, zerolog.Nop())
	handler := NewHandler(service, prices, zerolog.Nop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return &fixture{router: r, ledgerRepo: ledgerRepo, prices: prices, portfolio: p}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestGetTransactions(t *testing.T) {
	f := newFixture(t)
	id := f.portfolio.ID()

	require.NoError(t, f.ledgerRepo.Append(domain.NewDepositTransaction(id, decimal.RequireFromString("5000"))))
	require.NoError(t, f.ledgerRepo.Append(domain.NewPurchaseTransaction(id, "AAPL", 10, decimal.RequireFromString("150"))))

	rec := f.get(t, "/portfolios/"+id+"/transactions")
	require.Equal(t, http.StatusOK, rec.Code)

	var txs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	assert.Len(t, txs, 2)
}

func TestGetTransactions_FilterByType(t *testing.T) {
	f := newFixture(t)
	id := f.portfolio.ID()

	require.NoError(t, f.ledgerRepo.Append(domain.NewDepositTransaction(id, decimal.RequireFromString("5000"))))
	require.NoError(t, f.ledgerRepo.Append(domain.NewPurchaseTransaction(id, "AAPL", 10, decimal.RequireFromString("150"))))

	rec := f.get(t, "/portfolios/"+id+"/transactions?type=purchase")
	require.Equal(t, http.StatusOK, rec.Code)

	var txs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "PURCHASE", txs[0]["type"])
	assert.Equal(t, "AAPL", txs[0]["ticker"])
}

func TestGetTransactions_InvalidType(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/portfolios/"+f.portfolio.ID()+"/transactions?type=TRANSFER")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTransactions_InvalidDate(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/portfolios/"+f.portfolio.ID()+"/transactions?from=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTransactions_UnknownPortfolio(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/portfolios/missing/transactions")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPerformance(t *testing.T) {
	f := newFixture(t)
	id := f.portfolio.ID()

	require.NoError(t, f.ledgerRepo.Append(domain.NewPurchaseTransaction(id, "AAPL", 10, decimal.RequireFromString("150"))))

	rec := f.get(t, "/portfolios/"+id+"/performance")
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "AAPL", summaries[0]["ticker"])
	assert.Equal(t, "150", summaries[0]["averageBuyPrice"])
	assert.Equal(t, "180", summaries[0]["currentPrice"])
}

func TestGetPerformance_InvalidLimit(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/portfolios/"+f.portfolio.ID()+"/performance?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPrice(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/prices/aapl")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AAPL", body["ticker"])
	assert.Equal(t, "180", body["price"])
}

func TestGetPrice_Unavailable(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/prices/ZZZZ")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
