package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredorueda/portfolio-service/internal/modules/portfolio"
	testhelpers "github.com/alfredorueda/portfolio-service/internal/testing"
)

func newTestRouter(t *testing.T) (chi.Router, *testhelpers.MockLedger) {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t, "portfolio")
	t.Cleanup(cleanup)

	repo := portfolio.NewRepository(db.Conn(), zerolog.Nop())
	ledger := testhelpers.NewMockLedger()
	service := portfolio.NewService(repo, ledger, zerolog.Nop())
	handler := NewHandler(service, zerolog.Nop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, ledger
}

func doJSON(t *testing.T, r chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func createPortfolio(t *testing.T, r chi.Router) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/portfolios", map[string]string{"ownerName": "Ada"})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	id, ok := body["id"].(string)
	require.True(t, ok)
	return id
}

func TestCreatePortfolio(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/portfolios", map[string]string{"ownerName": "Ada"})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Ada", body["ownerName"])
	assert.Equal(t, "0", body["balance"])
	assert.NotEmpty(t, body["id"])
	assert.Empty(t, body["holdings"])
}

func TestCreatePortfolio_MissingOwnerName(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/portfolios", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeBody(t, rec)["code"])
}

func TestGetPortfolio_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/portfolios/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PORTFOLIO_NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestDeposit(t *testing.T) {
	r, ledger := newTestRouter(t)
	id := createPortfolio(t, r)

	rec := doJSON(t, r, http.MethodPost, "/portfolios/"+id+"/deposits", map[string]string{"amount": "2500.50"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2500.5", decodeBody(t, rec)["balance"])

	txs := ledger.Transactions()
	require.Len(t, txs, 1)
	assert.True(t, txs[0].TotalAmount.Equal(decimal.RequireFromString("2500.50")))
}

func TestDeposit_NonPositiveAmount(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPortfolio(t, r)

	rec := doJSON(t, r, http.MethodPost, "/portfolios/"+id+"/deposits", map[string]string{"amount": "-5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_AMOUNT", decodeBody(t, rec)["code"])
}

func TestDeposit_MalformedAmount(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPortfolio(t, r)

	rec := doJSON(t, r, http.MethodPost, "/portfolios/"+id+"/deposits", map[string]string{"amount": "lots"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeBody(t, rec)["code"])
}

func TestWithdraw(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPortfolio(t, r)

	doJSON(t, r, http.MethodPost, "/portfolios/"+id+"/deposits", map[string]string{"amount": "1000"})
	rec := doJSON(t, r, http.MethodPost, "/portfolios/"+id+"/withdrawals", map[string]string{"amount": "400"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "600", decodeBody(t, rec)["balance"])
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPortfolio(t, r)

	rec := doJSON(t, r, http.MethodPost, "/portfolios/"+id+"/withdrawals", map[string]string{"amount": "100"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_FUNDS", decodeBody(t, rec)["code"])
}
