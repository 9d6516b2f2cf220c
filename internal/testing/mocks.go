package testing

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/domain"
)

// MockPriceProvider is a configurable price source for tests. Prices are set
// per ticker; unknown tickers return an error unless a default is set.
type MockPriceProvider struct {
	mu       sync.Mutex
	prices   map[string]decimal.Decimal
	err      error
	calls    []string
	fallback *decimal.Decimal
}

// NewMockPriceProvider creates a mock with the given ticker prices.
func NewMockPriceProvider(prices map[string]decimal.Decimal) *MockPriceProvider {
	cp := make(map[string]decimal.Decimal, len(prices))
	for k, v := range prices {
		cp[k] = v
	}
	return &MockPriceProvider{prices: cp}
}

// SetPrice sets or replaces the price for a ticker.
func (m *MockPriceProvider) SetPrice(ticker string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[ticker] = price
}

// SetDefault makes unknown tickers resolve to the given price instead of
// returning an error.
func (m *MockPriceProvider) SetDefault(price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &price
}

// SetError makes every lookup fail with the given error.
func (m *MockPriceProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the tickers requested so far, in order.
func (m *MockPriceProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CurrentPrice implements domain.PriceProvider.
func (m *MockPriceProvider) CurrentPrice(ticker string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, ticker)
	if m.err != nil {
		return decimal.Zero, m.err
	}
	if price, ok := m.prices[ticker]; ok {
		return price, nil
	}
	if m.fallback != nil {
		return *m.fallback, nil
	}
	return decimal.Zero, fmt.Errorf("no mock price configured for %s", ticker)
}

var _ domain.PriceProvider = (*MockPriceProvider)(nil)

// MockLedger records appended transactions in memory.
type MockLedger struct {
	mu  sync.Mutex
	txs []domain.Transaction
	err error
}

// NewMockLedger creates an empty in-memory ledger recorder.
func NewMockLedger() *MockLedger {
	return &MockLedger{}
}

// SetError makes every append fail with the given error.
func (m *MockLedger) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Append implements the ledger appender used by the services.
func (m *MockLedger) Append(tx domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.txs = append(m.txs, tx)
	return nil
}

// Transactions returns the recorded transactions in append order.
func (m *MockLedger) Transactions() []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Transaction, len(m.txs))
	copy(out, m.txs)
	return out
}
