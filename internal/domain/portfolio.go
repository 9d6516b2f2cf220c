// Package domain holds the portfolio accounting core: the Portfolio
// aggregate with its Holdings and Lots, the Transaction ledger entry, and
// the closed domain error taxonomy. Everything here is pure, synchronous,
// in-memory computation; persistence and transport live in the surrounding
// modules.
package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Portfolio is the aggregate root for one investor's account: a cash
// balance plus at most one Holding per ticker. The four operations Deposit,
// Withdraw, Buy and Sell are the only ways balance or holdings change; all
// fields are unexported so the invariants (no overdraft, no short-selling)
// cannot be bypassed from outside the package.
//
// The aggregate is reconstructed from storage for every mutation cycle and
// the prior in-memory copy discarded; it holds no shared mutable references.
type Portfolio struct {
	id        string
	ownerName string
	balance   decimal.Decimal
	createdAt time.Time
	holdings  map[string]*Holding
	version   int64
}

// NewPortfolio creates a portfolio for the given owner with a zero balance.
func NewPortfolio(ownerName string) *Portfolio {
	return &Portfolio{
		id:        uuid.New().String(),
		ownerName: ownerName,
		balance:   decimal.Zero,
		createdAt: time.Now().UTC(),
		holdings:  make(map[string]*Holding),
	}
}

// RehydratePortfolio reconstructs a portfolio from storage.
func RehydratePortfolio(id, ownerName string, balance decimal.Decimal, createdAt time.Time, version int64, holdings []*Holding) *Portfolio {
	byTicker := make(map[string]*Holding, len(holdings))
	for _, h := range holdings {
		byTicker[h.Ticker()] = h
	}
	return &Portfolio{
		id:        id,
		ownerName: ownerName,
		balance:   balance,
		createdAt: createdAt,
		holdings:  byTicker,
		version:   version,
	}
}

// ID returns the portfolio's opaque identifier.
func (p *Portfolio) ID() string { return p.id }

// OwnerName returns the name of the portfolio's owner.
func (p *Portfolio) OwnerName() string { return p.ownerName }

// Balance returns the current cash balance.
func (p *Portfolio) Balance() decimal.Decimal { return p.balance }

// CreatedAt returns when the portfolio was created.
func (p *Portfolio) CreatedAt() time.Time { return p.createdAt }

// Version returns the optimistic-concurrency version the aggregate was
// loaded with. The repository bumps it on every successful save.
func (p *Portfolio) Version() int64 { return p.version }

// Holdings returns the open holdings sorted by ticker.
func (p *Portfolio) Holdings() []*Holding {
	out := make([]*Holding, 0, len(p.holdings))
	for _, h := range p.holdings {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker() < out[j].Ticker() })
	return out
}

// HoldingFor returns the holding for ticker, or nil if none is open.
func (p *Portfolio) HoldingFor(ticker string) *Holding {
	return p.holdings[ticker]
}

// Deposit adds amount to the cash balance.
func (p *Portfolio) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return Errorf(CodeInvalidAmount, "deposit amount must be positive")
	}
	p.balance = p.balance.Add(amount)
	return nil
}

// Withdraw removes amount from the cash balance. The balance can never go
// negative.
func (p *Portfolio) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return Errorf(CodeInvalidAmount, "withdrawal amount must be positive")
	}
	if p.balance.LessThan(amount) {
		return Errorf(CodeInsufficientFunds, "insufficient funds for withdrawal of %s", amount.String())
	}
	p.balance = p.balance.Sub(amount)
	return nil
}

// Buy purchases quantity shares of ticker at unitPrice, debiting the cash
// balance by the total cost. The holding for the ticker is created lazily on
// the first purchase. All validation happens before anything mutates.
func (p *Portfolio) Buy(ticker string, quantity int64, unitPrice decimal.Decimal) error {
	if quantity <= 0 {
		return Errorf(CodeInvalidQuantity, "quantity must be positive")
	}
	if !unitPrice.IsPositive() {
		return Errorf(CodeInvalidAmount, "price must be positive")
	}

	totalCost := unitPrice.Mul(decimal.NewFromInt(quantity))
	if p.balance.LessThan(totalCost) {
		return Errorf(CodeInsufficientFunds,
			"insufficient funds to buy %d shares of %s for %s", quantity, ticker, totalCost.String())
	}

	holding, ok := p.holdings[ticker]
	if !ok {
		holding = NewHolding(ticker)
		p.holdings[ticker] = holding
	}
	if err := holding.Buy(quantity, unitPrice); err != nil {
		// Inputs were validated above, so this only guards against an empty
		// holding lingering if lot construction ever rejects them.
		if holding.IsEmpty() {
			delete(p.holdings, ticker)
		}
		return err
	}
	p.balance = p.balance.Sub(totalCost)
	return nil
}

// Sell disposes of quantity shares of ticker at sellPrice, crediting the
// proceeds to the cash balance. The holding is removed once its last share
// is sold. Returns the FIFO sell result for the caller to record as a sale
// transaction.
func (p *Portfolio) Sell(ticker string, quantity int64, sellPrice decimal.Decimal) (SellResult, error) {
	if quantity <= 0 {
		return SellResult{}, Errorf(CodeInvalidQuantity, "quantity must be positive")
	}
	if !sellPrice.IsPositive() {
		return SellResult{}, Errorf(CodeInvalidAmount, "price must be positive")
	}

	holding, ok := p.holdings[ticker]
	if !ok {
		return SellResult{}, Errorf(CodeHoldingNotFound, "no holding found for ticker %s", ticker)
	}

	result, err := holding.Sell(quantity, sellPrice)
	if err != nil {
		return SellResult{}, err
	}

	p.balance = p.balance.Add(result.Proceeds)
	if holding.IsEmpty() {
		delete(p.holdings, ticker)
	}
	return result, nil
}
