package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding is the ownership of one ticker inside a portfolio. It keeps the
// lots from every purchase in ascending purchase order (lots are only ever
// appended, so insertion order is the time order) and sells against them
// using FIFO matching: the oldest open lots are consumed first.
type Holding struct {
	id     string
	ticker string
	lots   []*Lot
}

// SellResult is the outcome of a sell: what the shares sold for, what they
// originally cost under FIFO matching, and the realized difference. It is
// consumed immediately by the caller to build the sale ledger entry; it is
// never persisted itself.
type SellResult struct {
	Proceeds  decimal.Decimal
	CostBasis decimal.Decimal
	Profit    decimal.Decimal
}

// NewHolding creates an empty holding for a ticker. Holdings come into
// existence on the first buy of a ticker and are removed from their
// portfolio once the last share is sold.
func NewHolding(ticker string) *Holding {
	return &Holding{
		id:     uuid.New().String(),
		ticker: ticker,
	}
}

// RehydrateHolding reconstructs a holding from storage. Lots must be given
// in ascending purchase order.
func RehydrateHolding(id, ticker string, lots []*Lot) *Holding {
	return &Holding{
		id:     id,
		ticker: ticker,
		lots:   lots,
	}
}

// ID returns the holding's opaque identifier.
func (h *Holding) ID() string { return h.id }

// Ticker returns the stock symbol this holding tracks.
func (h *Holding) Ticker() string { return h.ticker }

// Lots returns the open lots in ascending purchase order.
func (h *Holding) Lots() []*Lot {
	out := make([]*Lot, len(h.lots))
	copy(out, h.lots)
	return out
}

// Buy appends a new lot for this purchase to the end of the lot sequence.
func (h *Holding) Buy(quantity int64, unitPrice decimal.Decimal) error {
	lot, err := NewLot(quantity, unitPrice)
	if err != nil {
		return err
	}
	h.lots = append(h.lots, lot)
	return nil
}

// Sell disposes of quantity shares at sellPrice using FIFO lot matching and
// returns the resulting proceeds, cost basis and realized profit.
//
// The availability check runs before any lot is touched, so a rejected sell
// leaves every lot exactly as it was. Matching walks the lots oldest first,
// taking min(lot remaining, still needed) from each; exhausted lots are
// dropped afterwards and never revisited by a later sell.
func (h *Holding) Sell(quantity int64, sellPrice decimal.Decimal) (SellResult, error) {
	if total := h.TotalShares(); total < quantity {
		return SellResult{}, Errorf(CodeInvalidQuantity,
			"not enough shares of %s to sell: available %d, requested %d", h.ticker, total, quantity)
	}

	stillNeeded := quantity
	costBasis := decimal.Zero

	for _, lot := range h.lots {
		if stillNeeded <= 0 {
			break
		}
		taken := lot.Remaining()
		if stillNeeded < taken {
			taken = stillNeeded
		}
		costBasis = costBasis.Add(lot.UnitPrice().Mul(decimal.NewFromInt(taken)))
		if err := lot.reduce(taken); err != nil {
			return SellResult{}, err
		}
		stillNeeded -= taken
	}

	// Drop exhausted lots.
	open := h.lots[:0]
	for _, lot := range h.lots {
		if !lot.isEmpty() {
			open = append(open, lot)
		}
	}
	h.lots = open

	proceeds := sellPrice.Mul(decimal.NewFromInt(quantity))
	return SellResult{
		Proceeds:  proceeds,
		CostBasis: costBasis,
		Profit:    proceeds.Sub(costBasis),
	}, nil
}

// TotalShares returns the remaining shares summed across all open lots.
func (h *Holding) TotalShares() int64 {
	var total int64
	for _, lot := range h.lots {
		total += lot.Remaining()
	}
	return total
}

// IsEmpty reports whether the holding has no remaining shares and is
// therefore eligible for removal from its portfolio.
func (h *Holding) IsEmpty() bool {
	return len(h.lots) == 0 || h.TotalShares() == 0
}
