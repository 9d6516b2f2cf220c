package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lot records a single purchase of shares: how many remain unsold, the price
// paid per share, and when the purchase happened. The unit price never
// changes after construction; only the remaining quantity is reduced as
// shares are sold off. A lot whose remaining quantity reaches zero is
// discarded by its Holding and never revisited.
type Lot struct {
	id          string
	remaining   int64
	unitPrice   decimal.Decimal
	purchasedAt time.Time
}

// NewLot creates a lot for a fresh purchase, stamped with the current time.
// Quantity and unit price must both be strictly positive.
func NewLot(quantity int64, unitPrice decimal.Decimal) (*Lot, error) {
	if quantity <= 0 {
		return nil, Errorf(CodeInvalidQuantity, "quantity must be positive")
	}
	if !unitPrice.IsPositive() {
		return nil, Errorf(CodeInvalidAmount, "unit price must be positive")
	}

	return &Lot{
		id:          uuid.New().String(),
		remaining:   quantity,
		unitPrice:   unitPrice,
		purchasedAt: time.Now().UTC(),
	}, nil
}

// RehydrateLot reconstructs a lot from storage without re-validating;
// persisted lots already passed construction-time validation.
func RehydrateLot(id string, remaining int64, unitPrice decimal.Decimal, purchasedAt time.Time) *Lot {
	return &Lot{
		id:          id,
		remaining:   remaining,
		unitPrice:   unitPrice,
		purchasedAt: purchasedAt,
	}
}

// ID returns the lot's opaque identifier.
func (l *Lot) ID() string { return l.id }

// Remaining returns the number of shares from this purchase not yet sold.
func (l *Lot) Remaining() int64 { return l.remaining }

// UnitPrice returns the price paid per share.
func (l *Lot) UnitPrice() decimal.Decimal { return l.unitPrice }

// PurchasedAt returns when the purchase was made.
func (l *Lot) PurchasedAt() time.Time { return l.purchasedAt }

// reduce consumes qty shares from the lot. The remaining quantity can never
// go negative; callers must size qty against Remaining() first.
func (l *Lot) reduce(qty int64) error {
	if qty > l.remaining {
		return Errorf(CodeInvalidQuantity, "cannot reduce lot by %d, only %d remaining", qty, l.remaining)
	}
	l.remaining -= qty
	return nil
}

// isEmpty reports whether every share from this purchase has been sold.
func (l *Lot) isEmpty() bool {
	return l.remaining <= 0
}
