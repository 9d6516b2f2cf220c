package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is one of the four financial activities recorded in the
// ledger.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionPurchase   TransactionType = "PURCHASE"
	TransactionSale       TransactionType = "SALE"
)

// ValidTransactionType reports whether s names a known transaction type.
func ValidTransactionType(s string) bool {
	switch TransactionType(s) {
	case TransactionDeposit, TransactionWithdrawal, TransactionPurchase, TransactionSale:
		return true
	}
	return false
}

// Transaction is one immutable entry in a portfolio's audit ledger. Every
// balance or holding mutation produces exactly one; entries are append-only
// and never updated or deleted. The ledger is the sole input of the
// performance aggregator.
//
// Ticker is empty and Quantity zero for cash-only entries (deposits and
// withdrawals). Profit is zero for every type except SALE.
type Transaction struct {
	ID          string
	PortfolioID string
	Type        TransactionType
	Ticker      string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
	Profit      decimal.Decimal
	CreatedAt   time.Time
}

// NewDepositTransaction records a cash deposit of amount.
func NewDepositTransaction(portfolioID string, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Type:        TransactionDeposit,
		UnitPrice:   decimal.Zero,
		TotalAmount: amount,
		Profit:      decimal.Zero,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewWithdrawalTransaction records a cash withdrawal of amount.
func NewWithdrawalTransaction(portfolioID string, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Type:        TransactionWithdrawal,
		UnitPrice:   decimal.Zero,
		TotalAmount: amount,
		Profit:      decimal.Zero,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewPurchaseTransaction records a stock purchase. The total amount is
// computed as unitPrice times quantity.
func NewPurchaseTransaction(portfolioID, ticker string, quantity int64, unitPrice decimal.Decimal) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Type:        TransactionPurchase,
		Ticker:      ticker,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: unitPrice.Mul(decimal.NewFromInt(quantity)),
		Profit:      decimal.Zero,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewSaleTransaction records a stock sale. The total amount is the proceeds
// and profit the realized gain, both taken from the sell result rather than
// recomputed here.
func NewSaleTransaction(portfolioID, ticker string, quantity int64, unitPrice, totalAmount, profit decimal.Decimal) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Type:        TransactionSale,
		Ticker:      ticker,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: totalAmount,
		Profit:      profit,
		CreatedAt:   time.Now().UTC(),
	}
}
