package domain

import "github.com/shopspring/decimal"

// PriceProvider supplies the current market price for a ticker. The core
// treats this as a plain synchronous lookup: implementations own their retry,
// caching and fallback policy and must not surface domain-shaped errors.
//
// Defined here so the analysis and trading modules can share one contract
// without depending on the concrete client package.
type PriceProvider interface {
	CurrentPrice(ticker string) (decimal.Decimal, error)
}
