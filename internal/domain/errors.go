package domain

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a business-rule violation. The set is closed: every
// domain error carries exactly one of these codes, and infrastructure
// failures (storage, network) never use them.
type ErrorCode string

const (
	// CodeInvalidAmount - non-positive monetary value where a positive value is required
	CodeInvalidAmount ErrorCode = "INVALID_AMOUNT"
	// CodeInvalidQuantity - non-positive share count, or a sell exceeding available shares
	CodeInvalidQuantity ErrorCode = "INVALID_QUANTITY"
	// CodeInsufficientFunds - withdrawal or purchase exceeding the cash balance
	CodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	// CodeHoldingNotFound - sell requested for a ticker with no open position
	CodeHoldingNotFound ErrorCode = "HOLDING_NOT_FOUND"
	// CodePortfolioNotFound - operation referencing an unknown portfolio id
	CodePortfolioNotFound ErrorCode = "PORTFOLIO_NOT_FOUND"
)

// Error is a domain-rule violation. These are raised synchronously at the
// point of violation, always before any mutation, and are surfaced directly
// to the caller rather than retried.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf creates a domain error with the given code and formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the domain error code carried by err, or "" if err is not
// a domain error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
