package contracts

import "errors"

// 에러 분류
var (
	// ErrNetworkTimeout a quote batch exceeded its deadline
	ErrNetworkTimeout = errors.New("network timeout")
	// ErrNetworkError transport failure, non-2xx status, or malformed body
	ErrNetworkError = errors.New("network error")
	// ErrInvalidArgument caller supplied unusable input
	ErrInvalidArgument = errors.New("invalid argument")

	ErrUnknownSymbol    = errors.New("unknown symbol")
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrNoHistory        = errors.New("no price history")
)
