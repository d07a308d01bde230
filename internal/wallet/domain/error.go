package domain

import "errors"

var (
	ErrTooManyPayments    = errors.New("too many pending payments")
	ErrMissingPaymentHash = errors.New("payment hash is required")
)
