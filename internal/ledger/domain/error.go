package domain

import "errors"

var (
	ErrNotFound     = errors.New("ledger record not found")
	ErrUnauthorized = errors.New("ledger record not owned by client")
)
