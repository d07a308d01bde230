package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Service is the transactional contract of the settlement ledger. Every
// mutating operation is atomic: it is either fully applied or fully rolled
// back.
type Service interface {
	// CreateInvoice inserts an empty incoming record for the client and
	// returns its id.
	CreateInvoice(ctx context.Context, pubkey string) (snowflake.ID, error)

	// CompleteInvoice fills in the node-reported invoice details on an
	// existing incoming record. Returns ErrNotFound when the id is unknown.
	CompleteInvoice(ctx context.Context, id snowflake.ID, details InvoiceDetails) error

	// DeleteInvoice removes an incoming record only while it is still
	// unsettled. Settled or absent records are left untouched without error.
	DeleteInvoice(ctx context.Context, id snowflake.ID) error

	// GetInvoiceByID returns the incoming record with the given id, or nil
	// when absent.
	GetInvoiceByID(ctx context.Context, id snowflake.ID) (*Transaction, error)

	// SettleInvoice marks an unpaid incoming record paid, accumulates the
	// liquidity fee into the received-fee counter and upserts the wallet to
	// the supplied next state, all in one transaction. Returns false without
	// error when the record was already settled by a prior call; nothing is
	// applied in that case. Returns ErrUnauthorized when the record is not
	// owned by pubkey.
	SettleInvoice(ctx context.Context, pubkey string, id snowflake.ID, settledAt time.Time, next Wallet, liquidityFeeMsat int64) (bool, error)

	// CreatePayment inserts an unpaid, fully described outgoing record.
	CreatePayment(ctx context.Context, pubkey string, details InvoiceDetails) (snowflake.ID, error)

	// DeletePayment removes an outgoing attempt regardless of pay state.
	// Used for cleanup after a failed node call.
	DeletePayment(ctx context.Context, pubkey, paymentHash string) error

	// SettlePayment marks the matching unpaid outgoing record paid, records
	// fees and preimage, and upserts the wallet, atomically. Returns
	// ErrNotFound unless exactly one unpaid row matched.
	SettlePayment(ctx context.Context, pubkey, paymentHash string, feesPaidMsat int64, preimage string, settledAt time.Time, next Wallet) error

	// ListTransactions returns records matching the filter, newest first.
	ListTransactions(ctx context.Context, filter ListTransactionsFilter) ([]*Transaction, error)

	// GetWallet returns the wallet for pubkey, or nil when absent.
	GetWallet(ctx context.Context, pubkey string) (*Wallet, error)

	ListWallets(ctx context.Context) ([]*Wallet, error)

	// GetFees returns the fee accumulator totals.
	GetFees(ctx context.Context) (*FeeTotals, error)

	// AddMiningFeePaid accumulates into the paid-fee counter.
	AddMiningFeePaid(ctx context.Context, amountMsat int64) error

	// LastInvoiceSettledAt returns the newest incoming settled-at timestamp,
	// or nil when nothing has settled yet. Used as the backfill watermark.
	LastInvoiceSettledAt(ctx context.Context) (*time.Time, error)
}
