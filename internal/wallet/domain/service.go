// Package domain defines the custodial wallet service contract consumed by
// the NWC request dispatch layer.
package domain

import (
	"context"

	"github.com/smallbiznis/nwcd/internal/fees"
	ledgerdomain "github.com/smallbiznis/nwcd/internal/ledger/domain"
	nodedomain "github.com/smallbiznis/nwcd/internal/node/domain"
)

// NodeAdapter is the slice of the node adapter the wallet service drives.
type NodeAdapter interface {
	MakeInvoice(ctx context.Context, amountMsat int64, externalID, description, descriptionHash string, expirySeconds int64) (*nodedomain.Invoice, error)
	PayInvoice(ctx context.Context, invoice string, amountMsat int64) (*nodedomain.PayResponse, error)
	SyncPaymentsSince(ctx context.Context, fromSeconds int64) error
}

// PayResult is the outcome of a settled outbound payment.
type PayResult struct {
	PaymentHash  string
	Preimage     string
	FeesPaidMsat int64
}

// ReceiveListener is invoked once per newly settled incoming payment, after
// the ledger transaction committed.
type ReceiveListener func(pubkey string, record *ledgerdomain.Transaction)

// Service is the custodial wallet surface: invoice creation, outbound
// payments and ledger reads, per client public key.
type Service interface {
	// MakeInvoice creates a ledger record and the matching node invoice.
	// The half-created record is removed when the node call fails.
	MakeInvoice(ctx context.Context, pubkey string, amountMsat int64, description, descriptionHash string) (*ledgerdomain.Transaction, string, error)

	// PayInvoice pays a BOLT11 invoice on behalf of the client. The caller
	// supplies the decoded invoice details; the number of simultaneously
	// in-flight payments is capped, excess requests fail with
	// ErrTooManyPayments.
	PayInvoice(ctx context.Context, pubkey, invoice string, details ledgerdomain.InvoiceDetails) (*PayResult, error)

	ListTransactions(ctx context.Context, filter ledgerdomain.ListTransactionsFilter) ([]*ledgerdomain.Transaction, error)
	ListWallets(ctx context.Context) ([]*ledgerdomain.Wallet, error)
	GetFees(ctx context.Context) (*ledgerdomain.FeeTotals, error)

	// LiquidityQuote returns the node's latest liquidity fee estimate as a
	// fee policy quote.
	LiquidityQuote() fees.Quote

	// SetReceiveListener registers the payment-received callback.
	SetReceiveListener(fn ReceiveListener)
}
