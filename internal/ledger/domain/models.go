// Package domain contains persistence models for the settlement ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Transaction is one ledger row per invoice or outbound payment. All amounts
// are millisatoshi.
type Transaction struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	Pubkey          string       `gorm:"type:text;not null;index;index:idx_transactions_list,priority:1;index:idx_transactions_hash,priority:1"`
	IsOutgoing      bool         `gorm:"not null;default:false;index:idx_transactions_list,priority:4"`
	IsPaid          bool         `gorm:"not null;default:false;index:idx_transactions_list,priority:3"`
	PaymentHash     string       `gorm:"type:text;index:idx_transactions_hash,priority:2"`
	Description     string       `gorm:"type:text"`
	DescriptionHash string       `gorm:"type:text"`
	Preimage        string       `gorm:"type:text"`
	AmountMsat      int64        `gorm:"column:amount;not null;default:0"`
	FeesPaidMsat    int64        `gorm:"column:fees_paid;not null;default:0"`
	CreatedAt       time.Time    `gorm:"not null;index;index:idx_transactions_list,priority:2"`
	ExpiresAt       *time.Time   `gorm:""`
	SettledAt       *time.Time   `gorm:"index"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }

// Wallet is the custodial state for one client public key. Settlements upsert
// the whole row; callers always supply the complete next state.
type Wallet struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	Pubkey          string       `gorm:"type:text;not null;uniqueIndex"`
	BalanceMsat     int64        `gorm:"column:balance;not null;default:0"`
	ChannelSizeMsat int64        `gorm:"column:channel_size;not null;default:0"`
	FeeCreditMsat   int64        `gorm:"column:fee_credit;not null;default:0"`
}

// TableName sets the database table name.
func (Wallet) TableName() string { return "wallets" }

// FeeTotalsID is the fixed identity of the singleton fee accumulator row.
const FeeTotalsID int64 = 1

// FeeTotals accumulates mining fees across the lifetime of the service. Both
// counters only ever grow; the service interface exposes no setter.
type FeeTotals struct {
	ID                    int64 `gorm:"primaryKey"`
	MiningFeePaidMsat     int64 `gorm:"column:mining_fee_paid;not null;default:0"`
	MiningFeeReceivedMsat int64 `gorm:"column:mining_fee_received;not null;default:0"`
}

// TableName sets the database table name.
func (FeeTotals) TableName() string { return "fees" }

// InvoiceDetails carries the node-reported description of an invoice or an
// outbound payment request.
type InvoiceDetails struct {
	PaymentHash     string
	Description     string
	DescriptionHash string
	AmountMsat      int64
	ExpiresAt       *time.Time
}

// ListTransactionsFilter narrows ListTransactions results. Nil pointer fields
// leave the corresponding dimension unfiltered.
type ListTransactionsFilter struct {
	Pubkey   string
	From     *time.Time
	Until    *time.Time
	Unpaid   *bool
	Outgoing *bool
	Limit    int
	Offset   int
}
