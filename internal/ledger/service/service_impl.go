package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/nwcd/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
	}
}

// errAlreadySettled aborts the settle transaction when the conditional paid
// update matched no rows. Translated to a false result, never surfaced.
var errAlreadySettled = errors.New("already settled")

func (s *Service) CreateInvoice(ctx context.Context, pubkey string) (snowflake.ID, error) {
	id := s.genID.Generate()
	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO transactions (id, pubkey, is_outgoing, is_paid, amount, fees_paid, created_at)
		 VALUES (?, ?, ?, ?, 0, 0, ?)`,
		id,
		pubkey,
		false,
		false,
		time.Now().UTC(),
	).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Service) CompleteInvoice(ctx context.Context, id snowflake.ID, details ledgerdomain.InvoiceDetails) error {
	result := s.db.WithContext(ctx).Exec(
		`UPDATE transactions
		 SET payment_hash = ?, description = ?, description_hash = ?, amount = ?, expires_at = ?
		 WHERE id = ? AND is_outgoing = ?`,
		details.PaymentHash,
		details.Description,
		details.DescriptionHash,
		details.AmountMsat,
		details.ExpiresAt,
		id,
		false,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledgerdomain.ErrNotFound
	}
	return nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id snowflake.ID) error {
	// Settled records are immutable history; deleting one is a silent no-op.
	return s.db.WithContext(ctx).Exec(
		`DELETE FROM transactions WHERE id = ? AND is_outgoing = ? AND is_paid = ?`,
		id,
		false,
		false,
	).Error
}

func (s *Service) GetInvoiceByID(ctx context.Context, id snowflake.ID) (*ledgerdomain.Transaction, error) {
	var record ledgerdomain.Transaction
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM transactions WHERE id = ? AND is_outgoing = ?`,
		id,
		false,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (s *Service) SettleInvoice(
	ctx context.Context,
	pubkey string,
	id snowflake.ID,
	settledAt time.Time,
	next ledgerdomain.Wallet,
	liquidityFeeMsat int64,
) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner string
		if err := tx.Raw(
			`SELECT pubkey FROM transactions WHERE id = ? AND is_outgoing = ?`,
			id,
			false,
		).Scan(&owner).Error; err != nil {
			return err
		}
		if owner == "" {
			return ledgerdomain.ErrNotFound
		}
		if owner != pubkey {
			return ledgerdomain.ErrUnauthorized
		}

		// The conditional update is the duplicate-suppression mechanism:
		// a concurrent or repeated settlement matches zero rows here and the
		// whole transaction aborts.
		result := tx.Exec(
			`UPDATE transactions SET is_paid = ?, settled_at = ? WHERE id = ? AND is_paid = ?`,
			true,
			settledAt.UTC(),
			id,
			false,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errAlreadySettled
		}

		if err := s.addMiningFeeReceived(tx, liquidityFeeMsat); err != nil {
			return err
		}

		return s.upsertWallet(tx, next)
	})
	if errors.Is(err, errAlreadySettled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) CreatePayment(ctx context.Context, pubkey string, details ledgerdomain.InvoiceDetails) (snowflake.ID, error) {
	id := s.genID.Generate()
	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO transactions (id, pubkey, is_outgoing, is_paid, payment_hash, description, description_hash, amount, fees_paid, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		id,
		pubkey,
		true,
		false,
		details.PaymentHash,
		details.Description,
		details.DescriptionHash,
		details.AmountMsat,
		time.Now().UTC(),
	).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Service) DeletePayment(ctx context.Context, pubkey, paymentHash string) error {
	return s.db.WithContext(ctx).Exec(
		`DELETE FROM transactions WHERE pubkey = ? AND payment_hash = ? AND is_outgoing = ?`,
		pubkey,
		paymentHash,
		true,
	).Error
}

func (s *Service) SettlePayment(
	ctx context.Context,
	pubkey string,
	paymentHash string,
	feesPaidMsat int64,
	preimage string,
	settledAt time.Time,
	next ledgerdomain.Wallet,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			`UPDATE transactions
			 SET is_paid = ?, fees_paid = ?, preimage = ?, settled_at = ?
			 WHERE pubkey = ? AND payment_hash = ? AND is_outgoing = ? AND is_paid = ?`,
			true,
			feesPaidMsat,
			preimage,
			settledAt.UTC(),
			pubkey,
			paymentHash,
			true,
			false,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ledgerdomain.ErrNotFound
		}

		return s.upsertWallet(tx, next)
	})
}

func (s *Service) ListTransactions(ctx context.Context, filter ledgerdomain.ListTransactionsFilter) ([]*ledgerdomain.Transaction, error) {
	var records []*ledgerdomain.Transaction
	stmt := s.db.WithContext(ctx).Model(&ledgerdomain.Transaction{})
	if filter.Pubkey != "" {
		stmt = stmt.Where("pubkey = ?", filter.Pubkey)
	}
	if filter.From != nil {
		stmt = stmt.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.Until != nil {
		stmt = stmt.Where("created_at <= ?", filter.Until.UTC())
	}
	if filter.Unpaid != nil {
		stmt = stmt.Where("is_paid = ?", !*filter.Unpaid)
	}
	if filter.Outgoing != nil {
		stmt = stmt.Where("is_outgoing = ?", *filter.Outgoing)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		stmt = stmt.Offset(filter.Offset)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) GetWallet(ctx context.Context, pubkey string) (*ledgerdomain.Wallet, error) {
	var wallet ledgerdomain.Wallet
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM wallets WHERE pubkey = ?`,
		pubkey,
	).Scan(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return nil, nil
	}
	return &wallet, nil
}

func (s *Service) ListWallets(ctx context.Context) ([]*ledgerdomain.Wallet, error) {
	var wallets []*ledgerdomain.Wallet
	err := s.db.WithContext(ctx).
		Model(&ledgerdomain.Wallet{}).
		Order("pubkey asc").
		Find(&wallets).Error
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

func (s *Service) GetFees(ctx context.Context) (*ledgerdomain.FeeTotals, error) {
	var totals ledgerdomain.FeeTotals
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM fees WHERE id = ?`,
		ledgerdomain.FeeTotalsID,
	).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	totals.ID = ledgerdomain.FeeTotalsID
	return &totals, nil
}

func (s *Service) AddMiningFeePaid(ctx context.Context, amountMsat int64) error {
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO fees (id, mining_fee_paid, mining_fee_received)
		 VALUES (?, ?, 0)
		 ON CONFLICT (id) DO UPDATE SET mining_fee_paid = fees.mining_fee_paid + excluded.mining_fee_paid`,
		ledgerdomain.FeeTotalsID,
		amountMsat,
	).Error
}

func (s *Service) LastInvoiceSettledAt(ctx context.Context) (*time.Time, error) {
	var record ledgerdomain.Transaction
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM transactions
		 WHERE is_outgoing = ? AND is_paid = ? AND settled_at IS NOT NULL
		 ORDER BY settled_at DESC LIMIT 1`,
		false,
		true,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return record.SettledAt, nil
}

func (s *Service) addMiningFeeReceived(tx *gorm.DB, amountMsat int64) error {
	return tx.Exec(
		`INSERT INTO fees (id, mining_fee_paid, mining_fee_received)
		 VALUES (?, 0, ?)
		 ON CONFLICT (id) DO UPDATE SET mining_fee_received = fees.mining_fee_received + excluded.mining_fee_received`,
		ledgerdomain.FeeTotalsID,
		amountMsat,
	).Error
}

func (s *Service) upsertWallet(tx *gorm.DB, next ledgerdomain.Wallet) error {
	return tx.Exec(
		`INSERT INTO wallets (id, pubkey, balance, channel_size, fee_credit)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (pubkey) DO UPDATE SET
		   balance = excluded.balance,
		   channel_size = excluded.channel_size,
		   fee_credit = excluded.fee_credit`,
		s.genID.Generate(),
		next.Pubkey,
		next.BalanceMsat,
		next.ChannelSizeMsat,
		next.FeeCreditMsat,
	).Error
}
