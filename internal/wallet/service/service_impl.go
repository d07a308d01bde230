package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/nwcd/internal/config"
	"github.com/smallbiznis/nwcd/internal/fees"
	ledgerdomain "github.com/smallbiznis/nwcd/internal/ledger/domain"
	"github.com/smallbiznis/nwcd/internal/metrics"
	"github.com/smallbiznis/nwcd/internal/node"
	nodedomain "github.com/smallbiznis/nwcd/internal/node/domain"
	walletdomain "github.com/smallbiznis/nwcd/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Ledger  ledgerdomain.Service
	Node    walletdomain.NodeAdapter
	Metrics *metrics.Metrics `optional:"true"`
}

// Service composes the node adapter and the ledger: it owns the incoming
// settlement path (as the adapter's handler) and the outbound payment path
// with its concurrency ceiling.
type Service struct {
	cfg     config.Config
	log     *zap.Logger
	ledger  ledgerdomain.Service
	node    walletdomain.NodeAdapter
	metrics *metrics.Metrics

	// pending bounds simultaneously in-flight outgoing payments.
	pending chan struct{}

	quoteMu sync.RWMutex
	quote   fees.Quote

	listenerMu sync.RWMutex
	onReceive  walletdomain.ReceiveListener
}

func NewService(p Params) *Service {
	maxPending := p.Config.Wallet.MaxPendingPayments
	if maxPending < 1 {
		maxPending = 1
	}
	return &Service{
		cfg:     p.Config,
		log:     p.Log.Named("wallet.service"),
		ledger:  p.Ledger,
		node:    p.Node,
		metrics: p.Metrics,
		pending: make(chan struct{}, maxPending),
	}
}

func (s *Service) MakeInvoice(ctx context.Context, pubkey string, amountMsat int64, description, descriptionHash string) (*ledgerdomain.Transaction, string, error) {
	id, err := s.ledger.CreateInvoice(ctx, pubkey)
	if err != nil {
		return nil, "", err
	}

	invoice, err := s.node.MakeInvoice(ctx, amountMsat, id.String(), description, descriptionHash, s.cfg.Wallet.InvoiceExpirySeconds)
	if err != nil {
		// The stub record is useless without a node invoice behind it.
		if delErr := s.ledger.DeleteInvoice(ctx, id); delErr != nil {
			s.log.Warn("failed to delete stub invoice record",
				zap.Error(delErr),
				zap.String("record_id", id.String()),
			)
		}
		return nil, "", err
	}

	expiresAt := time.Now().UTC().Add(time.Duration(s.cfg.Wallet.InvoiceExpirySeconds) * time.Second)
	err = s.ledger.CompleteInvoice(ctx, id, ledgerdomain.InvoiceDetails{
		PaymentHash:     invoice.PaymentHash,
		Description:     description,
		DescriptionHash: descriptionHash,
		AmountMsat:      amountMsat,
		ExpiresAt:       &expiresAt,
	})
	if err != nil {
		return nil, "", err
	}

	record, err := s.ledger.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return record, invoice.Serialized, nil
}

func (s *Service) PayInvoice(ctx context.Context, pubkey, invoice string, details ledgerdomain.InvoiceDetails) (*walletdomain.PayResult, error) {
	if details.PaymentHash == "" {
		return nil, walletdomain.ErrMissingPaymentHash
	}

	select {
	case s.pending <- struct{}{}:
	default:
		return nil, walletdomain.ErrTooManyPayments
	}
	defer func() { <-s.pending }()

	if _, err := s.ledger.CreatePayment(ctx, pubkey, details); err != nil {
		return nil, err
	}

	resp, err := s.node.PayInvoice(ctx, invoice, details.AmountMsat)
	if err != nil {
		// The attempt failed on the node side; drop the record so a retry
		// starts clean.
		if delErr := s.ledger.DeletePayment(ctx, pubkey, details.PaymentHash); delErr != nil {
			s.log.Warn("failed to delete unsettled payment record",
				zap.Error(delErr),
				zap.String("payment_hash", details.PaymentHash),
			)
		}
		s.metrics.RecordSettlement("outgoing", "error")
		return nil, err
	}

	routingFeeMsat := fees.SatToMsat(resp.RoutingFeeSat)
	current, err := s.ledger.GetWallet(ctx, pubkey)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = &ledgerdomain.Wallet{Pubkey: pubkey}
	}
	next := fees.NextStateForSend(*current, details.AmountMsat, routingFeeMsat)

	if err := s.ledger.SettlePayment(ctx, pubkey, details.PaymentHash, routingFeeMsat, resp.PaymentPreimage, time.Now().UTC(), next); err != nil {
		return nil, err
	}
	if err := s.ledger.AddMiningFeePaid(ctx, routingFeeMsat); err != nil {
		s.log.Warn("failed to accumulate paid fees", zap.Error(err))
	}
	s.metrics.RecordSettlement("outgoing", "settled")

	return &walletdomain.PayResult{
		PaymentHash:  resp.PaymentHash,
		Preimage:     resp.PaymentPreimage,
		FeesPaidMsat: routingFeeMsat,
	}, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter ledgerdomain.ListTransactionsFilter) ([]*ledgerdomain.Transaction, error) {
	return s.ledger.ListTransactions(ctx, filter)
}

func (s *Service) ListWallets(ctx context.Context) ([]*ledgerdomain.Wallet, error) {
	return s.ledger.ListWallets(ctx)
}

func (s *Service) GetFees(ctx context.Context) (*ledgerdomain.FeeTotals, error) {
	return s.ledger.GetFees(ctx)
}

func (s *Service) LiquidityQuote() fees.Quote {
	s.quoteMu.RLock()
	defer s.quoteMu.RUnlock()
	return s.quote
}

func (s *Service) SetReceiveListener(fn walletdomain.ReceiveListener) {
	s.listenerMu.Lock()
	s.onReceive = fn
	s.listenerMu.Unlock()
}

// NodeReady backfills the downtime gap from the settled-at watermark before
// live events are processed.
func (s *Service) NodeReady(ctx context.Context) {
	watermark, err := s.ledger.LastInvoiceSettledAt(ctx)
	if err != nil {
		s.log.Error("watermark lookup failed", zap.Error(err))
		return
	}

	var fromSeconds int64
	if watermark != nil {
		fromSeconds = watermark.Unix()
	}
	if err := s.node.SyncPaymentsSince(ctx, fromSeconds); err != nil {
		s.log.Error("payment backfill failed",
			zap.Error(err),
			zap.Int64("from_seconds", fromSeconds),
		)
	}
}

// FeeQuote stores the node's latest liquidity fee estimate.
func (s *Service) FeeQuote(quote nodedomain.LiquidityFees) {
	s.quoteMu.Lock()
	s.quote = fees.Quote{
		MiningFeeSat:  quote.MiningFeeSat,
		ServiceFeeSat: quote.ServiceFeeSat,
	}
	s.quoteMu.Unlock()
}

// PaymentReceived reconciles one settled incoming payment: resolve the record
// by external id, compute the complete next wallet state, and drive the
// ledger's settlement transaction. Duplicate notifications are absorbed by
// the ledger's conditional update.
func (s *Service) PaymentReceived(ctx context.Context, evt node.PaymentEvent) error {
	id, err := snowflake.ParseString(evt.ExternalID)
	if err != nil {
		s.metrics.RecordSettlement("incoming", "error")
		return fmt.Errorf("parse external id %q: %w", evt.ExternalID, err)
	}

	record, err := s.ledger.GetInvoiceByID(ctx, id)
	if err != nil {
		s.metrics.RecordSettlement("incoming", "error")
		return err
	}
	if record == nil {
		s.metrics.RecordSettlement("incoming", "error")
		return fmt.Errorf("incoming payment %s: %w", evt.PaymentHash, ledgerdomain.ErrNotFound)
	}

	current, err := s.ledger.GetWallet(ctx, record.Pubkey)
	if err != nil {
		s.metrics.RecordSettlement("incoming", "error")
		return err
	}
	if current == nil {
		current = &ledgerdomain.Wallet{Pubkey: record.Pubkey}
	}
	next := fees.NextStateForReceive(*current, evt.AmountMsat, evt.LiquidityFeeMsat)

	settled, err := s.ledger.SettleInvoice(ctx, record.Pubkey, id, time.Unix(evt.SettledAt, 0), next, evt.LiquidityFeeMsat)
	if err != nil {
		s.metrics.RecordSettlement("incoming", "error")
		return err
	}
	if !settled {
		s.log.Debug("duplicate settlement suppressed",
			zap.String("payment_hash", evt.PaymentHash),
			zap.String("record_id", id.String()),
		)
		s.metrics.RecordSettlement("incoming", "duplicate")
		return nil
	}
	s.metrics.RecordSettlement("incoming", "settled")

	s.listenerMu.RLock()
	listener := s.onReceive
	s.listenerMu.RUnlock()
	if listener != nil {
		fresh, err := s.ledger.GetInvoiceByID(ctx, id)
		if err == nil && fresh != nil {
			listener(record.Pubkey, fresh)
		}
	}
	return nil
}
