// Package node adapts the Lightning node's HTTP API and websocket event
// stream into an ordered sequence of settlement events plus plain
// request/response operations.
package node

import (
	"context"
	"sort"
	"time"

	"github.com/smallbiznis/nwcd/internal/config"
	"github.com/smallbiznis/nwcd/internal/fees"
	"github.com/smallbiznis/nwcd/internal/metrics"
	nodedomain "github.com/smallbiznis/nwcd/internal/node/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// PaymentEvent is a normalized incoming settlement, delivered to the handler
// exactly once per drained queue entry. Amounts are millisatoshi, SettledAt is
// whole seconds.
type PaymentEvent struct {
	PaymentHash      string
	ExternalID       string
	SettledAt        int64
	AmountMsat       int64
	LiquidityFeeMsat int64
}

// Handler receives adapter callbacks. Registered before the adapter starts.
type Handler interface {
	// NodeReady fires on every (re)established subscription, before live
	// events flow. Used to backfill the downtime gap.
	NodeReady(ctx context.Context)

	// FeeQuote delivers each successful liquidity fee estimate.
	FeeQuote(quote nodedomain.LiquidityFees)

	// PaymentReceived reconciles one settled incoming payment. An error
	// drops the event; the ledger's conditional update owns correctness.
	PaymentReceived(ctx context.Context, evt PaymentEvent) error
}

type AdapterParams struct {
	fx.In

	Client  *Client
	Config  config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type Adapter struct {
	client  *Client
	cfg     config.Config
	log     *zap.Logger
	metrics *metrics.Metrics

	queue   *queue
	sub     *subscription
	handler Handler

	runCtx context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAdapter(p AdapterParams) *Adapter {
	a := &Adapter{
		client:  p.Client,
		cfg:     p.Config,
		log:     p.Log.Named("node.adapter"),
		metrics: p.Metrics,
		runCtx:  context.Background(),
	}
	a.queue = newQueue(a.log, a.processQueued, a.metrics.RecordDroppedNotification)
	a.sub = &subscription{
		url:       wsURL(p.Config.Node.BaseURL),
		password:  p.Config.Node.Password,
		delay:     p.Config.Node.ReconnectDelay,
		onReady:   a.handleReady,
		onMessage: a.handleMessage,
		onRedial:  a.metrics.RecordNodeReconnect,
		log:       a.log,
	}
	return a
}

// SetHandler registers the settlement handler. Must happen before Start.
func (a *Adapter) SetHandler(h Handler) {
	a.handler = h
}

// Start launches the subscription and the fee estimate loop.
func (a *Adapter) Start() {
	a.runCtx, a.cancel = context.WithCancel(context.Background())
	a.done = make(chan struct{})

	go func() {
		a.sub.Run(a.runCtx)
		close(a.done)
	}()
	go a.runFeeEstimateLoop(a.runCtx)
}

// Stop cancels the background loops and closes the live connection.
func (a *Adapter) Stop(ctx context.Context) error {
	if a.cancel == nil {
		return nil
	}
	a.cancel()
	a.sub.Close()
	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// MakeInvoice creates an invoice on the node for a ledger amount, rounding the
// satoshi request up so the invoice never undershoots the ledger.
func (a *Adapter) MakeInvoice(ctx context.Context, amountMsat int64, externalID, description, descriptionHash string, expirySeconds int64) (*nodedomain.Invoice, error) {
	invoice, err := a.client.CreateInvoice(ctx, nodedomain.CreateInvoiceRequest{
		AmountSat:       fees.MsatToSatCeil(amountMsat),
		ExternalID:      externalID,
		ExpirySeconds:   expirySeconds,
		Description:     description,
		DescriptionHash: descriptionHash,
	})
	if err != nil {
		a.metrics.RecordNodeCallError("createinvoice")
		return nil, err
	}
	return invoice, nil
}

// PayInvoice executes an outbound payment. amountMsat overrides the invoice
// amount when non-zero.
func (a *Adapter) PayInvoice(ctx context.Context, invoice string, amountMsat int64) (*nodedomain.PayResponse, error) {
	var amountSat int64
	if amountMsat > 0 {
		amountSat = fees.MsatToSatCeil(amountMsat)
	}
	resp, err := a.client.PayInvoice(ctx, invoice, amountSat)
	if err != nil {
		a.metrics.RecordNodeCallError("payinvoice")
		return nil, err
	}
	return resp, nil
}

// SyncPaymentsSince feeds every settled incoming payment after the watermark
// through the same queue as live events, oldest first, so historical gaps
// reconcile in chronological order.
func (a *Adapter) SyncPaymentsSince(ctx context.Context, fromSeconds int64) error {
	payments, err := a.client.ListIncomingPayments(ctx, fromSeconds*1000)
	if err != nil {
		a.metrics.RecordNodeCallError("listincoming")
		return err
	}

	// The node reports newest first; reconcile oldest first.
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CompletedAt < payments[j].CompletedAt
	})
	for _, payment := range payments {
		if !payment.IsPaid {
			continue
		}
		a.queue.Enqueue(payment)
	}
	return nil
}

func (a *Adapter) handleReady() {
	a.handler.NodeReady(a.runCtx)
}

func (a *Adapter) handleMessage(msg nodedomain.Message) {
	if msg.Type != nodedomain.MessageTypePaymentReceived || msg.PaymentHash == "" {
		return
	}

	payment, err := a.client.GetIncomingPayment(a.runCtx, msg.PaymentHash)
	if err != nil {
		a.metrics.RecordNodeCallError("getincoming")
		a.log.Error("incoming payment lookup failed",
			zap.Error(err),
			zap.String("payment_hash", msg.PaymentHash),
		)
		return
	}
	a.queue.Enqueue(*payment)
}

func (a *Adapter) processQueued(payment nodedomain.IncomingPayment) error {
	evt := PaymentEvent{
		PaymentHash:      payment.PaymentHash,
		ExternalID:       payment.ExternalID,
		SettledAt:        payment.CompletedAt / 1000,
		AmountMsat:       fees.SatToMsat(payment.ReceivedSat),
		LiquidityFeeMsat: fees.SatToMsat(payment.FeesSat),
	}
	return a.handler.PaymentReceived(a.runCtx, evt)
}

func (a *Adapter) runFeeEstimateLoop(ctx context.Context) {
	for {
		delay := a.cfg.Node.FeeRetryInterval
		quote, err := a.client.EstimateLiquidityFees(ctx, a.cfg.Node.FeeEstimateAmountSat)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.metrics.RecordNodeCallError("estimatefees")
			a.log.Warn("liquidity fee estimate failed", zap.Error(err))
		} else {
			a.handler.FeeQuote(*quote)
			delay = a.cfg.Node.FeePollInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
