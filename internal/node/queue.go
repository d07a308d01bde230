package node

import (
	"sync"

	nodedomain "github.com/smallbiznis/nwcd/internal/node/domain"
	"go.uber.org/zap"
)

// queue serializes incoming-payment notifications into a strict one-at-a-time
// pipeline. The goroutine that pushes into an empty queue becomes the drainer;
// pushes into a non-empty queue only append, so at most one settlement driven
// from the notification path is in flight at any time.
type queue struct {
	mu      sync.Mutex
	entries []nodedomain.IncomingPayment

	process func(nodedomain.IncomingPayment) error
	dropped func()
	log     *zap.Logger
}

func newQueue(log *zap.Logger, process func(nodedomain.IncomingPayment) error, dropped func()) *queue {
	return &queue{
		process: process,
		dropped: dropped,
		log:     log,
	}
}

func (q *queue) Enqueue(payment nodedomain.IncomingPayment) {
	q.mu.Lock()
	q.entries = append(q.entries, payment)
	drainer := len(q.entries) == 1
	q.mu.Unlock()

	if drainer {
		q.drain()
	}
}

func (q *queue) drain() {
	for {
		q.mu.Lock()
		entry := q.entries[0]
		q.mu.Unlock()

		// A failed entry is logged and dropped; the ledger's conditional
		// update is the source of truth for what actually got applied, so
		// the queue keeps moving instead of retrying.
		if err := q.process(entry); err != nil {
			q.log.Error("dropping incoming payment notification",
				zap.Error(err),
				zap.String("payment_hash", entry.PaymentHash),
				zap.String("external_id", entry.ExternalID),
			)
			if q.dropped != nil {
				q.dropped()
			}
		}

		q.mu.Lock()
		q.entries = q.entries[1:]
		empty := len(q.entries) == 0
		q.mu.Unlock()

		if empty {
			return
		}
	}
}
