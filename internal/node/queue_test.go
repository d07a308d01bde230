package node

import (
	"errors"
	"sync"
	"testing"

	nodedomain "github.com/smallbiznis/nwcd/internal/node/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func payment(hash string) nodedomain.IncomingPayment {
	return nodedomain.IncomingPayment{PaymentHash: hash, IsPaid: true}
}

func TestQueueProcessesStrictlyInOrder(t *testing.T) {
	var mu sync.Mutex
	var processed []string

	started := make(chan struct{})
	release := make(chan struct{})

	q := newQueue(zap.NewNop(), func(p nodedomain.IncomingPayment) error {
		if p.PaymentHash == "h1" {
			close(started)
			<-release
		}
		mu.Lock()
		processed = append(processed, p.PaymentHash)
		mu.Unlock()
		return nil
	}, nil)

	done := make(chan struct{})
	go func() {
		q.Enqueue(payment("h1"))
		close(done)
	}()

	// h1 is mid-flight; these observe a non-empty queue and only append.
	<-started
	q.Enqueue(payment("h2"))
	q.Enqueue(payment("h3"))

	close(release)
	<-done

	assert.Equal(t, []string{"h1", "h2", "h3"}, processed)
}

func TestQueueDropsFailedEntryAndContinues(t *testing.T) {
	var processed []string
	var dropped int

	q := newQueue(zap.NewNop(), func(p nodedomain.IncomingPayment) error {
		processed = append(processed, p.PaymentHash)
		if p.PaymentHash == "bad" {
			return errors.New("settlement rejected")
		}
		return nil
	}, func() { dropped++ })

	// Each push lands on an empty queue, so each drains synchronously.
	q.Enqueue(payment("h1"))
	q.Enqueue(payment("bad"))
	q.Enqueue(payment("h3"))

	assert.Equal(t, []string{"h1", "bad", "h3"}, processed)
	assert.Equal(t, 1, dropped)
}
