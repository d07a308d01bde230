package node

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	nodedomain "github.com/smallbiznis/nwcd/internal/node/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubscriptionReadsAndRedials(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var conns int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Empty(t, user)
		assert.Equal(t, "hunter2", pass)

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		n := atomic.AddInt32(&conns, 1)
		if n == 1 {
			require.NoError(t, conn.WriteJSON(nodedomain.Message{
				Type:        nodedomain.MessageTypePaymentReceived,
				PaymentHash: "first",
			}))
		} else {
			require.NoError(t, conn.WriteJSON(nodedomain.Message{
				Type:        nodedomain.MessageTypePaymentReceived,
				PaymentHash: "second",
			}))
		}
		// Remote-initiated close; the subscription must redial.
		conn.Close()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var hashes []string
	var ready int

	sub := &subscription{
		url:      wsURL(srv.URL),
		password: "hunter2",
		delay:    10 * time.Millisecond,
		log:      zap.NewNop(),
		onReady: func() {
			mu.Lock()
			ready++
			mu.Unlock()
		},
		onMessage: func(msg nodedomain.Message) {
			mu.Lock()
			hashes = append(hashes, msg.PaymentHash)
			if len(hashes) == 2 {
				cancel()
			}
			mu.Unlock()
		},
	}

	done := make(chan struct{})
	go func() {
		sub.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, hashes)
	assert.GreaterOrEqual(t, ready, 2)
}

func TestSubscriptionTearsDownOnMalformedMessage(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var conns int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		if atomic.AddInt32(&conns, 1) == 1 {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
			// Keep the connection open; the client side must drop it.
			time.Sleep(time.Second)
		} else {
			require.NoError(t, conn.WriteJSON(nodedomain.Message{
				Type:        nodedomain.MessageTypePaymentReceived,
				PaymentHash: "after-reset",
			}))
		}
		conn.Close()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var hashes []string

	sub := &subscription{
		url:      wsURL(srv.URL),
		password: "hunter2",
		delay:    10 * time.Millisecond,
		log:      zap.NewNop(),
		onReady:  func() {},
		onMessage: func(msg nodedomain.Message) {
			mu.Lock()
			hashes = append(hashes, msg.PaymentHash)
			mu.Unlock()
			cancel()
		},
	}

	done := make(chan struct{})
	go func() {
		sub.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"after-reset"}, hashes)
}
