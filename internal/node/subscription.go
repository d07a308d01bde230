package node

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	nodedomain "github.com/smallbiznis/nwcd/internal/node/domain"
	"go.uber.org/zap"
)

// subscription owns the single live websocket connection to the node. It
// redials on a fixed delay forever; the node is a co-located process that is
// assumed to come back. Only context cancellation stops the loop.
type subscription struct {
	url       string
	password  string
	delay     time.Duration
	onReady   func()
	onMessage func(nodedomain.Message)
	onRedial  func()
	log       *zap.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// wsURL derives the subscription endpoint from the node's HTTP base URL.
func wsURL(baseURL string) string {
	u := strings.Replace(baseURL, "http://", "ws://", 1)
	u = strings.Replace(u, "https://", "wss://", 1)
	return u + "/websocket"
}

func (s *subscription) Run(ctx context.Context) {
	header := http.Header{}
	// Basic auth with empty username, same as the HTTP API.
	header.Set("Authorization", basicAuth("", s.password))

	for {
		if ctx.Err() != nil {
			return
		}

		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
		if resp != nil {
			resp.Body.Close()
		}
		if err != nil {
			s.log.Warn("node subscription dial failed", zap.Error(err))
			if s.onRedial != nil {
				s.onRedial()
			}
			if !sleepCtx(ctx, s.delay) {
				return
			}
			continue
		}

		s.setConn(conn)
		s.log.Info("node subscription established")
		s.onReady()

		s.readLoop(conn)

		s.setConn(nil)
		conn.Close()

		if s.onRedial != nil {
			s.onRedial()
		}
		if !sleepCtx(ctx, s.delay) {
			return
		}
	}
}

func (s *subscription) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.log.Warn("node subscription closed", zap.Error(err))
			return
		}

		var msg nodedomain.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// No partial recovery on a garbled stream: tear the
			// connection down and redial fresh.
			s.log.Error("tearing down node subscription",
				zap.Error(nodedomain.ErrMalformedMessage),
				zap.String("payload", string(data)),
			)
			return
		}

		s.onMessage(msg)
	}
}

// Close unblocks the read loop during shutdown.
func (s *subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func (s *subscription) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
