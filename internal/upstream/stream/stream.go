// Package stream implements the vendor WebSocket reconnect loop. Its one
// user is the tick vendor's auth+subscribe trade session; the flow vendor's
// lit/off-lit channels are not connected. Grounded on the teacher's
// internal/providers/kraken/websocket.go connection-management shape.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	initialBackoff = 5 * time.Second
	maxBackoff     = 300 * time.Second
)

// Handler processes one decoded message.
type Handler func(json.RawMessage)

// SubscribeBuilder renders the vendor-specific handshake frames for the
// current ticker set, sent in order on connect and again on every reconnect.
// Most vendors need just one subscribe frame; the tick vendor needs an
// auth frame ahead of it (spec §4.A).
type SubscribeBuilder func(tickers []string) [][]byte

// Conn owns a single reconnecting WebSocket session: exponential backoff
// starting at 5s and doubling to a 300s cap, re-sending the subscribe
// message with the current ticker set on every reconnect (spec §4.A).
type Conn struct {
	name    string
	url     string
	mu      sync.Mutex
	tickers []string
	build   SubscribeBuilder
	handler Handler
}

// NewConn builds a reconnecting session. Call Run to start it; Run blocks
// until ctx is cancelled.
func NewConn(name, url string, build SubscribeBuilder, handler Handler) *Conn {
	return &Conn{name: name, url: url, build: build, handler: handler}
}

// SetTickers updates the subscription set; the next reconnect (or an
// explicit Resubscribe) will use it.
func (c *Conn) SetTickers(tickers []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickers = append([]string(nil), tickers...)
}

func (c *Conn) currentTickers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.tickers...)
}

// Run connects, subscribes, and reads messages until ctx is cancelled,
// reconnecting with doubling backoff on any drop.
func (c *Conn) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Warn().Err(err).Str("vendor", c.name).Dur("backoff", backoff).Msg("websocket session ended, reconnecting")
		}

		// A session that stayed up longer than the current backoff is
		// considered recovered; reset to the initial backoff.
		if time.Since(start) > backoff {
			backoff = initialBackoff
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// session runs a single connect-subscribe-read cycle, returning when the
// connection drops or ctx is cancelled.
func (c *Conn) session(ctx context.Context) error {
	dialer := websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.name, err)
	}
	defer conn.Close()

	for _, frame := range c.build(c.currentTickers()) {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return fmt.Errorf("subscribe %s: %w", c.name, err)
		}
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if status, ok := extractStatus(data); ok {
			switch status {
			case "auth_failed":
				log.Error().Str("vendor", c.name).Msg("websocket auth_failed")
				return fmt.Errorf("%s: auth_failed", c.name)
			case "auth_success":
				log.Info().Str("vendor", c.name).Msg("websocket auth_success")
				continue
			}
		}
		c.handler(json.RawMessage(data))
	}
}

// extractStatus pulls a top-level "status" field (tick vendor's
// auth_success/auth_failed events) without decoding the full message shape.
func extractStatus(data []byte) (string, bool) {
	var probe struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", false
	}
	if probe.Status == "" {
		return "", false
	}
	return strings.ToLower(probe.Status), true
}
