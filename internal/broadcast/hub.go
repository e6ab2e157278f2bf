// Package broadcast is the read-only subscriber boundary of spec §4.J: it
// accepts WebSocket subscribers, sends each one the current full snapshot
// on connect, then pushes a full_state message after every orchestrator
// cycle and an alert message whenever the alert engine emits. It carries no
// business logic of its own. Grounded on the teacher's
// internal/interfaces/http server (gorilla/mux router + middleware chain,
// NewServer(config) shape), generalized from its read-only REST handlers to
// a push-based WebSocket registry via gorilla/websocket.
package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/state"
)

// MessageType tags the two outbound frame shapes (spec §4.J).
type MessageType string

const (
	FullState MessageType = "full_state"
	AlertMsg  MessageType = "alert"
)

// Message is the envelope written to every subscriber connection, shaped to
// the two wire messages of spec §6 downstream: {type:"full_state",
// data:<state>} and {type:"alert", data:<alert>}. Snapshot/Alert are Go-side
// accessors over the same "data" field; exactly one is set per message.
type Message struct {
	Type MessageType

	Snapshot *state.Snapshot
	Alert    *model.Alert
}

// MarshalJSON flattens Snapshot/Alert into the single wire "data" field.
func (m Message) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type MessageType `json:"type"`
		Data any         `json:"data"`
	}
	w := wire{Type: m.Type}
	if m.Snapshot != nil {
		w.Data = m.Snapshot
	} else if m.Alert != nil {
		w.Data = m.Alert
	}
	return json.Marshal(w)
}

// UnmarshalJSON reconstructs Snapshot or Alert from the wire "data" field
// based on Type; used by tests reading frames back off the wire.
func (m *Message) UnmarshalJSON(b []byte) error {
	var w struct {
		Type MessageType     `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	m.Type = w.Type
	switch w.Type {
	case FullState:
		var snap state.Snapshot
		if err := json.Unmarshal(w.Data, &snap); err != nil {
			return err
		}
		m.Snapshot = &snap
	case AlertMsg:
		var a model.Alert
		if err := json.Unmarshal(w.Data, &a); err != nil {
			return err
		}
		m.Alert = &a
	}
	return nil
}

// subscriber is one connected WebSocket client with its own outbound queue,
// so a slow reader never blocks the hub's broadcast loop.
type subscriber struct {
	conn *websocket.Conn
	send chan Message
}

const subscriberQueueDepth = 32

// Hub is the subscriber registry. Safe for concurrent use; Register is
// called from each accepted connection's handler goroutine, Notify and
// NotifyAlerts from the orchestrator after each cycle or alert batch.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// NewHub builds an empty subscriber registry.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Register adds conn as a subscriber, immediately queuing a full_state
// snapshot (spec §4.J "on subscribe, send current full snapshot"), and
// starts the per-connection writer goroutine. Callers should call the
// returned cancel func when the connection closes.
func (h *Hub) Register(conn *websocket.Conn, initial state.Snapshot) (cancel func()) {
	sub := &subscriber{conn: conn, send: make(chan Message, subscriberQueueDepth)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	sub.send <- Message{Type: FullState, Snapshot: &initial}

	done := make(chan struct{})
	go h.writeLoop(sub, done)

	return func() {
		close(done)
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		conn.Close()
	}
}

func (h *Hub) writeLoop(sub *subscriber, done chan struct{}) {
	for {
		select {
		case msg := <-sub.send:
			if err := sub.conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Msg("broadcast subscriber write failed, dropping")
				return
			}
		case <-done:
			return
		}
	}
}

// Notify implements orchestrator.Notifier: push a full_state message to
// every subscriber (spec §4.D step 9, §4.J "after each cycle").
func (h *Hub) Notify(snap state.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := Message{Type: FullState, Snapshot: &snap}
	for sub := range h.subs {
		select {
		case sub.send <- msg:
		default:
			log.Warn().Msg("broadcast subscriber queue full, dropping full_state frame")
		}
	}
}

// NotifyAlerts implements orchestrator.Notifier: push one alert message per
// fired alert to every subscriber (spec §4.J "on alert-engine emissions,
// push alert messages").
func (h *Hub) NotifyAlerts(fired []model.Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range fired {
		msg := Message{Type: AlertMsg, Alert: &fired[i]}
		for sub := range h.subs {
			select {
			case sub.send <- msg:
			default:
				log.Warn().Msg("broadcast subscriber queue full, dropping alert frame")
			}
		}
	}
}

// SubscriberCount reports the current connection count, for health/metrics.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
