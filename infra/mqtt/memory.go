package mqtt

import (
	"sync"

	coremqtt "github.com/kilianp07/invsched/core/mqtt"
)

// MemoryTransport is an in-process Transport delivering messages
// synchronously to matching subscribers. It backs tests and local runs
// without a broker.
type MemoryTransport struct {
	mu     sync.RWMutex
	subs   []memorySub
	sent   []coremqtt.Message
	closed bool
}

type memorySub struct {
	filter  string
	handler coremqtt.Handler
}

// NewMemoryTransport returns an empty transport.
func NewMemoryTransport() *MemoryTransport { return &MemoryTransport{} }

// Publish records the message and delivers it to every matching subscriber.
func (m *MemoryTransport) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return coremqtt.ErrClosed
	}
	msg := coremqtt.Message{Topic: topic, Payload: append([]byte(nil), payload...)}
	m.sent = append(m.sent, msg)
	var targets []coremqtt.Handler
	for _, s := range m.subs {
		if coremqtt.Match(s.filter, topic) {
			targets = append(targets, s.handler)
		}
	}
	m.mu.Unlock()
	for _, h := range targets {
		h(msg)
	}
	return nil
}

// Subscribe registers handler for topic.
func (m *MemoryTransport) Subscribe(topic string, handler coremqtt.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return coremqtt.ErrClosed
	}
	m.subs = append(m.subs, memorySub{filter: topic, handler: handler})
	return nil
}

// Sent returns a copy of every published message.
func (m *MemoryTransport) Sent() []coremqtt.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]coremqtt.Message(nil), m.sent...)
}

// HasSubscription reports whether filter has been subscribed.
func (m *MemoryTransport) HasSubscription(filter string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subs {
		if s.filter == filter {
			return true
		}
	}
	return false
}

// Close stops delivery.
func (m *MemoryTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.subs = nil
	return nil
}
