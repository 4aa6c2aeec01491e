package hub

import (
	"sync"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/internal/metrics"
)

type BackpressurePolicy int

const (
	PolicyDrop BackpressurePolicy = iota
	PolicyKick
)

// Subscriber receives the frames whose identifiers pass Accept.
type Subscriber struct {
	Accept    canaddr.Filter
	Out       chan canaddr.Frame
	Closed    chan struct{}
	closeOnce sync.Once
}

// NewSubscriber creates a subscriber with the given acceptance filter
// and output buffer.
func NewSubscriber(accept canaddr.Filter, buffer int) *Subscriber {
	if buffer < 1 {
		buffer = 1
	}
	return &Subscriber{
		Accept: accept,
		Out:    make(chan canaddr.Frame, buffer),
		Closed: make(chan struct{}),
	}
}

// Close signals the subscriber is closed (idempotent).
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.Closed)
	})
}

// Hub fans incoming frames out to subscribers, screening each frame's
// identifier against the subscriber's filter before delivery. Slow
// subscribers are handled per the backpressure policy: frames are
// dropped, or the subscriber is kicked.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	Policy BackpressurePolicy
}

// New creates a Hub with default settings.
func New() *Hub { return &Hub{subs: make(map[*Subscriber]struct{})} }

// Add registers a subscriber with the hub.
func (h *Hub) Add(s *Subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	cur := len(h.subs)
	h.mu.Unlock()
	metrics.SetHubSubs(cur)
}

// Remove unregisters a subscriber; safe to call multiple times.
func (h *Hub) Remove(s *Subscriber) {
	h.mu.Lock()
	_, existed := h.subs[s]
	if existed {
		delete(h.subs, s)
	}
	cur := len(h.subs)
	h.mu.Unlock()
	select {
	case <-s.Closed:
	default:
		s.Close()
	}
	metrics.SetHubSubs(cur)
}

// Broadcast screens fr against every subscriber's filter and delivers
// to the ones that accept it, honoring the backpressure policy.
func (h *Hub) Broadcast(fr canaddr.Frame) {
	subs := h.Snapshot()
	for _, s := range subs {
		if !s.Accept.Matches(fr.ID()) {
			continue
		}
		select {
		case s.Out <- fr:
		default:
			if h.Policy == PolicyKick {
				metrics.IncHubKick()
				s.Close() // consumer observes Closed and unregisters
			} else {
				metrics.IncHubDrop()
			}
		}
	}
}

// Snapshot returns a slice copy of current subscribers (read-only use).
func (h *Hub) Snapshot() []*Subscriber {
	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()
	return subs
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int { h.mu.RLock(); n := len(h.subs); h.mu.RUnlock(); return n }
