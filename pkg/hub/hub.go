package hub

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by subscriber receives after the hub shuts down.
var ErrClosed = errors.New("hub: closed")

// SnapshotFunc renders the canonical current-state message for a new
// subscriber. It is called with the hub lock held, atomically with
// registration, so implementations must not call back into the hub.
type SnapshotFunc func() []byte

// Config holds configuration for the hub.
type Config struct {
	// Snapshot, when set, selects the snapshot replay policy: each new
	// subscriber receives the provider's output as its replay content.
	// When nil, the hub keeps a FIFO ring of the HistorySize most recent
	// messages instead.
	Snapshot SnapshotFunc

	// HistorySize is the replay ring capacity under the history policy.
	// Default: 100.
	HistorySize int

	// SubscriberBuffer is the per-subscriber channel capacity.
	// Default: 100.
	SubscriberBuffer int

	// Logger is the hub logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HistorySize:      100,
		SubscriberBuffer: 100,
	}
}

// Stats is a point-in-time view of hub counters.
type Stats struct {
	Subscribers int
	Published   uint64
	Dropped     uint64
}

// Hub fans published messages out to all subscribers and retains bounded
// replay content for late joiners.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	ring   [][]byte
	closed bool

	snapshot SnapshotFunc
	ringCap  int
	bufCap   int
	logger   *slog.Logger

	published atomic.Uint64
	dropped   atomic.Uint64
}

// New creates a hub. The server constructs exactly one and tears it down at
// shutdown; the hub never initializes itself lazily.
func New(cfg *Config) *Hub {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		defaults := DefaultConfig()
		if cfg.HistorySize <= 0 {
			cfg.HistorySize = defaults.HistorySize
		}
		if cfg.SubscriberBuffer <= 0 {
			cfg.SubscriberBuffer = defaults.SubscriberBuffer
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		subs:     make(map[*Subscriber]struct{}),
		snapshot: cfg.Snapshot,
		ringCap:  cfg.HistorySize,
		bufCap:   cfg.SubscriberBuffer,
		logger:   logger.With("component", "hub"),
	}
}

// Publish delivers msg to every current subscriber in publish order.
// It never blocks and never fails: with zero subscribers it is a no-op
// success, and a full subscriber buffer drops that subscriber's oldest
// pending message, counted against the subscriber as lag.
func (h *Hub) Publish(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	if h.snapshot == nil {
		h.ring = append(h.ring, msg)
		if len(h.ring) > h.ringCap {
			// Fixed-capacity FIFO: evict the oldest entry.
			h.ring = h.ring[1:]
		}
	}
	h.published.Add(1)

	for sub := range h.subs {
		for {
			select {
			case sub.ch <- msg:
			default:
				// Buffer full: make room by dropping the oldest pending
				// message and charge the drop to the subscriber.
				select {
				case <-sub.ch:
					sub.skipped.Add(1)
					h.dropped.Add(1)
				default:
				}
				continue
			}
			break
		}
	}
}

// Subscribe registers a new subscriber and captures its replay content
// atomically, so the replay plus the live stream cover the full message
// history with no gap and no duplicates.
func (h *Hub) Subscribe() (*Subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	sub := &Subscriber{
		hub: h,
		ch:  make(chan []byte, h.bufCap),
	}
	if h.snapshot != nil {
		if snap := h.snapshot(); snap != nil {
			sub.replay = [][]byte{snap}
		}
	} else if len(h.ring) > 0 {
		sub.replay = make([][]byte, len(h.ring))
		copy(sub.replay, h.ring)
	}

	h.subs[sub] = struct{}{}
	h.logger.Debug("subscriber joined", "subscribers", len(h.subs))
	return sub, nil
}

// unsubscribe removes sub and closes its channel. Idempotent.
func (h *Hub) unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
	h.logger.Debug("subscriber left", "subscribers", len(h.subs))
}

// Close shuts the hub down. Pending buffered messages are still drained by
// subscribers; subsequent receives return ErrClosed and subsequent
// publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.logger.Info("hub closed")
}

// Stats returns current hub counters.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	n := len(h.subs)
	h.mu.Unlock()
	return Stats{
		Subscribers: n,
		Published:   h.published.Load(),
		Dropped:     h.dropped.Load(),
	}
}
