package hub

import (
	"context"
	"sync/atomic"
)

// Subscriber is one consumer of the hub's stream. It is not safe for
// concurrent receives; each connection owns exactly one subscriber and
// drains it from a single goroutine.
type Subscriber struct {
	hub     *Hub
	ch      chan []byte
	replay  [][]byte
	skipped atomic.Uint64
}

// Replay returns the catch-up content captured when the subscriber joined,
// in publish order. The caller sends it to the client before draining the
// live stream.
func (s *Subscriber) Replay() [][]byte {
	return s.replay
}

// Next blocks for the next published message. skipped reports how many
// messages were dropped for this subscriber since the previous receive;
// a non-zero value is a lag event. Next returns ErrClosed once the hub has
// shut down or the subscription was closed, and ctx.Err() on cancellation.
func (s *Subscriber) Next(ctx context.Context) (msg []byte, skipped uint64, err error) {
	select {
	case msg, ok := <-s.ch:
		if !ok {
			return nil, 0, ErrClosed
		}
		return msg, s.skipped.Swap(0), nil
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}

// Close unregisters the subscriber from the hub. Idempotent.
func (s *Subscriber) Close() {
	s.hub.unsubscribe(s)
}
