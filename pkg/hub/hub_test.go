package hub

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestPublishWithZeroSubscribers(t *testing.T) {
	h := New(nil)
	defer h.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			h.Publish([]byte{byte(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with zero subscribers")
	}
	if got := h.Stats().Published; got != 1000 {
		t.Errorf("Published = %d, want 1000", got)
	}
}

func TestDeliveryInPublishOrder(t *testing.T) {
	h := New(&Config{SubscriberBuffer: 64})
	defer h.Close()

	sub, err := h.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	for i := 0; i < 50; i++ {
		h.Publish([]byte{byte(i)})
	}

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		msg, skipped, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if skipped != 0 {
			t.Fatalf("Next() skipped = %d, want 0", skipped)
		}
		if msg[0] != byte(i) {
			t.Fatalf("message %d out of order: got %d", i, msg[0])
		}
	}
}

func TestHistoryReplayBoundedFIFO(t *testing.T) {
	h := New(&Config{HistorySize: 5})
	defer h.Close()

	for i := 0; i < 12; i++ {
		h.Publish([]byte{byte(i)})
	}

	sub, err := h.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	replay := sub.Replay()
	if len(replay) != 5 {
		t.Fatalf("replay length = %d, want 5", len(replay))
	}
	for i, msg := range replay {
		if want := byte(7 + i); msg[0] != want {
			t.Errorf("replay[%d] = %d, want %d", i, msg[0], want)
		}
	}
}

func TestSnapshotReplayNoGapNoDuplicate(t *testing.T) {
	var mu sync.Mutex
	state := 0
	h := New(&Config{
		Snapshot: func() []byte {
			mu.Lock()
			defer mu.Unlock()
			return []byte(fmt.Sprintf("snap-%d", state))
		},
	})
	defer h.Close()

	publish := func(n int) {
		mu.Lock()
		state = n
		mu.Unlock()
		h.Publish([]byte(fmt.Sprintf("msg-%d", n)))
	}

	publish(1)
	publish(2)

	sub, err := h.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	publish(3)

	// Replay is exactly the snapshot taken at subscribe time: it reflects
	// everything up to msg-2 and nothing after.
	replay := sub.Replay()
	if len(replay) != 1 {
		t.Fatalf("replay length = %d, want 1", len(replay))
	}
	if !bytes.Equal(replay[0], []byte("snap-2")) {
		t.Errorf("replay = %q, want %q", replay[0], "snap-2")
	}

	// The live stream starts at the first message after the snapshot.
	msg, _, err := sub.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !bytes.Equal(msg, []byte("msg-3")) {
		t.Errorf("first live message = %q, want %q", msg, "msg-3")
	}
}

func TestSlowSubscriberLagCount(t *testing.T) {
	h := New(&Config{SubscriberBuffer: 4})
	defer h.Close()

	sub, err := h.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	// Overflow the buffer: 10 published into capacity 4 drops the 6 oldest.
	for i := 0; i < 10; i++ {
		h.Publish([]byte{byte(i)})
	}

	msg, skipped, err := sub.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if skipped != 6 {
		t.Errorf("skipped = %d, want 6", skipped)
	}
	// The survivors are the newest 4, still in order.
	if msg[0] != 6 {
		t.Errorf("first surviving message = %d, want 6", msg[0])
	}
	if got := h.Stats().Dropped; got != 6 {
		t.Errorf("Stats().Dropped = %d, want 6", got)
	}

	// Lag is reported once, then clears.
	_, skipped, err = sub.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("second receive skipped = %d, want 0", skipped)
	}
}

func TestFanOutToAllSubscribers(t *testing.T) {
	h := New(nil)
	defer h.Close()

	var subs []*Subscriber
	for i := 0; i < 3; i++ {
		sub, err := h.Subscribe()
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		defer sub.Close()
		subs = append(subs, sub)
	}

	h.Publish([]byte("one"))
	h.Publish([]byte("two"))

	for i, sub := range subs {
		for _, want := range []string{"one", "two"} {
			msg, _, err := sub.Next(context.Background())
			if err != nil {
				t.Fatalf("subscriber %d: Next() error = %v", i, err)
			}
			if string(msg) != want {
				t.Errorf("subscriber %d: got %q, want %q", i, msg, want)
			}
		}
	}
}

func TestCloseUnblocksSubscribers(t *testing.T) {
	h := New(nil)
	sub, err := h.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, _, err := sub.Next(context.Background())
		errCh <- err
	}()

	h.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Next() error = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next() did not unblock on Close")
	}

	if _, err := h.Subscribe(); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe() after Close error = %v, want ErrClosed", err)
	}
}

func TestNextContextCancellation(t *testing.T) {
	h := New(nil)
	defer h.Close()

	sub, err := h.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, _, err := sub.Next(ctx)
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Next() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next() did not unblock on context cancellation")
	}
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	h := New(&Config{SubscriberBuffer: 16})
	defer h.Close()

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				h.Publish([]byte{byte(p), byte(i)})
			}
		}(p)
	}
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sub, err := h.Subscribe()
				if err != nil {
					t.Errorf("Subscribe() error = %v", err)
					return
				}
				ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
				sub.Next(ctx)
				cancel()
				sub.Close()
			}
		}()
	}
	wg.Wait()
}
