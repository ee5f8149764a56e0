package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gridcast-dev/gridcast/pkg/canvas"
	"github.com/gridcast-dev/gridcast/pkg/hub"
	"github.com/gridcast-dev/gridcast/pkg/life"
	"github.com/gridcast-dev/gridcast/pkg/painting"
)

// wsPair returns both ends of an established WebSocket connection.
func wsPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()

	accepted := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- ws
	}))
	t.Cleanup(ts.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	server = <-accepted
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return server, client
}

// scriptedStream feeds the outbound pump a fixed sequence of receives with
// prescribed skip counts, then reports the hub as closed.
type scriptedStream struct {
	skips []uint64
	idx   int
}

func (s *scriptedStream) Next(ctx context.Context) ([]byte, uint64, error) {
	if s.idx >= len(s.skips) {
		return nil, 0, hub.ErrClosed
	}
	skipped := s.skips[s.idx]
	s.idx++
	return []byte("payload"), skipped, nil
}

// The pump tolerates lag events until LagLimit of them arrive back to
// back; any clean receive in between resets the count. Sustained lag must
// tear the connection down, not just log.
func TestOutboundPumpLagTeardown(t *testing.T) {
	const lagLimit = 3

	tests := []struct {
		name            string
		skips           []uint64
		wantErr         error
		wantDisconnects float64
	}{
		{"consecutive lag events tear down", []uint64{3, 1, 2}, errTooFarBehind, 1},
		{"clean receive resets the count", []uint64{4, 4, 0, 4, 4}, hub.ErrClosed, 0},
		{"teardown after a reset", []uint64{1, 0, 2, 2, 2}, errTooFarBehind, 1},
		{"no lag at all", []uint64{0, 0, 0}, hub.ErrClosed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serverWS, clientWS := wsPair(t)
			go func() {
				for {
					if _, _, err := clientWS.ReadMessage(); err != nil {
						return
					}
				}
			}()

			h := hub.New(nil)
			t.Cleanup(h.Close)
			m := NewMetrics(prometheus.NewRegistry(), h)
			cfg := (&Config{LagLimit: lagLimit}).withDefaults()
			c := newConn(serverWS, h, nil, cfg, slog.Default(), m)

			err := c.outboundPump(context.Background(), &scriptedStream{skips: tt.skips})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("outboundPump() error = %v, want %v", err, tt.wantErr)
			}

			if got := testutil.ToFloat64(m.LagDisconnects); got != tt.wantDisconnects {
				t.Errorf("lag_disconnects_total = %v, want %v", got, tt.wantDisconnects)
			}

			if got := testutil.ToFloat64(m.LagEvents); got != expectedLagEvents(tt.skips, lagLimit) {
				t.Errorf("lag_events_total = %v, want %v", got, expectedLagEvents(tt.skips, lagLimit))
			}
		})
	}
}

// expectedLagEvents counts the lag events the pump records before it either
// exhausts the script or tears down at the limit.
func expectedLagEvents(skips []uint64, lagLimit int) float64 {
	lags, consecutive := 0, 0
	for _, skipped := range skips {
		if skipped > 0 {
			lags++
			consecutive++
			if consecutive >= lagLimit {
				break
			}
		} else {
			consecutive = 0
		}
	}
	return float64(lags)
}

func waitForState(t *testing.T, c *Conn, want connState) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %v, never reached %v", c.State(), want)
}

func TestConnLifecycleStates(t *testing.T) {
	serverWS, clientWS := wsPair(t)

	engine := life.NewEngine(&life.EngineConfig{Width: 10, Height: 10, Workers: 1, Seed: 1})
	paint := painting.New(&painting.Config{Width: 10, Height: 10, Seed: 1})
	dispatcher := canvas.New(engine, paint, nil)
	h := hub.New(nil)
	t.Cleanup(h.Close)
	m := NewMetrics(prometheus.NewRegistry(), h)

	c := newConn(serverWS, h, dispatcher, (&Config{}).withDefaults(), slog.Default(), m)
	if got := c.State(); got != stateConnecting {
		t.Fatalf("initial state = %v, want %v", got, stateConnecting)
	}

	done := make(chan struct{})
	go func() {
		c.run(context.Background())
		close(done)
	}()

	// Replay finishes and both pumps start.
	waitForState(t, c, stateActive)

	// The peer going away unwinds both pumps and terminates the
	// connection.
	clientWS.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run() did not return after peer close")
	}
	if got := c.State(); got != stateTerminated {
		t.Errorf("final state = %v, want %v", got, stateTerminated)
	}
}
