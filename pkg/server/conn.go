package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gridcast-dev/gridcast/pkg/canvas"
	"github.com/gridcast-dev/gridcast/pkg/hub"
	"github.com/gridcast-dev/gridcast/pkg/protocol"
)

// connState is the connection lifecycle.
type connState int32

const (
	stateConnecting connState = iota
	stateActive
	stateClosing
	stateTerminated
)

// String returns the string representation of the state.
func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// errTooFarBehind tears down a subscriber that keeps lagging the stream.
var errTooFarBehind = errors.New("server: subscriber too far behind")

// messageStream is the subscriber side of the hub as seen by the outbound
// pump: each receive carries the number of messages dropped since the
// previous one.
type messageStream interface {
	Next(ctx context.Context) (msg []byte, skipped uint64, err error)
}

// Conn owns the lifecycle of one client connection.
type Conn struct {
	id         string
	ws         *websocket.Conn
	hub        *hub.Hub
	dispatcher *canvas.Dispatcher
	config     *Config
	logger     *slog.Logger
	metrics    *Metrics

	state atomic.Int32
}

func newConn(ws *websocket.Conn, h *hub.Hub, d *canvas.Dispatcher, cfg *Config, logger *slog.Logger, m *Metrics) *Conn {
	id := uuid.NewString()
	return &Conn{
		id:         id,
		ws:         ws,
		hub:        h,
		dispatcher: d,
		config:     cfg,
		logger:     logger.With("component", "conn", "connection_id", id),
		metrics:    m,
	}
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Conn) State() connState { return connState(c.state.Load()) }

func (c *Conn) setState(s connState) { c.state.Store(int32(s)) }

// run drives the connection to completion: replay, then the two pumps,
// then teardown. It blocks until both pumps have stopped.
func (c *Conn) run(ctx context.Context) {
	defer c.setState(stateTerminated)
	defer c.ws.Close()

	c.logger.Info("connection established")
	c.metrics.ConnectionsTotal.Inc()
	c.metrics.ConnectionsActive.Inc()
	defer c.metrics.ConnectionsActive.Dec()

	sub, err := c.hub.Subscribe()
	if err != nil {
		c.logger.Error("subscribe failed", "error", err)
		return
	}
	defer sub.Close()

	// Catch the client up before it sees the live stream.
	for _, msg := range sub.Replay() {
		if err := c.write(msg); err != nil {
			c.logger.Error("replay send failed", "error", err)
			return
		}
	}
	c.setState(stateActive)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 2)
	go func() { done <- c.outboundPump(ctx, sub) }()
	go func() { done <- c.inboundPump(ctx) }()

	// Whichever pump stops first cancels its sibling. Closing the socket
	// unblocks the inbound pump's pending read; cancelling the context
	// unblocks the outbound pump's pending receive.
	err = <-done
	c.setState(stateClosing)
	cancel()
	c.ws.Close()
	<-done

	switch {
	case err == nil, errors.Is(err, hub.ErrClosed), errors.Is(err, context.Canceled):
		c.logger.Info("connection closed")
	default:
		c.logger.Info("connection closed", "reason", err)
	}
}

// outboundPump relays every hub message to the socket in publish order.
// It stops on the first write failure, on hub shutdown, or after LagLimit
// consecutive lag events.
func (c *Conn) outboundPump(ctx context.Context, sub messageStream) error {
	consecutiveLags := 0

	for {
		msg, skipped, err := sub.Next(ctx)
		if err != nil {
			return err
		}

		if skipped > 0 {
			consecutiveLags++
			c.metrics.LagEvents.Inc()
			c.logger.Warn("subscriber lagging", "skipped", skipped, "consecutive", consecutiveLags)
			if consecutiveLags >= c.config.LagLimit {
				c.metrics.LagDisconnects.Inc()
				return errTooFarBehind
			}
		} else {
			consecutiveLags = 0
		}

		if err := c.write(msg); err != nil {
			c.metrics.WriteErrors.Inc()
			return err
		}
		c.metrics.MessagesSent.Inc()
	}
}

// inboundPump reads frames from the socket until error, idle timeout, or a
// text frame. Decode failures skip the frame and keep the connection alive.
func (c *Conn) inboundPump(ctx context.Context) error {
	c.ws.SetReadLimit(c.config.MaxMessageSize)

	for {
		c.ws.SetReadDeadline(time.Now().Add(c.config.IdleTimeout))

		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				c.logger.Warn("idle timeout", "timeout", c.config.IdleTimeout)
				return err
			}
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return err
		}

		switch kind {
		case websocket.BinaryMessage:
			c.handleBinary(ctx, data)

		case websocket.TextMessage:
			// Binary-only protocol: publish one human-readable notice and
			// terminate this connection.
			c.logger.Warn("text frame rejected", "len", len(data))
			c.hub.Publish(protocol.Message{
				Version: protocol.Version,
				Flags:   protocol.FlagError,
				Payload: []byte(protocol.TextRejection),
			}.Encode())
			return errors.New("server: text frame on binary protocol")

		default:
			// Ping/pong/close are handled by gorilla internally.
		}
	}
}

// handleBinary decodes one command, dispatches it, and publishes the
// result. A malformed frame is logged and dropped without affecting the
// connection.
func (c *Conn) handleBinary(ctx context.Context, data []byte) {
	cmd, err := protocol.Decode(data)
	if err != nil {
		c.metrics.DecodeErrors.Inc()
		c.logger.Warn("frame decode error", "error", err, "len", len(data))
		return
	}
	c.metrics.MessagesReceived.Inc()

	start := time.Now()
	out := c.dispatcher.Handle(ctx, cmd)
	c.metrics.CommandDuration.WithLabelValues(cmd.Type.String()).Observe(time.Since(start).Seconds())

	c.hub.Publish(out.Encode())
}

// write sends one pre-encoded message as a binary frame under the write
// deadline. The outbound pump and replay are the only writers, and they
// never run concurrently, so no write lock is needed.
func (c *Conn) write(msg []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.ws.WriteMessage(websocket.BinaryMessage, msg)
}
