package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gridcast-dev/gridcast/pkg/canvas"
	"github.com/gridcast-dev/gridcast/pkg/hub"
	"github.com/gridcast-dev/gridcast/pkg/protocol"
)

// maxConsecutiveDriverErrors stops the driver when auto-stepping keeps
// failing; a wedged simulation should not spin the ticker forever.
const maxConsecutiveDriverErrors = 10

// driver periodically produces an event even when no client is sending
// commands. In its default mode it publishes a random decorative pixel;
// with autoStep it advances the simulation and publishes the new frame.
// Ticks with zero subscribers are skipped entirely.
type driver struct {
	hub        *hub.Hub
	dispatcher *canvas.Dispatcher
	interval   time.Duration
	autoStep   bool
	logger     *slog.Logger
	metrics    *Metrics
}

// run ticks until the context is cancelled.
func (d *driver) run(ctx context.Context) {
	d.logger.Info("periodic driver started", "interval", d.interval, "auto_step", d.autoStep)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	consecutiveErrors := 0
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("periodic driver stopped")
			return
		case <-ticker.C:
		}

		if d.hub.Stats().Subscribers == 0 {
			continue
		}

		var msg protocol.Message
		if d.autoStep {
			msg = d.dispatcher.Handle(ctx, protocol.New(protocol.TypeAdvanceGeneration, nil))
			if msg.Flags.Has(protocol.FlagError) {
				consecutiveErrors++
				d.logger.Error("auto-step failed", "consecutive", consecutiveErrors)
				if consecutiveErrors >= maxConsecutiveDriverErrors {
					d.logger.Error("too many consecutive auto-step failures, stopping driver")
					return
				}
				continue
			}
			consecutiveErrors = 0
		} else {
			msg = d.dispatcher.RandomPixel()
		}

		d.hub.Publish(msg.Encode())
		d.metrics.DriverTicks.Inc()
	}
}
