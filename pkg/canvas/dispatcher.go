package canvas

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gridcast-dev/gridcast/pkg/life"
	"github.com/gridcast-dev/gridcast/pkg/painting"
	"github.com/gridcast-dev/gridcast/pkg/protocol"
)

// tracerName is the OpenTelemetry tracer for command dispatch.
const tracerName = "gridcast/canvas"

// Dispatcher routes commands to the simulation engine and the painting.
// It holds shared references handed in at startup; it never constructs or
// hides state of its own.
type Dispatcher struct {
	engine   *life.Engine
	painting *painting.Painting
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a dispatcher over the given engine and painting.
func New(engine *life.Engine, p *painting.Painting, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		engine:   engine,
		painting: p,
		logger:   logger.With("component", "canvas"),
		tracer:   otel.Tracer(tracerName),
	}
}

// Handle executes one decoded command and returns the single outbound
// message it produces.
func (d *Dispatcher) Handle(ctx context.Context, cmd protocol.Message) protocol.Message {
	ctx, span := d.tracer.Start(ctx, "canvas.Handle",
		trace.WithAttributes(
			attribute.String("msg.type", cmd.Type.String()),
			attribute.Int("msg.type_id", int(cmd.Type)),
			attribute.Int("msg.payload_len", len(cmd.Payload)),
		))
	defer span.End()

	out := d.dispatch(ctx, cmd)
	if out.Flags.Has(protocol.FlagError) {
		span.SetStatus(codes.Error, string(out.Payload))
	}
	return out
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd protocol.Message) protocol.Message {
	switch cmd.Type {
	case protocol.TypeHello:
		return protocol.New(protocol.TypeHello, protocol.HelloPayload)

	case protocol.TypeNewGeneration:
		d.engine.Reseed(life.DefaultDensity)
		d.logger.Debug("reseeded simulation", "population", d.engine.Population())
		return d.simulationFrame(cmd)

	case protocol.TypeAwakenRandomCell:
		x, y := d.engine.AwakenRandom()
		c := randomRGB()
		d.logger.Debug("awakened random cell", "x", x, "y", y, "generation", d.engine.Generation())
		return protocol.PixelMessage(uint16(x), uint16(y), c[0], c[1], c[2])

	case protocol.TypeKillRandomCell:
		x, y := d.engine.KillRandom()
		d.logger.Debug("killed random cell", "x", x, "y", y, "generation", d.engine.Generation())
		return protocol.PixelMessage(uint16(x), uint16(y),
			life.DeadColor[0], life.DeadColor[1], life.DeadColor[2])

	case protocol.TypeAdvanceGeneration:
		if err := d.engine.Step(); err != nil {
			// The grid is still at the previous generation; fail the
			// command instead of broadcasting a stale frame.
			d.logger.Error("simulation step failed", "error", err)
			return protocol.ErrorEcho(cmd, "simulation step failed")
		}
		d.logger.Debug("advanced generation", "generation", d.engine.Generation())
		return d.simulationFrame(cmd)

	case protocol.TypeKillAllCells:
		d.engine.KillAll()
		d.logger.Debug("killed all cells")
		return d.simulationFrame(cmd)

	case protocol.TypeNewPainting:
		d.painting.Reset()
		d.logger.Debug("started new painting")
		return d.paintingFrame(cmd)

	case protocol.TypeAdvancePainting:
		applied, done := d.painting.Advance()
		d.logger.Debug("advanced painting", "strokes", applied, "done", done)
		return d.paintingFrame(cmd)

	case protocol.TypeColoredPixel:
		return d.handleColoredPixel(cmd)

	default:
		// Unrecognized types are echoed back unchanged.
		return protocol.Message{
			Version: protocol.Version,
			Type:    cmd.Type,
			Flags:   cmd.Flags,
			Payload: cmd.Payload,
		}
	}
}

// handleColoredPixel awakens the explicit cell named by the payload
// (1 byte x, 1 byte y) and draws it in a random color. The coordinates are
// bounds-checked against the canvas before the grid is touched.
func (d *Dispatcher) handleColoredPixel(cmd protocol.Message) protocol.Message {
	if len(cmd.Payload) != 2 {
		d.logger.Warn("colored pixel with malformed payload", "payload_len", len(cmd.Payload))
		return protocol.ErrorEcho(cmd, "payload must be 2 bytes: x, y")
	}
	x, y := int(cmd.Payload[0]), int(cmd.Payload[1])
	if x >= d.engine.Width() || y >= d.engine.Height() {
		d.logger.Warn("colored pixel out of range", "x", x, "y", y)
		return protocol.ErrorEcho(cmd, "coordinates out of range")
	}

	d.engine.Set(x, y, true)
	c := randomRGB()
	return protocol.PixelMessage(uint16(x), uint16(y), c[0], c[1], c[2])
}

// simulationFrame renders the full grid with a random accent color.
func (d *Dispatcher) simulationFrame(cmd protocol.Message) protocol.Message {
	rgb := d.engine.FrameRGB(randomRGB())
	msg, err := protocol.FrameMessage(uint16(d.engine.Width()), uint16(d.engine.Height()), rgb)
	if err != nil {
		d.logger.Error("frame serialization failed", "error", err)
		return protocol.ErrorEcho(cmd, "frame serialization failed")
	}
	return msg
}

func (d *Dispatcher) paintingFrame(cmd protocol.Message) protocol.Message {
	msg, err := protocol.FrameMessage(uint16(d.painting.Width()), uint16(d.painting.Height()),
		d.painting.FrameRGB())
	if err != nil {
		d.logger.Error("painting frame serialization failed", "error", err)
		return protocol.ErrorEcho(cmd, "frame serialization failed")
	}
	return msg
}

// SnapshotFrame renders the canonical current simulation state. The server
// wires this into the hub's snapshot replay policy.
func (d *Dispatcher) SnapshotFrame() []byte {
	rgb := d.engine.FrameRGB(randomRGB())
	msg, err := protocol.FrameMessage(uint16(d.engine.Width()), uint16(d.engine.Height()), rgb)
	if err != nil {
		d.logger.Error("snapshot serialization failed", "error", err)
		return nil
	}
	return msg.Encode()
}

// RandomPixel draws a random cell of the canvas in a random color without
// touching the grid. The periodic driver publishes these as ambient
// activity.
func (d *Dispatcher) RandomPixel() protocol.Message {
	x := rand.IntN(d.engine.Width())
	y := rand.IntN(d.engine.Height())
	c := randomRGB()
	return protocol.PixelMessage(uint16(x), uint16(y), c[0], c[1], c[2])
}

// randomRGB returns a uniformly random color.
func randomRGB() [3]uint8 {
	return [3]uint8{
		uint8(rand.IntN(256)),
		uint8(rand.IntN(256)),
		uint8(rand.IntN(256)),
	}
}
