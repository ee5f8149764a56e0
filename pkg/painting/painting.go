package painting

import (
	"math/rand/v2"
	"sync"
)

// BackgroundColor is the cream base coat every painting starts from.
var BackgroundColor = [3]uint8{240, 235, 220}

// DefaultBatchSize is the number of strokes applied per Advance.
const DefaultBatchSize = 250

// Stroke paints a single cell of the canvas.
type Stroke struct {
	X, Y  int
	Color [3]uint8
}

// Config holds configuration for a painting.
type Config struct {
	// Width and Height are the canvas dimensions. Default: 100×100.
	Width  int
	Height int

	// BatchSize is the number of strokes applied per Advance.
	// Default: DefaultBatchSize.
	BatchSize int

	// Seed seeds stroke-plan generation. Zero means a non-deterministic
	// seed.
	Seed uint64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Width:     100,
		Height:    100,
		BatchSize: DefaultBatchSize,
	}
}

// Painting owns one decorative canvas and its stroke plan. All methods are
// safe for concurrent use; strokes are applied in plan order regardless of
// which connection drives the advance.
type Painting struct {
	mu     sync.Mutex
	canvas []byte // row-major RGB
	plan   []Stroke
	cursor int

	width     int
	height    int
	batchSize int
	rng       *rand.Rand
}

// New creates a painting with a freshly generated stroke plan and an
// untouched background.
func New(cfg *Config) *Painting {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		defaults := DefaultConfig()
		if cfg.Width <= 0 {
			cfg.Width = defaults.Width
		}
		if cfg.Height <= 0 {
			cfg.Height = defaults.Height
		}
		if cfg.BatchSize <= 0 {
			cfg.BatchSize = defaults.BatchSize
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	p := &Painting{
		canvas:    make([]byte, cfg.Width*cfg.Height*3),
		width:     cfg.Width,
		height:    cfg.Height,
		batchSize: cfg.BatchSize,
		rng:       rand.New(rand.NewPCG(seed, seed)),
	}
	p.reset()
	return p
}

// Width returns the canvas width in cells.
func (p *Painting) Width() int { return p.width }

// Height returns the canvas height in cells.
func (p *Painting) Height() int { return p.height }

// reset repaints the background and generates a new stroke plan.
// Callers hold p.mu or have exclusive access.
func (p *Painting) reset() {
	for i := 0; i < len(p.canvas); i += 3 {
		p.canvas[i] = BackgroundColor[0]
		p.canvas[i+1] = BackgroundColor[1]
		p.canvas[i+2] = BackgroundColor[2]
	}
	p.plan = buildPlan(p.width, p.height, p.rng)
	p.cursor = 0
}

// Reset discards progress and starts a new painting.
func (p *Painting) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

// Advance applies the next batch of strokes and reports how many strokes
// were applied and whether the plan is now exhausted. Advancing a complete
// painting applies nothing and reports done.
func (p *Painting) Advance() (applied int, done bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	end := p.cursor + p.batchSize
	if end > len(p.plan) {
		end = len(p.plan)
	}
	for _, s := range p.plan[p.cursor:end] {
		if s.X < 0 || s.X >= p.width || s.Y < 0 || s.Y >= p.height {
			continue
		}
		i := (s.Y*p.width + s.X) * 3
		p.canvas[i] = s.Color[0]
		p.canvas[i+1] = s.Color[1]
		p.canvas[i+2] = s.Color[2]
	}
	applied = end - p.cursor
	p.cursor = end
	return applied, p.cursor == len(p.plan)
}

// Done reports whether every stroke of the plan has been applied.
func (p *Painting) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor == len(p.plan)
}

// Progress returns the number of applied strokes and the plan total.
func (p *Painting) Progress() (applied, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor, len(p.plan)
}

// FrameRGB returns a copy of the canvas as row-major RGB bytes.
func (p *Painting) FrameRGB() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, len(p.canvas))
	copy(out, p.canvas)
	return out
}
