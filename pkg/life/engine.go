package life

import (
	"math/rand/v2"
	"runtime"
	"sync"
)

// DefaultDensity is the live-cell probability used when reseeding.
const DefaultDensity = 0.3

// EngineConfig holds configuration for the simulation engine.
type EngineConfig struct {
	// Width and Height are the canvas dimensions in cells.
	// Default: 100×100.
	Width  int
	Height int

	// Workers is the worker-pool size for parallel stepping.
	// Default: runtime.NumCPU().
	Workers int

	// Seed seeds the engine's random source. Zero means a
	// non-deterministic seed.
	Seed uint64
}

// DefaultEngineConfig returns an EngineConfig with sensible defaults.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Width:   100,
		Height:  100,
		Workers: runtime.NumCPU(),
	}
}

// Engine owns the canonical grid and serializes all access to it.
// Mutations and steps take the write lock; queries and serialization take
// the read lock, so many connections can render frames concurrently while
// at most one advances the simulation.
type Engine struct {
	mu   sync.RWMutex
	grid *Grid
	rng  *rand.Rand // guarded by mu (write lock)

	workers int
}

// NewEngine creates an engine with an empty grid. The caller constructs
// exactly one Engine at startup and shares it; there is no package-level
// instance.
func NewEngine(cfg *EngineConfig) *Engine {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	} else {
		defaults := DefaultEngineConfig()
		if cfg.Width <= 0 {
			cfg.Width = defaults.Width
		}
		if cfg.Height <= 0 {
			cfg.Height = defaults.Height
		}
		if cfg.Workers <= 0 {
			cfg.Workers = defaults.Workers
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Engine{
		grid:    NewGrid(cfg.Width, cfg.Height),
		rng:     rand.New(rand.NewPCG(seed, seed)),
		workers: cfg.Workers,
	}
}

// Width returns the canvas width in cells.
func (e *Engine) Width() int { return e.grid.Width() }

// Height returns the canvas height in cells.
func (e *Engine) Height() int { return e.grid.Height() }

// Query reports whether the cell at (x, y) is alive.
func (e *Engine) Query(x, y int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Get(x, y)
}

// Set sets the cell at (x, y). Out-of-range coordinates are ignored;
// callers that need to reject them must bounds-check first.
func (e *Engine) Set(x, y int, alive bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grid.Set(x, y, alive)
}

// AwakenRandom sets a uniformly random cell alive and returns its
// coordinates.
func (e *Engine) AwakenRandom() (x, y int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	x = e.rng.IntN(e.grid.Width())
	y = e.rng.IntN(e.grid.Height())
	e.grid.Set(x, y, true)
	return x, y
}

// KillRandom clears a uniformly random cell and returns its coordinates.
func (e *Engine) KillRandom() (x, y int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	x = e.rng.IntN(e.grid.Width())
	y = e.rng.IntN(e.grid.Height())
	e.grid.Set(x, y, false)
	return x, y
}

// KillAll clears every cell and resets the generation counter to zero.
func (e *Engine) KillAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grid.Reset()
}

// Reseed repopulates the grid with random cells at the given density and
// resets the generation counter. A density outside (0, 1] falls back to
// DefaultDensity.
func (e *Engine) Reseed(density float64) {
	if density <= 0 || density > 1 {
		density = DefaultDensity
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.grid.Reset()
	for y := 0; y < e.grid.Height(); y++ {
		for x := 0; x < e.grid.Width(); x++ {
			if e.rng.Float64() < density {
				e.grid.Set(x, y, true)
			}
		}
	}
}

// SeedBlinker clears the grid and places a 3-cell horizontal blinker at the
// canvas center.
func (e *Engine) SeedBlinker() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grid.Reset()
	cx, cy := e.grid.Width()/2, e.grid.Height()/2
	e.grid.Set(cx-1, cy, true)
	e.grid.Set(cx, cy, true)
	e.grid.Set(cx+1, cy, true)
}

// SeedGlider clears the grid and places a glider in the top-left corner.
func (e *Engine) SeedGlider() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grid.Reset()
	for _, p := range [][2]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}} {
		e.grid.Set(p[0], p[1], true)
	}
}

// Step advances the grid by exactly one generation. On error the grid is
// left at the previous generation.
func (e *Engine) Step() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Step(e.workers)
}

// FrameRGB renders the current grid as row-major RGB bytes, 3 per cell,
// with live cells in the given accent color.
func (e *Engine) FrameRGB(accent [3]uint8) []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.RGB(accent)
}

// Population returns the number of live cells.
func (e *Engine) Population() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Population()
}

// Generation returns the number of completed steps since the last reset.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Generation()
}
