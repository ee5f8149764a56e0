package life

import (
	"fmt"
	"sync"
)

// DeadColor is the RGB rendered for a dead cell.
var DeadColor = [3]uint8{255, 255, 255}

// Grid is a double-buffered cell grid. Width and height are fixed for the
// lifetime of the grid; the current and next buffers are swapped after each
// completed step, never copied. Grid is not synchronized; Engine owns the
// locking.
type Grid struct {
	width      int
	height     int
	generation uint64
	cur        *Bitmap
	next       *Bitmap
}

// NewGrid creates an empty width×height grid at generation 0.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cur:    NewBitmap(width, height),
		next:   NewBitmap(width, height),
	}
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// Generation returns the number of completed steps since the last reset.
func (g *Grid) Generation() uint64 { return g.generation }

// Get reports whether the cell at (x, y) is alive in the current buffer.
func (g *Grid) Get(x, y int) bool { return g.cur.Get(x, y) }

// Set sets the cell at (x, y) in the current buffer.
func (g *Grid) Set(x, y int, alive bool) { g.cur.Set(x, y, alive) }

// Population returns the number of live cells in the current buffer.
func (g *Grid) Population() int { return g.cur.Population() }

// Reset clears the grid and resets the generation counter.
func (g *Grid) Reset() {
	g.cur.Clear()
	g.generation = 0
}

// neighbors counts the live cells in the 8-neighborhood of (x, y), reading
// the current buffer only. Out-of-range neighbors are dead.
func (g *Grid) neighbors(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.cur.Get(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}

// stepRows computes rows [lo, hi) of the next generation from the frozen
// current buffer. Rows are word-aligned in the bitmap, so concurrent calls
// on disjoint row ranges write disjoint memory.
func (g *Grid) stepRows(lo, hi int) {
	for y := lo; y < hi; y++ {
		g.next.clearRow(y)
		for x := 0; x < g.width; x++ {
			switch g.neighbors(x, y) {
			case 2:
				g.next.Set(x, y, g.cur.Get(x, y))
			case 3:
				g.next.Set(x, y, true)
			}
		}
	}
}

// stepRange computes one worker's row range. A variable so tests can
// stand in a failing worker; production code never reassigns it.
var stepRange = (*Grid).stepRows

// Step advances the grid one generation using up to workers goroutines.
// workers <= 1 runs single-threaded. On success the buffers are swapped and
// the generation counter increments by one. If any worker fails, the grid
// stays at the previous generation and the aggregated error is returned.
func (g *Grid) Step(workers int) error {
	if workers > g.height {
		workers = g.height
	}
	if workers <= 1 {
		g.stepRows(0, g.height)
		g.swap()
		return nil
	}

	chunk := (g.height + workers - 1) / workers
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		lo := i * chunk
		hi := lo + chunk
		if hi > g.height {
			hi = g.height
		}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		go func(i, lo, hi int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("life: step worker rows [%d,%d): %v", lo, hi, r)
				}
			}()
			stepRange(g, lo, hi)
		}(i, lo, hi)
	}
	wg.Wait()

	// Every worker's outcome is checked; a lost row range must never be
	// silently merged into the next generation.
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	g.swap()
	return nil
}

func (g *Grid) swap() {
	g.cur, g.next = g.next, g.cur
	g.generation++
}

// RGB renders the current buffer as row-major RGB bytes, 3 per cell. Dead
// cells render as DeadColor, live cells as the given accent color.
func (g *Grid) RGB(live [3]uint8) []byte {
	out := make([]byte, 0, g.width*g.height*3)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cur.Get(x, y) {
				out = append(out, live[0], live[1], live[2])
			} else {
				out = append(out, DeadColor[0], DeadColor[1], DeadColor[2])
			}
		}
	}
	return out
}
