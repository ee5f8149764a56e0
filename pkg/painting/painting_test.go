package painting

import (
	"bytes"
	"sync"
	"testing"
)

func TestNewStartsOnBackground(t *testing.T) {
	p := New(&Config{Width: 20, Height: 10, Seed: 1})

	rgb := p.FrameRGB()
	if len(rgb) != 20*10*3 {
		t.Fatalf("FrameRGB length = %d, want %d", len(rgb), 20*10*3)
	}
	for i := 0; i < len(rgb); i += 3 {
		if !bytes.Equal(rgb[i:i+3], BackgroundColor[:]) {
			t.Fatalf("pixel %d = %v before any stroke, want background", i/3, rgb[i:i+3])
		}
	}
	if p.Done() {
		t.Error("fresh painting reports done")
	}
}

func TestAdvanceAppliesStrokesInOrder(t *testing.T) {
	p := New(&Config{Width: 30, Height: 30, BatchSize: 100, Seed: 2})

	applied, done := p.Advance()
	if applied != 100 {
		t.Errorf("first Advance applied = %d, want 100", applied)
	}
	if done {
		t.Error("done after one batch")
	}

	got, total := p.Progress()
	if got != 100 {
		t.Errorf("Progress applied = %d, want 100", got)
	}
	if total <= 100 {
		t.Errorf("plan total = %d, suspiciously small", total)
	}

	// The first batch is the start of the sky wash: pixel (0, 0) painted.
	rgb := p.FrameRGB()
	if bytes.Equal(rgb[0:3], BackgroundColor[:]) {
		t.Error("pixel (0, 0) still background after first batch")
	}
}

func TestAdvanceRunsToCompletion(t *testing.T) {
	p := New(&Config{Width: 16, Height: 16, BatchSize: 1000, Seed: 3})

	_, total := p.Progress()
	var done bool
	for i := 0; i < total; i++ { // generous upper bound on batches
		if _, done = p.Advance(); done {
			break
		}
	}
	if !done {
		t.Fatal("painting never completed")
	}

	// Advancing past completion is a no-op.
	applied, done := p.Advance()
	if applied != 0 || !done {
		t.Errorf("Advance after completion = (%d, %v), want (0, true)", applied, done)
	}

	before := p.FrameRGB()
	p.Advance()
	if !bytes.Equal(before, p.FrameRGB()) {
		t.Error("canvas changed after completion")
	}
}

func TestResetStartsOver(t *testing.T) {
	p := New(&Config{Width: 16, Height: 16, Seed: 4})
	p.Advance()
	p.Reset()

	applied, _ := p.Progress()
	if applied != 0 {
		t.Errorf("Progress applied = %d after Reset, want 0", applied)
	}
	rgb := p.FrameRGB()
	if !bytes.Equal(rgb[0:3], BackgroundColor[:]) {
		t.Error("canvas not back on background after Reset")
	}
}

func TestDeterministicPlanForSeed(t *testing.T) {
	a := New(&Config{Width: 24, Height: 24, Seed: 9})
	b := New(&Config{Width: 24, Height: 24, Seed: 9})

	for i := 0; i < 10; i++ {
		a.Advance()
		b.Advance()
	}
	if !bytes.Equal(a.FrameRGB(), b.FrameRGB()) {
		t.Error("same seed produced different canvases")
	}
}

func TestConcurrentAdvance(t *testing.T) {
	p := New(&Config{Width: 32, Height: 32, BatchSize: 50, Seed: 5})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Advance()
				p.FrameRGB()
			}
		}()
	}
	wg.Wait()

	applied, total := p.Progress()
	if applied > total {
		t.Errorf("cursor %d ran past plan total %d", applied, total)
	}
}
