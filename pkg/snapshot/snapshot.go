// Package snapshot exports canvas frames as PNG images.
//
// Exports are write-only: nothing here is ever read back into the server,
// so canvas state still lives purely in process memory. Two backends are
// provided — local disk and S3 — behind the same Store interface.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"
)

// ErrNoStore is returned when an export is requested but no backend is
// configured.
var ErrNoStore = errors.New("snapshot: no store configured")

// Store is the interface for snapshot export backends.
type Store interface {
	// Save writes one encoded snapshot under the given key.
	Save(ctx context.Context, key string, data []byte) error
}

// Frame is one full-canvas RGB snapshot.
type Frame struct {
	Width  int
	Height int
	RGB    []byte // row-major, 3 bytes per cell
}

// PNG encodes the frame as a PNG image.
func (f Frame) PNG() ([]byte, error) {
	if len(f.RGB) != f.Width*f.Height*3 {
		return nil, fmt.Errorf("snapshot: frame data size mismatch: got %d bytes, want %d for %dx%d",
			len(f.RGB), f.Width*f.Height*3, f.Width, f.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := (y*f.Width + x) * 3
			img.SetRGBA(x, y, color.RGBA{R: f.RGB[i], G: f.RGB[i+1], B: f.RGB[i+2], A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("snapshot: png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Key returns a timestamped object key for an export.
func Key(now time.Time) string {
	return fmt.Sprintf("canvas-%s.png", now.UTC().Format("20060102-150405.000"))
}
