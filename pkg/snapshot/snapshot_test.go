package snapshot

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFramePNG(t *testing.T) {
	rgb := make([]byte, 4*2*3)
	rgb[0], rgb[1], rgb[2] = 255, 0, 0 // pixel (0, 0) red

	data, err := Frame{Width: 4, Height: 2, RGB: rgb}.PNG()
	if err != nil {
		t.Fatalf("PNG() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("bounds = %dx%d, want 4x2", b.Dx(), b.Dy())
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 {
		t.Errorf("pixel (0, 0) = (%d, %d, %d), want (255, 0, 0)", r>>8, g>>8, b>>8)
	}
}

func TestFramePNGSizeMismatch(t *testing.T) {
	if _, err := (Frame{Width: 4, Height: 2, RGB: make([]byte, 5)}).PNG(); err == nil {
		t.Fatal("PNG() with short data: expected error")
	}
}

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(filepath.Join(dir, "snaps"))
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	key := Key(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err := store.Save(context.Background(), key, []byte("data")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "snaps", key))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "data" {
		t.Errorf("stored data = %q, want %q", got, "data")
	}
}

func TestKeyFormat(t *testing.T) {
	key := Key(time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC))
	if !strings.HasPrefix(key, "canvas-20250301-123045") || !strings.HasSuffix(key, ".png") {
		t.Errorf("Key() = %q", key)
	}
}
