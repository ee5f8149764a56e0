package protocol

import (
	"bytes"
	"testing"
)

func TestPixelMessage(t *testing.T) {
	msg := PixelMessage(0x0102, 0x0304, 10, 20, 30)

	if msg.Type != TypeDrawPixel {
		t.Errorf("Type = %v, want DrawPixel", msg.Type)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04, 10, 20, 30}
	if !bytes.Equal(msg.Payload, want) {
		t.Errorf("Payload = %v, want %v", msg.Payload, want)
	}
}

func TestFrameMessage(t *testing.T) {
	rgb := make([]byte, 4*2*3)
	msg, err := FrameMessage(4, 2, rgb)
	if err != nil {
		t.Fatalf("FrameMessage() error = %v", err)
	}

	if msg.Type != TypeDrawFrame {
		t.Errorf("Type = %v, want DrawFrame", msg.Type)
	}
	if len(msg.Payload) != 4+len(rgb) {
		t.Errorf("Payload length = %d, want %d", len(msg.Payload), 4+len(rgb))
	}
	if msg.Payload[0] != 0 || msg.Payload[1] != 4 || msg.Payload[2] != 0 || msg.Payload[3] != 2 {
		t.Errorf("dimension header = %v, want [0 4 0 2]", msg.Payload[:4])
	}
}

func TestFrameMessageSizeMismatch(t *testing.T) {
	if _, err := FrameMessage(4, 2, make([]byte, 5)); err == nil {
		t.Fatal("FrameMessage() with short data: expected error")
	}
	if _, err := FrameMessage(4, 2, make([]byte, 4*2*3+1)); err == nil {
		t.Fatal("FrameMessage() with long data: expected error")
	}
}

func TestErrorEcho(t *testing.T) {
	cmd := New(TypeColoredPixel, []byte{200, 200})
	echo := ErrorEcho(cmd, "coordinates out of range")

	if echo.Type != cmd.Type {
		t.Errorf("Type = %v, want %v", echo.Type, cmd.Type)
	}
	if !echo.Flags.Has(FlagError) {
		t.Error("FlagError not set")
	}
	if string(echo.Payload) != "coordinates out of range" {
		t.Errorf("Payload = %q", echo.Payload)
	}

	// The echo must survive a wire round trip.
	decoded, err := Decode(echo.Encode())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !decoded.Flags.Has(FlagError) {
		t.Error("FlagError lost in round trip")
	}
}
