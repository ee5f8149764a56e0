package protocol

import (
	"encoding/binary"
	"fmt"
)

// PixelPayloadSize is the payload size of a DrawPixel message.
const PixelPayloadSize = 7

// HelloPayload is the fixed payload answered to a Hello command.
var HelloPayload = []byte("hello")

// TextRejection is the plaintext notice sent when a client sends a text
// frame on what is a binary-only protocol.
const TextRejection = "Only binary messages are supported"

// PixelMessage builds a DrawPixel message for one (x, y) cell.
func PixelMessage(x, y uint16, r, g, b uint8) Message {
	payload := make([]byte, PixelPayloadSize)
	binary.BigEndian.PutUint16(payload[0:2], x)
	binary.BigEndian.PutUint16(payload[2:4], y)
	payload[4] = r
	payload[5] = g
	payload[6] = b
	return New(TypeDrawPixel, payload)
}

// FrameMessage builds a DrawFrame message carrying a full-canvas RGB
// snapshot. rgb must be exactly width*height*3 bytes, row-major.
func FrameMessage(width, height uint16, rgb []byte) (Message, error) {
	want := int(width) * int(height) * 3
	if len(rgb) != want {
		return Message{}, fmt.Errorf("protocol: frame data size mismatch: got %d bytes, want %d for %dx%d canvas",
			len(rgb), want, width, height)
	}

	payload := make([]byte, 4+len(rgb))
	binary.BigEndian.PutUint16(payload[0:2], width)
	binary.BigEndian.PutUint16(payload[2:4], height)
	copy(payload[4:], rgb)
	return New(TypeDrawFrame, payload), nil
}

// ErrorEcho echoes a failed command back with FlagError set and a plaintext
// reason as the payload.
func ErrorEcho(cmd Message, reason string) Message {
	return Message{
		Version: Version,
		Type:    cmd.Type,
		Flags:   cmd.Flags | FlagError,
		Payload: []byte(reason),
	}
}
