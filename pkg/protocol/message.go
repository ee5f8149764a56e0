package protocol

import (
	"encoding/binary"
	"errors"
)

// Protocol constants.
const (
	// Version is the single supported protocol version.
	Version = 1

	// HeaderSize is the size of the message header in bytes.
	HeaderSize = 7
)

// Flags are optional bits carried in the header's flags byte.
type Flags uint8

const (
	// FlagError marks a command echoed back because it failed validation.
	// The payload carries a plaintext reason.
	FlagError Flags = 0x01
)

// Has returns true if the flags contain the specified flag.
func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// Decode errors.
var (
	ErrTooShort           = errors.New("protocol: too short for header")
	ErrUnsupportedVersion = errors.New("protocol: unsupported version")
	ErrLengthMismatch     = errors.New("protocol: length mismatch")
)

// Message is one wire message with header and payload.
// A Message is immutable once constructed.
type Message struct {
	Version uint8
	Type    Type
	Flags   Flags
	Payload []byte
}

// New returns a version-1 message of the given type with flags zero.
func New(t Type, payload []byte) Message {
	return Message{Version: Version, Type: t, Payload: payload}
}

// Encode encodes the message to bytes including the header.
// Encoding always succeeds; the result is HeaderSize+len(Payload) bytes.
func (m Message) Encode() []byte {
	buf := make([]byte, HeaderSize+len(m.Payload))
	buf[0] = m.Version
	buf[1] = byte(m.Type)
	buf[2] = byte(m.Flags)
	binary.BigEndian.PutUint32(buf[3:7], uint32(len(m.Payload)))
	copy(buf[HeaderSize:], m.Payload)
	return buf
}

// Decode decodes a message from bytes.
//
// It fails with ErrTooShort if data cannot hold a header, with
// ErrUnsupportedVersion if the version byte is not Version, and with
// ErrLengthMismatch if the declared payload length does not equal the bytes
// following the header. Type, Flags, and payload content are not validated
// here; that is the dispatcher's concern.
//
// The payload is copied, so the caller may reuse data.
func Decode(data []byte) (Message, error) {
	if len(data) < HeaderSize {
		return Message{}, ErrTooShort
	}
	if data[0] != Version {
		return Message{}, ErrUnsupportedVersion
	}
	length := binary.BigEndian.Uint32(data[3:7])
	if uint32(len(data)-HeaderSize) != length {
		return Message{}, ErrLengthMismatch
	}

	payload := make([]byte, length)
	copy(payload, data[HeaderSize:])
	return Message{
		Version: data[0],
		Type:    Type(data[1]),
		Flags:   Flags(data[2]),
		Payload: payload,
	}, nil
}
