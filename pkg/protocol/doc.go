// Package protocol implements the binary wire protocol for gridcast.
//
// Every message exchanged between client and server — commands in, draw
// events out — travels as a single WebSocket binary frame with a fixed
// 7-byte header:
//
//	┌────────────┬────────────┬────────────┬───────────────────────────┐
//	│ Version    │ Msg Type   │ Flags      │ Payload Length            │
//	│ (1 byte)   │ (1 byte)   │ (1 byte)   │ (4 bytes, big-endian)     │
//	└────────────┴────────────┴────────────┴───────────────────────────┘
//	│                                                                  │
//	│  Payload (variable length)                                       │
//	│                                                                  │
//	└──────────────────────────────────────────────────────────────────┘
//
// All multi-byte integers are big-endian. The only supported version is 1.
//
// Decode validates exactly three things: the buffer holds at least the
// header, the version byte is supported, and the declared payload length
// equals the bytes actually present. Interpretation of Type, Flags, and the
// payload is left to the dispatcher.
//
// # Message Types
//
// Commands (client → server):
//
//   - TypeHello (1): greeting, answered with a fixed payload
//   - TypeNewGeneration (40): reseed the simulation and emit a full frame
//   - TypeAwakenRandomCell (41): set a random cell alive, emit a pixel
//   - TypeKillRandomCell (42): clear a random cell, emit a pixel
//   - TypeAdvanceGeneration (43): step the simulation, emit a full frame
//   - TypeKillAllCells (45): clear the grid, emit a full frame
//   - TypeNewPainting (20) / TypeAdvancePainting (21): decorative painting
//   - TypeColoredPixel (200): awaken an explicit (x, y), payload 1 byte each
//
// Draw events (server → clients):
//
//   - TypeDrawPixel (100): payload x:u16, y:u16, r, g, b
//   - TypeDrawFrame (101): payload width:u16, height:u16, then
//     width×height×3 RGB bytes in row-major order
//
// Unrecognized types are echoed back unchanged, so the type space is open
// to client experimentation without breaking the stream.
package protocol
