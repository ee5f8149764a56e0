// Package canvas maps decoded wire commands to their effects.
//
// The dispatcher is the only component that interprets message types. Each
// command invokes the simulation engine or the decorative painting, or falls
// through to an echo, and always yields exactly one outbound message — a
// command is never silently dropped. Commands that fail validation (bad
// payload, out-of-range coordinates) are echoed back with the error flag set
// and a plaintext reason; they never panic and never mutate state.
package canvas
