// Package painting is the decorative content source for the canvas.
//
// A painting is a fixed, procedurally generated plan of brush strokes over a
// cream background: background wash first, then landscape bands, then a
// centered portrait subject, finishing with accent swirls. Strokes are
// applied strictly in plan order, a batch at a time, so repeated advances
// reveal the picture progressively until the plan is exhausted.
//
// The painting has no interaction with the simulation engine; it produces
// RGB canvas state that the dispatcher serializes through the same wire
// protocol as simulation frames.
package painting
