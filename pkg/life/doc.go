// Package life implements the cellular-automaton engine behind the canvas.
//
// The grid is a standard two-state automaton: a live cell with two or three
// live neighbors survives, a dead cell with exactly three live neighbors is
// born, everything else dies. Neighborhoods are the eight surrounding cells
// with no wraparound; cells beyond the edge count as dead.
//
// Cells are stored one bit each inside 64-bit words (Bitmap). The grid keeps
// two buffers and swaps them after each step instead of copying. Stepping
// can be partitioned across a worker pool; rows are word-aligned, so workers
// write disjoint regions of the next buffer and serial and parallel stepping
// produce identical bits.
//
// Engine wraps a Grid with a single-writer/multiple-reader lock and is the
// only way the rest of the server touches simulation state.
package life
