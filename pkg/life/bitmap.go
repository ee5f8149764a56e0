package life

import "math/bits"

const wordBits = 64

// Bitmap is a bit-packed row-major cell buffer. Each cell is exactly one
// bit; rows are padded up to a whole number of 64-bit words, so two distinct
// rows never share a word.
type Bitmap struct {
	width    int
	height   int
	rowWords int // words per row, ceil(width/64)
	words    []uint64
}

// NewBitmap creates a cleared width×height bitmap.
func NewBitmap(width, height int) *Bitmap {
	rowWords := (width + wordBits - 1) / wordBits
	return &Bitmap{
		width:    width,
		height:   height,
		rowWords: rowWords,
		words:    make([]uint64, rowWords*height),
	}
}

// index translates (x, y) to (word index, bit offset). Callers must have
// bounds-checked x and y.
func (b *Bitmap) index(x, y int) (int, uint) {
	return y*b.rowWords + x/wordBits, uint(x % wordBits)
}

// Get reports whether the cell at (x, y) is alive. Out-of-range coordinates
// are dead.
func (b *Bitmap) Get(x, y int) bool {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return false
	}
	w, bit := b.index(x, y)
	return b.words[w]>>bit&1 == 1
}

// Set sets the cell at (x, y). Out-of-range coordinates are ignored.
func (b *Bitmap) Set(x, y int, alive bool) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	w, bit := b.index(x, y)
	if alive {
		b.words[w] |= 1 << bit
	} else {
		b.words[w] &^= 1 << bit
	}
}

// Clear zeroes every cell.
func (b *Bitmap) Clear() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// clearRow zeroes the words of row y.
func (b *Bitmap) clearRow(y int) {
	row := b.words[y*b.rowWords : (y+1)*b.rowWords]
	for i := range row {
		row[i] = 0
	}
}

// Population returns the number of live cells.
func (b *Bitmap) Population() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}
