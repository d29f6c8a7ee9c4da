// Package delay provides the fixed-capacity circular buffer behind the
// modulated delay effects.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chorus/dsp/interp"
)

// Line is a circular delay line with a single write head.
//
// Writing and advancing are separate steps so a caller can store the current
// input, read behind the head, and only then move on to the next slot.
// All reads are wrapped into [0, Len()).
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a zeroed delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// Resize sets the line length, zeroes every slot and rewinds the write head.
// The backing array is reused when its capacity allows.
func (d *Line) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("delay size must be > 0: %d", size)
	}

	if cap(d.buffer) >= size {
		d.buffer = d.buffer[:size]
	} else {
		d.buffer = make([]float64, size)
	}

	d.Reset()

	return nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// WritePos returns the current write head index.
func (d *Line) WritePos() int {
	return d.writePos
}

// Write stores sample at the write head without advancing it.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
}

// Advance moves the write head one slot forward, wrapping at Len().
func (d *Line) Advance() {
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// At returns the sample stored at index, wrapped into the buffer.
func (d *Line) At(index int) float64 {
	size := len(d.buffer)
	index %= size
	if index < 0 {
		index += size
	}

	return d.buffer[index]
}

// Tap resolves a fractional delay behind the write head into the two
// neighbouring slot indices and the interpolation weight of the second.
//
// Negative delays read at the head; delays of Len() or more are taken modulo
// Len(). Both returned indices are always in [0, Len()).
func (d *Line) Tap(delay float64) (x0, x1 int, frac float64) {
	size := len(d.buffer)
	fsize := float64(size)

	if delay < 0 {
		delay = 0
	} else if delay >= fsize {
		delay = math.Mod(delay, fsize)
	}

	readPos := float64(d.writePos) - delay
	if readPos < 0 {
		readPos += fsize
	}

	x0, frac = interp.Split(readPos)
	// writePos - tiny delay + size can round up to exactly size.
	if x0 >= size {
		x0 -= size
	}

	x1 = x0 + 1
	if x1 >= size {
		x1 = 0
	}

	return x0, x1, frac
}

// ReadFractional reads delay samples behind the write head with linear
// interpolation.
func (d *Line) ReadFractional(delay float64) float64 {
	x0, x1, frac := d.Tap(delay)
	return interp.Linear(frac, d.buffer[x0], d.buffer[x1])
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.writePos = 0
}
