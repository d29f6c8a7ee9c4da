package host

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gopxl/beep"
)

const bytesPerFrame = 8 // two little-endian float32 samples

// Reader exposes a beep stream as interleaved little-endian float32 stereo
// bytes, the layout oto's FormatFloat32LE expects.
//
// The frame scratch is allocated once; a Read never pulls more than that many
// frames from the source.
type Reader struct {
	src    beep.Streamer
	frames [][2]float64
	done   bool
}

// NewReader wraps src with a scratch of maxFrames frames.
func NewReader(src beep.Streamer, maxFrames int) *Reader {
	if maxFrames < 1 {
		maxFrames = 1
	}

	return &Reader{src: src, frames: make([][2]float64, maxFrames)}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}

	want := len(p) / bytesPerFrame
	if want == 0 {
		return 0, nil
	}

	if want > len(r.frames) {
		want = len(r.frames)
	}

	n, ok := r.src.Stream(r.frames[:want])
	for i := 0; i < n; i++ {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(r.frames[i][0])))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(r.frames[i][1])))
	}

	if !ok {
		r.done = true

		if n == 0 {
			if err := r.src.Err(); err != nil {
				return 0, err
			}

			return 0, io.EOF
		}
	}

	return n * bytesPerFrame, nil
}
