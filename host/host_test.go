package host

import "math"

// frameStreamer plays back a fixed slice of frames.
type frameStreamer struct {
	frames [][2]float64
	pos    int
}

func (s *frameStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}

	n := copy(samples, s.frames[s.pos:])
	s.pos += n

	return n, true
}

func (s *frameStreamer) Err() error { return nil }

func nan() float64 { return math.NaN() }
