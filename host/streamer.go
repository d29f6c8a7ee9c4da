package host

import (
	"errors"

	"github.com/gopxl/beep"

	"github.com/cwbudde/algo-chorus/dsp/effects/modulation"
)

// ErrNotPrepared is returned when a host is handed a processor that has not
// been prepared for a sample rate.
var ErrNotPrepared = errors.New("host: processor not prepared")

// Streamer runs a beep stream through a Processor. Every Stream call takes
// one parameter snapshot and applies it to the whole chunk.
type Streamer struct {
	src    beep.Streamer
	proc   *modulation.Processor
	params ParamSource
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer wraps src. proc must already be prepared for src's rate.
func NewStreamer(src beep.Streamer, proc *modulation.Processor, params ParamSource) (*Streamer, error) {
	if !proc.Prepared() {
		return nil, ErrNotPrepared
	}

	return &Streamer{src: src, proc: proc, params: params}, nil
}

// Stream implements beep.Streamer.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.src.Stream(samples)
	if n > 0 {
		s.proc.ProcessFrames(samples[:n], s.params.Snapshot())
	}

	return n, ok
}

// Err implements beep.Streamer.
func (s *Streamer) Err() error {
	return s.src.Err()
}
