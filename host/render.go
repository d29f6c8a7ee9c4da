package host

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/cwbudde/algo-chorus/dsp/effects/modulation"
)

// maxWAVPrecision is the widest PCM sample size beep's WAV encoder writes.
const maxWAVPrecision = 3

// RenderConfig controls offline rendering.
type RenderConfig struct {
	// BlockSize is announced to Prepare.
	BlockSize int
	// Tail appends silence after the input so delayed and fed-back signal
	// can ring out.
	Tail time.Duration
}

// Render decodes a WAV stream from src, prepares proc for its sample rate,
// runs it through the effect and writes a stereo WAV to dst. It returns the
// format written.
func Render(dst io.WriteSeeker, src io.Reader, proc *modulation.Processor, params ParamSource, cfg RenderConfig) (beep.Format, error) {
	stream, format, err := wav.Decode(src)
	if err != nil {
		return beep.Format{}, fmt.Errorf("host: decode wav: %w", err)
	}
	defer stream.Close()

	if err := proc.Prepare(float64(format.SampleRate), cfg.BlockSize); err != nil {
		return beep.Format{}, fmt.Errorf("host: prepare: %w", err)
	}

	var input beep.Streamer = stream
	if cfg.Tail > 0 {
		input = beep.Seq(stream, beep.Silence(format.SampleRate.N(cfg.Tail)))
	}

	fx, err := NewStreamer(input, proc, params)
	if err != nil {
		return beep.Format{}, err
	}

	out := format
	out.NumChannels = 2
	if out.Precision > maxWAVPrecision {
		out.Precision = maxWAVPrecision
	}

	if err := wav.Encode(dst, fx, out); err != nil {
		return beep.Format{}, fmt.Errorf("host: encode wav: %w", err)
	}

	return out, nil
}
