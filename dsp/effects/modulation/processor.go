package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chorus/dsp/core"
)

// MaxDelaySeconds is the buffer headroom allocated per channel.
const MaxDelaySeconds = 2.0

// Processor is the stereo chorus/flanger.
//
// It must be prepared for a sample rate before the first block. Preparing
// again discards all buffered audio and LFO state. Processing never
// allocates.
type Processor struct {
	sampleRate   float64
	maxBlockSize int
	prepared     bool

	mod         Modulator
	left, right Channel
}

// NewProcessor returns an unprepared processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// NewPreparedProcessor returns a processor prepared with cfg's sample rate
// and block size.
func NewPreparedProcessor(opts ...core.ProcessorOption) (*Processor, error) {
	cfg := core.ApplyProcessorOptions(opts...)

	p := NewProcessor()
	if err := p.Prepare(cfg.SampleRate, cfg.BlockSize); err != nil {
		return nil, err
	}

	return p, nil
}

// BufferLenFor returns the per-channel buffer length used at sampleRate.
func BufferLenFor(sampleRate float64) int {
	return int(math.Round(sampleRate * MaxDelaySeconds))
}

// Prepare sizes both delay buffers for sampleRate and resets the write
// heads, the feedback accumulators and the LFO phase.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("modulation sample rate must be > 0 and finite: %f", sampleRate)
	}

	if maxBlockSize < 0 {
		return fmt.Errorf("modulation max block size must be >= 0: %d", maxBlockSize)
	}

	size := BufferLenFor(sampleRate)
	if size < 1 {
		return fmt.Errorf("modulation sample rate too low for a delay buffer: %f", sampleRate)
	}

	if err := p.left.resize(size); err != nil {
		return fmt.Errorf("modulation left buffer: %w", err)
	}

	if err := p.right.resize(size); err != nil {
		return fmt.Errorf("modulation right buffer: %w", err)
	}

	p.mod.Reset()

	p.sampleRate = sampleRate
	p.maxBlockSize = maxBlockSize
	p.prepared = true

	return nil
}

// Reset clears buffered audio, feedback and LFO phase without reallocating.
func (p *Processor) Reset() {
	p.left.Reset()
	p.right.Reset()
	p.mod.Reset()
}

// ProcessFrame runs one stereo frame.
func (p *Processor) ProcessFrame(l, r float64, params Params) (float64, float64) {
	p.mustBePrepared()

	delayL, delayR := p.mod.Advance(params, p.sampleRate)

	return p.left.ProcessSample(l, delayL, params), p.right.ProcessSample(r, delayR, params)
}

// ProcessBlock processes len(inL) frames in order. The four slices must have
// equal length; outputs may alias inputs.
func (p *Processor) ProcessBlock(inL, inR, outL, outR []float64, params Params) {
	p.mustBePrepared()

	n := len(inL)
	if len(inR) != n || len(outL) != n || len(outR) != n {
		panic(fmt.Sprintf("modulation: block length mismatch: inL=%d inR=%d outL=%d outR=%d",
			len(inL), len(inR), len(outL), len(outR)))
	}

	for i := 0; i < n; i++ {
		delayL, delayR := p.mod.Advance(params, p.sampleRate)
		l, r := inL[i], inR[i]
		outL[i] = p.left.ProcessSample(l, delayL, params)
		outR[i] = p.right.ProcessSample(r, delayR, params)
	}
}

// ProcessFrames processes interleaved stereo frames in place.
func (p *Processor) ProcessFrames(frames [][2]float64, params Params) {
	p.mustBePrepared()

	for i := range frames {
		delayL, delayR := p.mod.Advance(params, p.sampleRate)
		frames[i][0] = p.left.ProcessSample(frames[i][0], delayL, params)
		frames[i][1] = p.right.ProcessSample(frames[i][1], delayR, params)
	}
}

// Prepared reports whether Prepare has completed at least once.
func (p *Processor) Prepared() bool { return p.prepared }

// SampleRate returns the prepared sample rate in Hz.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// MaxBlockSize returns the block size the host announced in Prepare.
func (p *Processor) MaxBlockSize() int { return p.maxBlockSize }

// BufferLen returns the per-channel delay buffer length in samples.
func (p *Processor) BufferLen() int { return p.left.Len() }

// Phase returns the current LFO phase in [0, 1).
func (p *Processor) Phase() float64 { return p.mod.Phase() }

func (p *Processor) mustBePrepared() {
	if !p.prepared {
		panic("modulation: processing before Prepare")
	}
}
