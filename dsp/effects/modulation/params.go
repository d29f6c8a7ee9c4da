package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chorus/dsp/core"
)

// Parameter ranges.
const (
	MinDryWet      = 0.0
	MaxDryWet      = 1.0
	MinDepth       = 0.0
	MaxDepth       = 1.0
	MinRateHz      = 0.1
	MaxRateHz      = 20.0
	MinPhaseOffset = 0.0
	MaxPhaseOffset = 1.0
	MinFeedback    = 0.0
	MaxFeedback    = 0.98
)

const (
	defaultDryWet      = 0.5
	defaultDepth       = 0.5
	defaultRateHz      = 10.0
	defaultPhaseOffset = 0.0
	defaultFeedback    = 0.5
)

// Params is an immutable snapshot of the effect controls.
//
// A snapshot is handed to every block call; the processor never keeps it and
// never validates it on the audio path. Hosts validate or clamp on their side.
type Params struct {
	DryWet      float64 // wet amount in [0, 1]
	Depth       float64 // LFO amplitude scale in [0, 1]
	Rate        float64 // LFO frequency in Hz, [0.1, 20]
	PhaseOffset float64 // right-channel LFO offset as a fraction of a cycle, [0, 1]
	Feedback    float64 // feedback gain in [0, 0.98]
	Mode        Mode
}

// DefaultParams returns the factory preset.
func DefaultParams() Params {
	return Params{
		DryWet:      defaultDryWet,
		Depth:       defaultDepth,
		Rate:        defaultRateHz,
		PhaseOffset: defaultPhaseOffset,
		Feedback:    defaultFeedback,
		Mode:        ModeChorus,
	}
}

// ParamsOption mutates a parameter snapshot under construction.
type ParamsOption func(*Params) error

// WithDryWet sets wet amount in [0, 1].
func WithDryWet(dryWet float64) ParamsOption {
	return func(p *Params) error {
		if err := checkRange("dry/wet", dryWet, MinDryWet, MaxDryWet); err != nil {
			return err
		}

		p.DryWet = dryWet

		return nil
	}
}

// WithDepth sets LFO depth in [0, 1].
func WithDepth(depth float64) ParamsOption {
	return func(p *Params) error {
		if err := checkRange("depth", depth, MinDepth, MaxDepth); err != nil {
			return err
		}

		p.Depth = depth

		return nil
	}
}

// WithRateHz sets LFO frequency in Hz.
func WithRateHz(rateHz float64) ParamsOption {
	return func(p *Params) error {
		if err := checkRange("rate", rateHz, MinRateHz, MaxRateHz); err != nil {
			return err
		}

		p.Rate = rateHz

		return nil
	}
}

// WithPhaseOffset sets the right-channel LFO offset in cycles.
func WithPhaseOffset(offset float64) ParamsOption {
	return func(p *Params) error {
		if err := checkRange("phase offset", offset, MinPhaseOffset, MaxPhaseOffset); err != nil {
			return err
		}

		p.PhaseOffset = offset

		return nil
	}
}

// WithFeedback sets feedback gain in [0, 0.98].
func WithFeedback(feedback float64) ParamsOption {
	return func(p *Params) error {
		if err := checkRange("feedback", feedback, MinFeedback, MaxFeedback); err != nil {
			return err
		}

		p.Feedback = feedback

		return nil
	}
}

// WithMode sets the delay-range mode.
func WithMode(mode Mode) ParamsOption {
	return func(p *Params) error {
		if !mode.Valid() {
			return fmt.Errorf("modulation mode must be chorus or flanger: %d", int(mode))
		}

		p.Mode = mode

		return nil
	}
}

// NewParams starts from DefaultParams and applies opts in order.
func NewParams(opts ...ParamsOption) (Params, error) {
	p := DefaultParams()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&p); err != nil {
			return Params{}, err
		}
	}

	return p, nil
}

// Validate reports the first field outside its declared range.
func (p Params) Validate() error {
	checks := []struct {
		name   string
		v      float64
		lo, hi float64
	}{
		{"dry/wet", p.DryWet, MinDryWet, MaxDryWet},
		{"depth", p.Depth, MinDepth, MaxDepth},
		{"rate", p.Rate, MinRateHz, MaxRateHz},
		{"phase offset", p.PhaseOffset, MinPhaseOffset, MaxPhaseOffset},
		{"feedback", p.Feedback, MinFeedback, MaxFeedback},
	}

	for _, c := range checks {
		if err := checkRange(c.name, c.v, c.lo, c.hi); err != nil {
			return err
		}
	}

	if !p.Mode.Valid() {
		return fmt.Errorf("modulation mode must be chorus or flanger: %d", int(p.Mode))
	}

	return nil
}

// Clamp returns p with every field forced into its declared range.
// NaN fields fall back to their defaults; an unknown mode becomes flanger.
func (p Params) Clamp() Params {
	def := DefaultParams()

	out := Params{
		DryWet:      clampOr(p.DryWet, MinDryWet, MaxDryWet, def.DryWet),
		Depth:       clampOr(p.Depth, MinDepth, MaxDepth, def.Depth),
		Rate:        clampOr(p.Rate, MinRateHz, MaxRateHz, def.Rate),
		PhaseOffset: clampOr(p.PhaseOffset, MinPhaseOffset, MaxPhaseOffset, def.PhaseOffset),
		Feedback:    clampOr(p.Feedback, MinFeedback, MaxFeedback, def.Feedback),
		Mode:        p.Mode,
	}

	if !out.Mode.Valid() {
		out.Mode = ModeFlanger
	}

	return out
}

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || !core.IsFinite(v) {
		return fmt.Errorf("modulation %s must be in [%g, %g]: %f", name, lo, hi, v)
	}

	return nil
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}

	return core.Clamp(v, lo, hi)
}
