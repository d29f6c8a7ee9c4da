package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-chorus/dsp/core"
	"github.com/cwbudde/algo-chorus/dsp/effects/modulation"
	"github.com/cwbudde/algo-chorus/dsp/window"
)

// FloorDB is the lowest level Analyze reports; exact zeros map here instead
// of -Inf.
const FloorDB = -240.0

var errEmptyResponse = errors.New("response: impulse response must not be empty")

// Option configures Analyze.
type Option func(*config)

type config struct {
	fftSize    int
	windowType window.Type
}

func defaultConfig() config {
	return config{windowType: window.TypeHann}
}

// WithFFTSize sets the transform length. It must be a power of two no
// shorter than the response; zero picks the next power of two.
func WithFFTSize(n int) Option {
	return func(c *config) {
		c.fftSize = n
	}
}

// WithWindow selects the fade-out window applied to the response tail.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.windowType = t
	}
}

// DelayTrace returns the left and right delay times in seconds that a fresh
// Modulator produces over frames frames.
func DelayTrace(p modulation.Params, sampleRate float64, frames int) (left, right []float64) {
	if frames <= 0 || sampleRate <= 0 {
		return nil, nil
	}

	left = make([]float64, frames)
	right = make([]float64, frames)

	var mod modulation.Modulator
	for i := range left {
		l, r := mod.Advance(p, sampleRate)
		left[i] = l / sampleRate
		right[i] = r / sampleRate
	}

	return left, right
}

// ImpulseResponse feeds a unit impulse on both channels into a freshly
// prepared Processor and returns length frames of output.
func ImpulseResponse(p modulation.Params, sampleRate float64, length int) (left, right []float64, err error) {
	if length <= 0 {
		return nil, nil, fmt.Errorf("response: length must be > 0: %d", length)
	}

	proc := modulation.NewProcessor()
	if err := proc.Prepare(sampleRate, length); err != nil {
		return nil, nil, err
	}

	left = make([]float64, length)
	right = make([]float64, length)
	left[0], right[0] = 1, 1

	proc.ProcessBlock(left, right, left, right, p)

	return left, right, nil
}

// Spectrum is a one-sided magnitude response.
type Spectrum struct {
	SampleRate  float64
	FFTSize     int
	Freqs       []float64 // bin centre frequencies in Hz, DC to Nyquist
	MagnitudeDB []float64 // power in dB, floored at FloorDB
}

// BinHz returns the bin spacing in Hz.
func (s Spectrum) BinHz() float64 {
	if s.FFTSize == 0 {
		return 0
	}

	return s.SampleRate / float64(s.FFTSize)
}

// Analyze computes the magnitude response of ir. The falling half of the
// configured window fades the response out so the direct impulse at index 0
// is kept at full weight.
func Analyze(ir []float64, sampleRate float64, opts ...Option) (Spectrum, error) {
	if len(ir) == 0 {
		return Spectrum{}, errEmptyResponse
	}

	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return Spectrum{}, fmt.Errorf("response: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	fftSize := cfg.fftSize
	if fftSize == 0 {
		fftSize = nextPowerOf2(len(ir))
	}

	if fftSize < len(ir) || fftSize&(fftSize-1) != 0 {
		return Spectrum{}, fmt.Errorf("response: fft size must be a power of two >= %d: %d", len(ir), fftSize)
	}

	shaped := append([]float64(nil), ir...)
	fade := window.Generate(cfg.windowType, 2*len(ir)+1)[len(ir) : 2*len(ir)]
	if err := window.ApplyCoefficientsInPlace(shaped, fade); err != nil {
		return Spectrum{}, err
	}

	in := make([]complex128, fftSize)
	for i, v := range shaped {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Spectrum{}, fmt.Errorf("response: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Spectrum{}, fmt.Errorf("response: fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for i := range re {
		re[i], im[i] = real(out[i]), imag(out[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	db := power
	for i, pw := range power {
		db[i] = math.Max(core.LinearPowerToDB(pw), FloorDB)
	}

	freqs := make([]float64, bins)
	floats.Span(freqs, 0, sampleRate*float64(bins-1)/float64(fftSize))

	return Spectrum{
		SampleRate:  sampleRate,
		FFTSize:     fftSize,
		Freqs:       freqs,
		MagnitudeDB: db,
	}, nil
}

// Notches returns the frequencies of local minima that lie at least
// minDepthDB below the spectrum maximum, in ascending order.
func (s Spectrum) Notches(minDepthDB float64) []float64 {
	if len(s.MagnitudeDB) < 3 {
		return nil
	}

	limit := floats.Max(s.MagnitudeDB) - minDepthDB

	var out []float64

	db := s.MagnitudeDB
	for i := 1; i < len(db)-1; i++ {
		if db[i] < db[i-1] && db[i] <= db[i+1] && db[i] <= limit {
			out = append(out, s.Freqs[i])
		}
	}

	return out
}

// CombNotches returns the analytic notch frequencies (2k+1)/(2*delay) of a
// feed-forward comb with equal dry and delayed gains, up to maxHz.
func CombNotches(delaySeconds, maxHz float64) []float64 {
	if delaySeconds <= 0 || maxHz <= 0 {
		return nil
	}

	var out []float64

	for k := 0; ; k++ {
		f := float64(2*k+1) / (2 * delaySeconds)
		if f > maxHz {
			return out
		}

		out = append(out, f)
	}
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
