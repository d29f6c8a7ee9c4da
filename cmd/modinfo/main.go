// Command modinfo prints the delay ranges and comb notches of the
// chorus/flanger modes.
//
// Usage:
//
//	modinfo [flags] [mode ...]
//
// Without arguments it reports every mode.
//
// Examples:
//
//	modinfo
//	modinfo -sample-rate 44100 flanger
//	modinfo -feedback 0.7 -window blackman chorus
//	modinfo -plot flanger.png flanger
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-chorus/dsp/effects/modulation"
	"github.com/cwbudde/algo-chorus/dsp/window"
	"github.com/cwbudde/algo-chorus/measure/response"
)

const maxListedNotches = 4

type config struct {
	sampleRate float64
	irLength   int
	window     window.Type
	minDepthDB float64
	feedback   float64
}

type modeReport struct {
	mode               modulation.Mode
	minDelay, maxDelay float64 // seconds
	centerDelay        float64 // seconds
	predicted          []float64
	measured           []float64
}

func main() {
	sampleRate := flag.Float64("sample-rate", 48000, "sample rate in Hz")
	irLength := flag.Int("ir-length", 8192, "impulse response length in samples")
	windowName := flag.String("window", "hann", "fade-out window for the response analysis")
	minDepth := flag.Float64("min-depth", 20, "minimum notch depth in dB")
	feedback := flag.Float64("feedback", 0, "feedback gain used for the measured response")
	plotPath := flag.String("plot", "", "write magnitude response PNG here (and a -delay.png trace next to it)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: modinfo [flags] [mode ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints delay ranges and comb notches of the modulation modes.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  modinfo -sample-rate 44100 flanger\n")
		fmt.Fprintf(os.Stderr, "  modinfo -plot flanger.png flanger\n")
	}
	flag.Parse()

	wt, err := window.ParseType(*windowName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	modes, err := resolveModes(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := config{
		sampleRate: *sampleRate,
		irLength:   *irLength,
		window:     wt,
		minDepthDB: *minDepth,
		feedback:   *feedback,
	}

	reports := make([]modeReport, 0, len(modes))
	spectra := make([]response.Spectrum, 0, len(modes))

	for _, m := range modes {
		r, sp, err := analyzeMode(m, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", m, err)
			os.Exit(1)
		}

		reports = append(reports, r)
		spectra = append(spectra, sp)
	}

	if err := printReport(os.Stdout, reports, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write report: %v\n", err)
		os.Exit(1)
	}

	if *plotPath != "" {
		if err := writePlots(*plotPath, modes, spectra, cfg.sampleRate); err != nil {
			fmt.Fprintf(os.Stderr, "error: plot: %v\n", err)
			os.Exit(1)
		}
	}
}

func resolveModes(names []string) ([]modulation.Mode, error) {
	if len(names) == 0 {
		return modulation.Modes(), nil
	}

	out := make([]modulation.Mode, 0, len(names))
	for _, n := range names {
		m, err := modulation.ParseMode(n)
		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	return out, nil
}

// analyzeMode measures the mode at its centre delay: depth zero, equal dry
// and wet.
func analyzeMode(m modulation.Mode, cfg config) (modeReport, response.Spectrum, error) {
	lo, hi := m.DelayRange()
	center := modulation.MapDelaySeconds(m, 0)

	p := modulation.Params{DryWet: 0.5, Depth: 0, Rate: modulation.MinRateHz, Feedback: cfg.feedback, Mode: m}
	if err := p.Validate(); err != nil {
		return modeReport{}, response.Spectrum{}, err
	}

	ir, _, err := response.ImpulseResponse(p, cfg.sampleRate, cfg.irLength)
	if err != nil {
		return modeReport{}, response.Spectrum{}, err
	}

	sp, err := response.Analyze(ir, cfg.sampleRate, response.WithWindow(cfg.window))
	if err != nil {
		return modeReport{}, response.Spectrum{}, err
	}

	return modeReport{
		mode:        m,
		minDelay:    lo,
		maxDelay:    hi,
		centerDelay: center,
		predicted:   response.CombNotches(center, cfg.sampleRate/2),
		measured:    sp.Notches(cfg.minDepthDB),
	}, sp, nil
}

func printReport(w io.Writer, reports []modeReport, cfg config) error {
	if _, err := fmt.Fprintf(w, "Sample rate %.0f Hz, buffer %d samples per channel, window %s\n\n",
		cfg.sampleRate, modulation.BufferLenFor(cfg.sampleRate), cfg.window); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Mode\tDelay [ms]\tDelay [samples]\tCentre [ms]\tNotches (pred/meas)\tFirst notches [Hz]\n")
	fmt.Fprintf(tw, "----\t----------\t---------------\t-----------\t-------------------\t------------------\n")

	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%.1f-%.1f\t%.1f-%.1f\t%.2f\t%d/%d\t%s\n",
			r.mode,
			r.minDelay*1e3, r.maxDelay*1e3,
			r.minDelay*cfg.sampleRate, r.maxDelay*cfg.sampleRate,
			r.centerDelay*1e3,
			len(r.predicted), len(r.measured),
			formatHz(r.measured, maxListedNotches),
		)
	}

	return tw.Flush()
}

func formatHz(freqs []float64, limit int) string {
	if len(freqs) == 0 {
		return "-"
	}

	n := len(freqs)
	if n > limit {
		n = limit
	}

	parts := make([]string, n)
	for i, f := range freqs[:n] {
		parts[i] = fmt.Sprintf("%.0f", f)
	}

	s := strings.Join(parts, " ")
	if len(freqs) > limit {
		s += " ..."
	}

	return s
}
