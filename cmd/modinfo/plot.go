package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-chorus/dsp/effects/modulation"
	"github.com/cwbudde/algo-chorus/measure/response"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch

	traceRateHz = 1.0
)

// writePlots saves the magnitude responses to path and one LFO cycle of the
// full-depth delay trace to <path>-delay<ext>.
func writePlots(path string, modes []modulation.Mode, spectra []response.Spectrum, sampleRate float64) error {
	rp, err := responsePlot(modes, spectra)
	if err != nil {
		return err
	}

	if err := rp.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	ext := filepath.Ext(path)
	tracePath := strings.TrimSuffix(path, ext) + "-delay" + ext

	dp, err := delayPlot(modes, sampleRate)
	if err != nil {
		return err
	}

	if err := dp.Save(plotWidth, plotHeight, tracePath); err != nil {
		return fmt.Errorf("save %s: %w", tracePath, err)
	}

	return nil
}

func responsePlot(modes []modulation.Mode, spectra []response.Spectrum) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Magnitude response at centre delay"
	p.X.Label.Text = "Frequency [Hz]"
	p.Y.Label.Text = "Magnitude [dB]"
	p.Add(plotter.NewGrid())

	var lines []interface{}

	for i, sp := range spectra {
		pts := make(plotter.XYs, len(sp.Freqs))
		for j := range pts {
			pts[j] = plotter.XY{X: sp.Freqs[j], Y: sp.MagnitudeDB[j]}
		}

		lines = append(lines, modes[i].String(), pts)
	}

	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, fmt.Errorf("response plot: %w", err)
	}

	return p, nil
}

func delayPlot(modes []modulation.Mode, sampleRate float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Delay over one LFO cycle (depth 1, offset 0.25)"
	p.X.Label.Text = "Time [s]"
	p.Y.Label.Text = "Delay [ms]"
	p.Add(plotter.NewGrid())

	frames := int(sampleRate / traceRateHz)

	var lines []interface{}

	for _, m := range modes {
		params := modulation.Params{Depth: 1, Rate: traceRateHz, PhaseOffset: 0.25, Mode: m}
		left, right := response.DelayTrace(params, sampleRate, frames)

		lines = append(lines, m.String()+" L", traceXYs(left, sampleRate), m.String()+" R", traceXYs(right, sampleRate))
	}

	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, fmt.Errorf("delay plot: %w", err)
	}

	return p, nil
}

func traceXYs(delays []float64, sampleRate float64) plotter.XYs {
	const stride = 64

	pts := make(plotter.XYs, 0, len(delays)/stride+1)
	for i := 0; i < len(delays); i += stride {
		pts = append(pts, plotter.XY{X: float64(i) / sampleRate, Y: delays[i] * 1e3})
	}

	return pts
}
