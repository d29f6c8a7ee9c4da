// Command chorusfx runs audio through the stereo chorus/flanger.
//
// Usage:
//
//	chorusfx [flags]
//
// With -in and -out it renders a WAV file offline. With -play it plays the
// input (or a generated test tone when -in is empty) on the default audio
// device; while playing, lines such as "rate 2.5" or "mode flanger" typed on
// stdin change parameters live.
//
// Examples:
//
//	chorusfx -in dry.wav -out wet.wav -mode flanger -feedback 0.7
//	chorusfx -preset warm.yaml -in dry.wav -out wet.wav
//	chorusfx -play -tone 220 -duration 10s -rate 0.5 -depth 1
//	chorusfx -depth 0.8 -save-preset deep.yaml
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-chorus/dsp/effects/modulation"
	"github.com/cwbudde/algo-chorus/host"
	"github.com/cwbudde/algo-chorus/preset"
)

const toneSampleRate = 48000

type options struct {
	in, out    string
	play       bool
	presetPath string
	savePath   string
	block      int
	tail       time.Duration
	toneHz     float64
	duration   time.Duration
	verbose    bool

	dryWet, depth, rate, phaseOffset, feedback float64
	mode                                       string
}

func main() {
	var o options

	defaults := modulation.DefaultParams()

	flag.StringVar(&o.in, "in", "", "input WAV file")
	flag.StringVar(&o.out, "out", "", "output WAV file (offline render)")
	flag.BoolVar(&o.play, "play", false, "play through the default audio device")
	flag.StringVar(&o.presetPath, "preset", "", "YAML preset to start from")
	flag.StringVar(&o.savePath, "save-preset", "", "write the resulting parameters to this YAML file")
	flag.IntVar(&o.block, "block", 512, "processing block size in frames")
	flag.DurationVar(&o.tail, "tail", time.Second, "silence appended to offline renders")
	flag.Float64Var(&o.toneHz, "tone", 220, "test tone frequency when playing without -in")
	flag.DurationVar(&o.duration, "duration", 5*time.Second, "test tone length")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.Float64Var(&o.dryWet, "drywet", defaults.DryWet, "wet amount [0, 1]")
	flag.Float64Var(&o.depth, "depth", defaults.Depth, "modulation depth [0, 1]")
	flag.Float64Var(&o.rate, "rate", defaults.Rate, "LFO rate in Hz [0.1, 20]")
	flag.Float64Var(&o.phaseOffset, "phase-offset", defaults.PhaseOffset, "right channel LFO offset in cycles [0, 1]")
	flag.Float64Var(&o.feedback, "feedback", defaults.Feedback, "feedback gain [0, 0.98]")
	flag.StringVar(&o.mode, "mode", defaults.Mode.String(), "chorus or flanger")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chorusfx [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders or plays audio through the stereo chorus/flanger.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  chorusfx -in dry.wav -out wet.wav -mode flanger\n")
		fmt.Fprintf(os.Stderr, "  chorusfx -play -tone 220 -rate 0.5 -depth 1\n")
	}
	flag.Parse()

	level := zerolog.InfoLevel
	if o.verbose {
		level = zerolog.DebugLevel
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	store, err := buildStore(o)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid parameters")
	}

	log.Debug().Interface("params", store.Snapshot()).Msg("parameters resolved")

	if o.savePath != "" {
		if err := preset.Save(o.savePath, store.Snapshot()); err != nil {
			log.Fatal().Err(err).Msg("error saving preset")
		}

		log.Info().Str("path", o.savePath).Msg("preset saved")
	}

	switch {
	case o.out != "":
		if o.in == "" {
			log.Fatal().Msg("-out requires -in")
		}

		if err := render(o, store); err != nil {
			log.Fatal().Err(err).Msg("render failed")
		}
	case o.play:
		if err := play(o, store); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("playback failed")
		}
	case o.savePath == "":
		flag.Usage()
		os.Exit(2)
	}
}

// buildStore layers the preset file under explicitly set flags.
func buildStore(o options) (*host.Store, error) {
	store := host.NewStore()

	if o.presetPath != "" {
		p, err := preset.Load(o.presetPath)
		if err != nil {
			return nil, err
		}

		store.Load(p)
	}

	var err error

	flag.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}

		switch f.Name {
		case "drywet":
			err = store.Set(host.IDDryWet, o.dryWet)
		case "depth":
			err = store.Set(host.IDDepth, o.depth)
		case "rate":
			err = store.Set(host.IDRate, o.rate)
		case "phase-offset":
			err = store.Set(host.IDPhaseOffset, o.phaseOffset)
		case "feedback":
			err = store.Set(host.IDFeedback, o.feedback)
		case "mode":
			var mode modulation.Mode
			if mode, err = modulation.ParseMode(o.mode); err == nil {
				err = store.Set(host.IDType, float64(mode))
			}
		}
	})

	return store, err
}

func render(o options, store *host.Store) error {
	in, err := os.Open(o.in)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(o.out)
	if err != nil {
		return err
	}

	start := time.Now()

	format, err := host.Render(out, in, modulation.NewProcessor(), store, host.RenderConfig{
		BlockSize: o.block,
		Tail:      o.tail,
	})
	if err != nil {
		out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	log.Info().
		Str("in", o.in).
		Str("out", o.out).
		Int("sample_rate", int(format.SampleRate)).
		Dur("took", time.Since(start)).
		Msg("render complete")

	return nil
}

func play(o options, store *host.Store) error {
	src, rate, closeSrc, err := openSource(o)
	if err != nil {
		return err
	}
	defer closeSrc()

	proc := modulation.NewProcessor()
	if err := proc.Prepare(float64(rate), o.block); err != nil {
		return err
	}

	fx, err := host.NewStreamer(src, proc, store)
	if err != nil {
		return err
	}

	player, err := host.NewPlayer(int(rate), log.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	eg.Go(func() error {
		select {
		case <-sigChan:
			return context.Canceled
		case <-ctx.Done():
			return nil
		}
	})

	eg.Go(func() error {
		defer cancel()
		return player.Play(ctx, host.NewReader(fx, proc.MaxBlockSize()))
	})

	// Scan blocks on stdin and cannot be interrupted, so it stays outside
	// the group.
	go readControls(os.Stdin, store)

	return eg.Wait()
}

// openSource returns the WAV input or a generated stereo sine.
func openSource(o options) (beep.Streamer, beep.SampleRate, func(), error) {
	if o.in == "" {
		sr := beep.SampleRate(toneSampleRate)
		return tone(sr, o.toneHz, sr.N(o.duration)), sr, func() {}, nil
	}

	f, err := os.Open(o.in)
	if err != nil {
		return nil, 0, nil, err
	}

	stream, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, 0, nil, fmt.Errorf("decode %s: %w", o.in, err)
	}

	return stream, format.SampleRate, func() { stream.Close() }, nil
}

func tone(sr beep.SampleRate, freqHz float64, frames int) beep.Streamer {
	step := 2 * math.Pi * freqHz / float64(sr)
	pos := 0

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= frames {
			return 0, false
		}

		for i := range samples {
			if pos >= frames {
				break
			}

			v := 0.5 * math.Sin(step*float64(pos))
			samples[i] = [2]float64{v, v}
			pos++
			n++
		}

		return n, true
	})
}

func readControls(r io.Reader, store *host.Store) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}

		if err := store.Apply(line); err != nil {
			log.Warn().Err(err).Str("line", line).Msg("ignored control")
			continue
		}

		log.Info().Interface("params", store.Snapshot()).Msg("parameters updated")
	}
}
