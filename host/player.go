package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/rs/zerolog"
)

const playerPollInterval = 20 * time.Millisecond

// Player plays float32 stereo streams on the default output device.
type Player struct {
	ctx        *oto.Context
	sampleRate int
	log        zerolog.Logger
}

// NewPlayer opens the audio device at sampleRate and waits until it is ready.
// Only one Player may exist per process.
func NewPlayer(sampleRate int, logger zerolog.Logger) (*Player, error) {
	ctx, ready, err := oto.NewContext(sampleRate, 2, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("host: open audio device: %w", err)
	}

	<-ready

	logger.Debug().Int("sample_rate", sampleRate).Msg("audio device ready")

	return &Player{ctx: ctx, sampleRate: sampleRate, log: logger}, nil
}

// SampleRate returns the device rate in Hz.
func (p *Player) SampleRate() int { return p.sampleRate }

// Play streams r until it reports io.EOF or ctx is cancelled.
func (p *Player) Play(ctx context.Context, r io.Reader) error {
	pl := p.ctx.NewPlayer(r)
	defer pl.Close()

	pl.Play()
	p.log.Info().Msg("playback started")

	ticker := time.NewTicker(playerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			pl.Pause()
			p.log.Info().Msg("playback interrupted")

			return ctx.Err()
		case <-ticker.C:
			if pl.IsPlaying() {
				continue
			}

			if err := pl.Err(); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("host: playback: %w", err)
			}

			p.log.Info().Msg("playback finished")

			return nil
		}
	}
}
