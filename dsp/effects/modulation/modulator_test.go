package modulation

import (
	"math"
	"testing"
)

func TestModulatorPhaseStaysInUnitInterval(t *testing.T) {
	for _, tc := range []struct {
		rate, sampleRate float64
	}{
		{0.1, 48000},
		{20, 48000},
		{20, 8000},
		{7.3, 44100},
		{20, 40},
	} {
		var m Modulator

		p := DefaultParams()
		p.Rate = tc.rate

		for i := 0; i < 100000; i++ {
			m.Advance(p, tc.sampleRate)

			if ph := m.Phase(); ph < 0 || ph >= 1 {
				t.Fatalf("rate=%v sr=%v step %d: phase %v outside [0,1)", tc.rate, tc.sampleRate, i, ph)
			}
		}
	}
}

func TestModulatorPhaseIncrement(t *testing.T) {
	var m Modulator

	p := DefaultParams()
	p.Rate = 1

	m.Advance(p, 48000)

	if got, want := m.Phase(), 1.0/48000; got != want {
		t.Fatalf("phase after one step = %v, want %v", got, want)
	}

	m.Reset()

	if m.Phase() != 0 {
		t.Fatalf("phase after Reset = %v", m.Phase())
	}
}

func TestRightPhaseSingleWrap(t *testing.T) {
	for i := 0; i <= 200; i++ {
		phase := math.Min(float64(i)/200, math.Nextafter(1, 0))

		for j := 0; j <= 100; j++ {
			offset := float64(j) / 100

			raw := phase + offset
			if raw < 0 || raw >= 2 {
				t.Fatalf("phase+offset = %v outside [0,2)", raw)
			}

			got := RightPhase(phase, offset)
			if got < 0 || got >= 1 {
				t.Fatalf("RightPhase(%v, %v) = %v outside [0,1)", phase, offset, got)
			}
		}
	}
}

func TestMapDelaySecondsRange(t *testing.T) {
	const eps = 1e-15

	for _, mode := range Modes() {
		lo, hi := mode.DelayRange()

		for d := 0; d <= 10; d++ {
			depth := float64(d) / 10

			for k := 0; k <= 100; k++ {
				lfo := -1 + 2*float64(k)/100

				got := MapDelaySeconds(mode, lfo*depth)
				if got < lo-eps || got > hi+eps {
					t.Fatalf("%s depth=%v lfo=%v: %v outside [%v, %v]", mode, depth, lfo, got, lo, hi)
				}
			}
		}
	}
}

func TestMapDelaySecondsEndpoints(t *testing.T) {
	for _, tc := range []struct {
		mode        Mode
		lo, mid, hi float64
	}{
		{ModeChorus, 0.005, 0.0175, 0.03},
		{ModeFlanger, 0.001, 0.003, 0.005},
	} {
		for _, pt := range []struct{ lfo, want float64 }{{-1, tc.lo}, {0, tc.mid}, {1, tc.hi}} {
			if got := MapDelaySeconds(tc.mode, pt.lfo); math.Abs(got-pt.want) > 1e-15 {
				t.Fatalf("%s lfo=%v: got %v want %v", tc.mode, pt.lfo, got, pt.want)
			}
		}
	}
}

func TestModulatorStartsAtRangeMidpoint(t *testing.T) {
	var m Modulator

	p := DefaultParams()
	p.Depth = 1

	left, right := m.Advance(p, 48000)
	if math.Abs(left-840) > 1e-9 || math.Abs(right-840) > 1e-9 {
		t.Fatalf("initial delays = (%v, %v), want 840 samples", left, right)
	}
}

func TestModulatorHalfCycleOffsetMirrorsChannels(t *testing.T) {
	m := Modulator{phase: 0.25}

	p := DefaultParams()
	p.Depth = 1
	p.PhaseOffset = 0.5
	p.Mode = ModeFlanger

	left, right := m.Advance(p, 48000)
	if math.Abs(left-0.005*48000) > 1e-9 {
		t.Fatalf("left delay = %v, want %v", left, 0.005*48000)
	}

	if math.Abs(right-0.001*48000) > 1e-9 {
		t.Fatalf("right delay = %v, want %v", right, 0.001*48000)
	}
}

func TestModulatorZeroDepthHoldsMidpoint(t *testing.T) {
	var m Modulator

	p := DefaultParams()
	p.Depth = 0
	p.Mode = ModeFlanger

	for i := 0; i < 1000; i++ {
		left, right := m.Advance(p, 44100)
		if math.Abs(left-0.003*44100) > 1e-9 || left != right {
			t.Fatalf("step %d: delays (%v, %v), want constant %v", i, left, right, 0.003*44100)
		}
	}
}
