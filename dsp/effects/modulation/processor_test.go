package modulation

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-chorus/dsp/core"
	"github.com/cwbudde/algo-chorus/internal/testutil"
)

func mustPrepared(t *testing.T, sampleRate float64, blockSize int) *Processor {
	t.Helper()

	p := NewProcessor()
	if err := p.Prepare(sampleRate, blockSize); err != nil {
		t.Fatalf("Prepare(%v, %d) error = %v", sampleRate, blockSize, err)
	}

	return p
}

func requirePanic(t *testing.T, name string, fn func()) {
	t.Helper()

	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()

	fn()
}

func TestProcessBeforePreparePanics(t *testing.T) {
	p := NewProcessor()
	buf := make([]float64, 4)

	requirePanic(t, "ProcessBlock", func() { p.ProcessBlock(buf, buf, buf, buf, DefaultParams()) })
	requirePanic(t, "ProcessFrames", func() { p.ProcessFrames(make([][2]float64, 4), DefaultParams()) })
	requirePanic(t, "ProcessFrame", func() { p.ProcessFrame(0, 0, DefaultParams()) })
}

func TestPrepareValidation(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		blockSize  int
	}{
		{name: "zero rate", sampleRate: 0, blockSize: 64},
		{name: "negative rate", sampleRate: -44100, blockSize: 64},
		{name: "nan rate", sampleRate: math.NaN(), blockSize: 64},
		{name: "inf rate", sampleRate: math.Inf(1), blockSize: 64},
		{name: "rate too low for buffer", sampleRate: 0.2, blockSize: 64},
		{name: "negative block", sampleRate: 48000, blockSize: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor()
			if err := p.Prepare(tt.sampleRate, tt.blockSize); err == nil {
				t.Fatal("expected error")
			}

			if p.Prepared() {
				t.Fatal("processor should stay unprepared after a failed Prepare")
			}
		})
	}
}

func TestPrepareBufferLength(t *testing.T) {
	for _, tc := range []struct {
		sampleRate float64
		want       int
	}{
		{48000, 96000},
		{44100, 88200},
		{96000, 192000},
		{22050.3, 44101},
	} {
		p := mustPrepared(t, tc.sampleRate, 256)

		if got := p.BufferLen(); got != tc.want {
			t.Fatalf("sampleRate=%v: BufferLen() = %d, want %d", tc.sampleRate, got, tc.want)
		}

		if got := BufferLenFor(tc.sampleRate); got != tc.want {
			t.Fatalf("BufferLenFor(%v) = %d, want %d", tc.sampleRate, got, tc.want)
		}

		if p.SampleRate() != tc.sampleRate || p.MaxBlockSize() != 256 {
			t.Fatalf("accessors: sr=%v block=%d", p.SampleRate(), p.MaxBlockSize())
		}
	}
}

func TestNewPreparedProcessor(t *testing.T) {
	p, err := NewPreparedProcessor(core.WithSampleRate(44100), core.WithBlockSize(128))
	if err != nil {
		t.Fatalf("NewPreparedProcessor() error = %v", err)
	}

	if !p.Prepared() || p.SampleRate() != 44100 || p.MaxBlockSize() != 128 {
		t.Fatalf("unexpected processor state: prepared=%v sr=%v block=%d", p.Prepared(), p.SampleRate(), p.MaxBlockSize())
	}
}

func renderBlocks(p *Processor, inL, inR []float64, block int, params Params) ([]float64, []float64) {
	outL := make([]float64, len(inL))
	outR := make([]float64, len(inR))

	for start := 0; start < len(inL); start += block {
		end := min(start+block, len(inL))
		p.ProcessBlock(inL[start:end], inR[start:end], outL[start:end], outR[start:end], params)
	}

	return outL, outR
}

func TestProcessBlockMatchesFrameAPIs(t *testing.T) {
	params := DefaultParams()
	params.PhaseOffset = 0.3
	params.Depth = 0.8

	inL := testutil.DeterministicNoise(1, 0.5, 5000)
	inR := testutil.DeterministicSine(440, 48000, 0.5, 5000)

	wantL, wantR := renderBlocks(mustPrepared(t, 48000, 512), inL, inR, 512, params)

	frames := testutil.Frames(inL, inR)
	mustPrepared(t, 48000, 512).ProcessFrames(frames, params)
	gotL, gotR := testutil.Split(frames)

	testutil.RequireSliceEqual(t, gotL, wantL)
	testutil.RequireSliceEqual(t, gotR, wantR)

	single := mustPrepared(t, 48000, 1)
	for i := range inL {
		l, r := single.ProcessFrame(inL[i], inR[i], params)
		if l != wantL[i] || r != wantR[i] {
			t.Fatalf("frame %d: got (%v, %v) want (%v, %v)", i, l, r, wantL[i], wantR[i])
		}
	}
}

func TestProcessBlockSizeIndependent(t *testing.T) {
	params := DefaultParams()
	in := testutil.DeterministicNoise(9, 1, 4096)

	refL, refR := renderBlocks(mustPrepared(t, 44100, 4096), in, in, 4096, params)

	for _, block := range []int{1, 7, 64, 1000} {
		gotL, gotR := renderBlocks(mustPrepared(t, 44100, block), in, in, block, params)
		testutil.RequireSliceEqual(t, gotL, refL)
		testutil.RequireSliceEqual(t, gotR, refR)
	}
}

func TestProcessBlockInPlace(t *testing.T) {
	params := DefaultParams()
	in := testutil.DeterministicNoise(2, 1, 2048)

	wantL, wantR := renderBlocks(mustPrepared(t, 48000, 256), in, in, 256, params)

	l := append([]float64(nil), in...)
	r := append([]float64(nil), in...)
	p := mustPrepared(t, 48000, 256)

	for start := 0; start < len(l); start += 256 {
		p.ProcessBlock(l[start:start+256], r[start:start+256], l[start:start+256], r[start:start+256], params)
	}

	testutil.RequireSliceEqual(t, l, wantL)
	testutil.RequireSliceEqual(t, r, wantR)
}

func TestProcessBlockLengthMismatchPanics(t *testing.T) {
	p := mustPrepared(t, 48000, 64)

	requirePanic(t, "mismatch", func() {
		p.ProcessBlock(make([]float64, 4), make([]float64, 3), make([]float64, 4), make([]float64, 4), DefaultParams())
	})
}

func TestZeroPhaseOffsetKeepsChannelsIdentical(t *testing.T) {
	params := DefaultParams()
	params.PhaseOffset = 0

	in := testutil.DeterministicNoise(4, 1, 3000)
	outL, outR := renderBlocks(mustPrepared(t, 48000, 128), in, in, 128, params)

	testutil.RequireSliceEqual(t, outL, outR)
}

func TestPhaseOffsetDecorrelatesChannels(t *testing.T) {
	params := DefaultParams()
	params.PhaseOffset = 0.5
	params.DryWet = 1
	params.Depth = 1

	in := testutil.DeterministicNoise(4, 1, 6000)
	outL, outR := renderBlocks(mustPrepared(t, 48000, 128), in, in, 128, params)

	diff := 0.0
	for i := range outL {
		diff = math.Max(diff, math.Abs(outL[i]-outR[i]))
	}

	if diff < 1e-3 {
		t.Fatalf("channels nearly identical with half-cycle offset: max diff %v", diff)
	}
}

func TestDryWetZeroPassesInputThrough(t *testing.T) {
	params := DefaultParams()
	params.DryWet = 0
	params.Feedback = MaxFeedback

	inL := testutil.DeterministicNoise(6, 1, 4000)
	inR := testutil.DeterministicNoise(7, 1, 4000)

	outL, outR := renderBlocks(mustPrepared(t, 48000, 256), inL, inR, 256, params)

	testutil.RequireSliceEqual(t, outL, inL)
	testutil.RequireSliceEqual(t, outR, inR)
}

func TestSilenceInSilenceOut(t *testing.T) {
	for _, mode := range Modes() {
		params := DefaultParams()
		params.Mode = mode
		params.Feedback = MaxFeedback

		in := make([]float64, 20000)
		outL, outR := renderBlocks(mustPrepared(t, 48000, 512), in, in, 512, params)

		if testutil.PeakAbs(outL) != 0 || testutil.PeakAbs(outR) != 0 {
			t.Fatalf("%s: silence produced output", mode)
		}
	}
}

func TestImpulseTailBoundedWithMaxFeedback(t *testing.T) {
	for _, mode := range Modes() {
		params := DefaultParams()
		params.Mode = mode
		params.Feedback = MaxFeedback
		params.DryWet = 1
		params.Depth = 1

		in := testutil.Impulse(96000, 0)
		outL, outR := renderBlocks(mustPrepared(t, 48000, 512), in, in, 512, params)

		testutil.RequireFinite(t, outL)
		testutil.RequireFinite(t, outR)

		head := testutil.PeakAbs(outL[:48000])
		tail := testutil.PeakAbs(outL[48000:])
		if tail > head {
			t.Fatalf("%s: tail peak %v exceeds head peak %v", mode, tail, head)
		}
	}
}

// Unit impulse through a fully wet, feedback-free chorus at 48 kHz. The read
// head starts 840 samples behind (LFO at 0 maps to 17.5 ms) and drifts as the
// LFO rises, so the impulse surfaces a little after frame 840 with linear
// interpolation weights around the fractional read position.
func TestImpulseEndToEnd(t *testing.T) {
	const (
		sampleRate = 48000.0
		frames     = 2000
	)

	params := Params{DryWet: 1, Depth: 1, Rate: 1, PhaseOffset: 0, Feedback: 0, Mode: ModeChorus}

	p := mustPrepared(t, sampleRate, 256)
	bufLen := float64(p.BufferLen())

	in := testutil.Impulse(frames, 0)
	outL, outR := renderBlocks(p, in, in, 256, params)

	if outL[0] != 0 || outR[0] != 0 {
		t.Fatalf("frame 0 output = (%v, %v), want 0", outL[0], outR[0])
	}

	phase := 0.0
	first := -1

	for n := 0; n < frames; n++ {
		lfo := math.Sin(2 * math.Pi * phase)
		phase += params.Rate / sampleRate

		delaySeconds := 0.005 + (lfo+1)/2*(0.03-0.005)
		readHead := float64(n) - delaySeconds*sampleRate
		if readHead < 0 {
			readHead += bufLen
		}

		x0 := math.Floor(readHead)
		frac := readHead - x0

		want := 0.0
		switch {
		case x0 == 0:
			want = 1 - frac
		case x0 == bufLen-1:
			want = frac
		}

		if math.Abs(outL[n]-want) > 1e-9 {
			t.Fatalf("frame %d: got %v want %v (readHead %v)", n, outL[n], want, readHead)
		}

		if outL[n] != 0 && first < 0 {
			first = n
		}
	}

	if first <= 840 || first > 1000 {
		t.Fatalf("impulse surfaced at frame %d, want shortly after 840", first)
	}
}

func TestPrepareDiscardsState(t *testing.T) {
	params := DefaultParams()
	in := testutil.DeterministicNoise(8, 1, 3000)

	p := mustPrepared(t, 48000, 256)
	renderBlocks(p, in, in, 256, params)

	if err := p.Prepare(48000, 256); err != nil {
		t.Fatal(err)
	}

	if p.Phase() != 0 {
		t.Fatalf("phase after Prepare = %v", p.Phase())
	}

	gotL, _ := renderBlocks(p, in, in, 256, params)
	wantL, _ := renderBlocks(mustPrepared(t, 48000, 256), in, in, 256, params)

	testutil.RequireSliceEqual(t, gotL, wantL)
}

func TestPrepareNewSampleRateResizes(t *testing.T) {
	p := mustPrepared(t, 48000, 256)

	if err := p.Prepare(44100, 256); err != nil {
		t.Fatal(err)
	}

	if p.BufferLen() != 88200 {
		t.Fatalf("BufferLen() = %d, want 88200", p.BufferLen())
	}

	if err := p.Prepare(96000, 256); err != nil {
		t.Fatal(err)
	}

	if p.BufferLen() != 192000 {
		t.Fatalf("BufferLen() = %d, want 192000", p.BufferLen())
	}
}

func TestResetRestoresState(t *testing.T) {
	params := DefaultParams()
	in := testutil.Impulse(2048, 0)

	p := mustPrepared(t, 48000, 256)
	out1, _ := renderBlocks(p, in, in, 256, params)

	p.Reset()

	out2, _ := renderBlocks(p, in, in, 256, params)

	testutil.RequireSliceEqual(t, out2, out1)
}

func TestParameterChangesApplyPerBlock(t *testing.T) {
	p := mustPrepared(t, 48000, 128)
	in := testutil.DeterministicNoise(12, 1, 256)
	out := make([]float64, 256)
	scratch := make([]float64, 256)

	dry := DefaultParams()
	dry.DryWet = 0

	p.ProcessBlock(in[:128], in[:128], out[:128], scratch[:128], dry)
	testutil.RequireSliceEqual(t, out[:128], in[:128])

	wet := DefaultParams()
	wet.DryWet = 1

	p.ProcessBlock(in[128:], in[128:], out[128:], scratch[128:], wet)

	same := true
	for i := 128; i < 256; i++ {
		if out[i] != in[i] {
			same = false
			break
		}
	}

	if same {
		t.Fatal("wet block should differ from its input")
	}
}

func TestProcessBlockDoesNotAllocate(t *testing.T) {
	p := mustPrepared(t, 48000, 512)
	params := DefaultParams()

	inL := testutil.DeterministicNoise(1, 1, 512)
	inR := testutil.DeterministicNoise(2, 1, 512)
	outL := make([]float64, 512)
	outR := make([]float64, 512)
	frames := make([][2]float64, 512)

	allocs := testing.AllocsPerRun(20, func() {
		p.ProcessBlock(inL, inR, outL, outR, params)
		p.ProcessFrames(frames, params)
	})

	if allocs != 0 {
		t.Fatalf("processing allocated %v times per run", allocs)
	}
}

func BenchmarkProcessBlock(b *testing.B) {
	p := NewProcessor()
	if err := p.Prepare(48000, 512); err != nil {
		b.Fatal(err)
	}

	params := DefaultParams()
	inL := make([]float64, 512)
	inR := make([]float64, 512)

	for i := range inL {
		inL[i] = math.Sin(float64(i) * 0.05)
		inR[i] = math.Cos(float64(i) * 0.05)
	}

	outL := make([]float64, 512)
	outR := make([]float64, 512)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		p.ProcessBlock(inL, inR, outL, outR, params)
	}
}
