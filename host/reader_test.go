package host

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

func TestReaderInterleavesFloat32LE(t *testing.T) {
	frames := [][2]float64{{0.5, -0.5}, {1, -1}, {0.25, 0}}
	r := NewReader(&frameStreamer{frames: frames}, 2)

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	if len(data) != len(frames)*bytesPerFrame {
		t.Fatalf("len=%d, want %d", len(data), len(frames)*bytesPerFrame)
	}

	for i, f := range frames {
		l := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8:]))
		rr := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8+4:]))

		if float64(l) != f[0] || float64(rr) != f[1] {
			t.Fatalf("frame %d=(%v, %v), want %v", i, l, rr, f)
		}
	}
}

func TestReaderLimitsChunkToScratch(t *testing.T) {
	frames := make([][2]float64, 10)
	r := NewReader(&frameStreamer{frames: frames}, 4)

	n, err := r.Read(make([]byte, 1024))
	if err != nil {
		t.Fatal(err)
	}

	if n != 4*bytesPerFrame {
		t.Fatalf("n=%d, want %d", n, 4*bytesPerFrame)
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := NewReader(&frameStreamer{frames: make([][2]float64, 1)}, 4)

	n, err := r.Read(make([]byte, bytesPerFrame-1))
	if n != 0 || err != nil {
		t.Fatalf("Read(short)=(%d, %v), want (0, nil)", n, err)
	}
}

type failingStreamer struct{ err error }

func (f failingStreamer) Stream([][2]float64) (int, bool) { return 0, false }
func (f failingStreamer) Err() error                      { return f.err }

func TestReaderReportsSourceError(t *testing.T) {
	boom := errors.New("boom")
	r := NewReader(failingStreamer{err: boom}, 4)

	if _, err := r.Read(make([]byte, 64)); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}

	if _, err := r.Read(make([]byte, 64)); err != io.EOF {
		t.Fatalf("second Read err=%v, want io.EOF", err)
	}
}
