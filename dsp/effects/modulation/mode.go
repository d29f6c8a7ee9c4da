package modulation

import (
	"fmt"
	"strings"
)

// Mode selects the delay-time range the LFO sweeps.
type Mode int

const (
	// ModeChorus sweeps 5..30 ms.
	ModeChorus Mode = iota
	// ModeFlanger sweeps 1..5 ms.
	ModeFlanger
)

type delayRange struct {
	lo, hi float64
}

// Indexed by Mode.
var modeDelayRanges = [...]delayRange{
	ModeChorus:  {lo: 0.005, hi: 0.03},
	ModeFlanger: {lo: 0.001, hi: 0.005},
}

// Modes lists every supported mode in index order.
func Modes() []Mode {
	return []Mode{ModeChorus, ModeFlanger}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= ModeChorus && int(m) < len(modeDelayRanges)
}

// DelayRange returns the swept delay range in seconds.
//
// Any index other than ModeChorus maps to the flanger range, which is how a
// host-side integer "type" parameter has always been interpreted.
func (m Mode) DelayRange() (lo, hi float64) {
	if m == ModeChorus {
		r := modeDelayRanges[ModeChorus]
		return r.lo, r.hi
	}

	r := modeDelayRanges[ModeFlanger]

	return r.lo, r.hi
}

func (m Mode) String() string {
	switch m {
	case ModeChorus:
		return "chorus"
	case ModeFlanger:
		return "flanger"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode resolves a mode name or index ("chorus", "flanger", "0", "1").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chorus", "0":
		return ModeChorus, nil
	case "flanger", "1":
		return ModeFlanger, nil
	default:
		return 0, fmt.Errorf("unknown modulation mode %q", s)
	}
}
