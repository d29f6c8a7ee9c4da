package host

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cwbudde/algo-chorus/dsp/core"
	"github.com/cwbudde/algo-chorus/dsp/effects/modulation"
)

// ID names an automatable parameter.
type ID string

// Parameter IDs as exposed to hosts and presets.
const (
	IDDryWet      ID = "dry wet"
	IDDepth       ID = "depth"
	IDRate        ID = "rate"
	IDPhaseOffset ID = "phaseoffset"
	IDFeedback    ID = "feedback"
	IDType        ID = "type"
)

// ErrUnknownParameter is returned for IDs outside Descriptors.
var ErrUnknownParameter = errors.New("host: unknown parameter")

// Descriptor describes one parameter's range and default.
type Descriptor struct {
	ID      ID
	Name    string
	Min     float64
	Max     float64
	Default float64
	Integer bool
}

const (
	slotDryWet = iota
	slotDepth
	slotRate
	slotPhaseOffset
	slotFeedback
	slotType
	numSlots
)

var descriptors = [numSlots]Descriptor{
	slotDryWet:      {ID: IDDryWet, Name: "Dry Wet", Min: modulation.MinDryWet, Max: modulation.MaxDryWet, Default: 0.5},
	slotDepth:       {ID: IDDepth, Name: "Depth", Min: modulation.MinDepth, Max: modulation.MaxDepth, Default: 0.5},
	slotRate:        {ID: IDRate, Name: "Rate", Min: modulation.MinRateHz, Max: modulation.MaxRateHz, Default: 10},
	slotPhaseOffset: {ID: IDPhaseOffset, Name: "Phase Offset", Min: modulation.MinPhaseOffset, Max: modulation.MaxPhaseOffset, Default: 0},
	slotFeedback:    {ID: IDFeedback, Name: "Feedback", Min: modulation.MinFeedback, Max: modulation.MaxFeedback, Default: 0.5},
	slotType:        {ID: IDType, Name: "Type", Min: 0, Max: 1, Default: 0, Integer: true},
}

// Descriptors returns the parameter table in display order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, numSlots)
	copy(out, descriptors[:])

	return out
}

// LookupID resolves a loosely typed parameter name ("DryWet", "dry-wet",
// "mix", "mode", ...) to its ID.
func LookupID(name string) (ID, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))

	switch key {
	case "drywet", "mix", "wet":
		return IDDryWet, true
	case "depth":
		return IDDepth, true
	case "rate", "speed":
		return IDRate, true
	case "phaseoffset", "offset", "phase":
		return IDPhaseOffset, true
	case "feedback", "fb":
		return IDFeedback, true
	case "type", "mode":
		return IDType, true
	default:
		return "", false
	}
}

// ParamSource yields the snapshot used for the next block.
type ParamSource interface {
	Snapshot() modulation.Params
}

// Fixed is a ParamSource that never changes.
type Fixed modulation.Params

// Snapshot implements ParamSource.
func (f Fixed) Snapshot() modulation.Params { return modulation.Params(f) }

// Store holds the current parameter values.
//
// Each value is an independent atomic word, so a reader on the audio thread
// always sees a fully written scalar. Values written between two snapshots
// take effect at the next block.
type Store struct {
	values [numSlots]atomic.Uint64
}

// NewStore returns a store holding the defaults.
func NewStore() *Store {
	s := &Store{}
	for i, d := range descriptors {
		s.values[i].Store(math.Float64bits(d.Default))
	}

	return s
}

func slotOf(id ID) (int, error) {
	for i, d := range descriptors {
		if d.ID == id {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
}

// Set clamps value into the parameter's range and stores it. Integer
// parameters are rounded.
func (s *Store) Set(id ID, value float64) error {
	slot, err := slotOf(id)
	if err != nil {
		return err
	}

	if !core.IsFinite(value) {
		return fmt.Errorf("host: %s must be finite: %f", id, value)
	}

	d := descriptors[slot]
	if d.Integer {
		value = math.Round(value)
	}

	s.values[slot].Store(math.Float64bits(core.Clamp(value, d.Min, d.Max)))

	return nil
}

// Get returns the stored value of id.
func (s *Store) Get(id ID) (float64, error) {
	slot, err := slotOf(id)
	if err != nil {
		return 0, err
	}

	return s.load(slot), nil
}

func (s *Store) load(slot int) float64 {
	return math.Float64frombits(s.values[slot].Load())
}

// Snapshot implements ParamSource.
func (s *Store) Snapshot() modulation.Params {
	return modulation.Params{
		DryWet:      s.load(slotDryWet),
		Depth:       s.load(slotDepth),
		Rate:        s.load(slotRate),
		PhaseOffset: s.load(slotPhaseOffset),
		Feedback:    s.load(slotFeedback),
		Mode:        modulation.Mode(int(s.load(slotType))),
	}
}

// Load replaces every value with p, clamped into range.
func (s *Store) Load(p modulation.Params) {
	p = p.Clamp()

	s.values[slotDryWet].Store(math.Float64bits(p.DryWet))
	s.values[slotDepth].Store(math.Float64bits(p.Depth))
	s.values[slotRate].Store(math.Float64bits(p.Rate))
	s.values[slotPhaseOffset].Store(math.Float64bits(p.PhaseOffset))
	s.values[slotFeedback].Store(math.Float64bits(p.Feedback))
	s.values[slotType].Store(math.Float64bits(float64(p.Mode)))
}

// Apply parses a "name value" control line such as "rate 2.5" or
// "mode flanger" and stores the result.
func (s *Store) Apply(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return fmt.Errorf("host: expected \"<parameter> <value>\", got %q", line)
	}

	id, ok := LookupID(fields[0])
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, fields[0])
	}

	if id == IDType {
		mode, err := modulation.ParseMode(fields[1])
		if err != nil {
			return fmt.Errorf("host: %w", err)
		}

		return s.Set(id, float64(mode))
	}

	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return fmt.Errorf("host: %s value: %w", id, err)
	}

	return s.Set(id, v)
}
