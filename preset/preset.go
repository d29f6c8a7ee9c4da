// Package preset stores effect settings as a flat six-key YAML record:
//
//	DryWet: 0.5
//	Depth: 0.5
//	Rate: 10
//	PhaseOffset: 0
//	Feedback: 0.5
//	Type: 0
//
// Floats are written in shortest round-trip form, so a saved preset restores
// bit-identical parameter values.
package preset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/cwbudde/algo-chorus/dsp/effects/modulation"
)

// State is the persisted parameter record.
type State struct {
	DryWet      float64 `yaml:"DryWet"`
	Depth       float64 `yaml:"Depth"`
	Rate        float64 `yaml:"Rate"`
	PhaseOffset float64 `yaml:"PhaseOffset"`
	Feedback    float64 `yaml:"Feedback"`
	Type        int     `yaml:"Type"`
}

// FromParams captures a parameter snapshot.
func FromParams(p modulation.Params) State {
	return State{
		DryWet:      p.DryWet,
		Depth:       p.Depth,
		Rate:        p.Rate,
		PhaseOffset: p.PhaseOffset,
		Feedback:    p.Feedback,
		Type:        int(p.Mode),
	}
}

// Params converts the record back into a snapshot without validation.
func (s State) Params() modulation.Params {
	return modulation.Params{
		DryWet:      s.DryWet,
		Depth:       s.Depth,
		Rate:        s.Rate,
		PhaseOffset: s.PhaseOffset,
		Feedback:    s.Feedback,
		Mode:        modulation.Mode(s.Type),
	}
}

// Marshal encodes p as YAML.
func Marshal(p modulation.Params) ([]byte, error) {
	data, err := yaml.Marshal(FromParams(p))
	if err != nil {
		return nil, fmt.Errorf("preset: encode: %w", err)
	}

	return data, nil
}

// Unmarshal decodes a YAML record. Keys that are absent keep their
// factory defaults; values outside the parameter ranges are rejected.
func Unmarshal(data []byte) (modulation.Params, error) {
	st := FromParams(modulation.DefaultParams())

	if err := yaml.Unmarshal(data, &st); err != nil {
		return modulation.Params{}, fmt.Errorf("preset: decode: %w", err)
	}

	p := st.Params()
	if err := p.Validate(); err != nil {
		return modulation.Params{}, fmt.Errorf("preset: %w", err)
	}

	return p, nil
}

// Load reads and decodes the preset file at path.
func Load(path string) (modulation.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return modulation.Params{}, fmt.Errorf("preset: read %s: %w", path, err)
	}

	return Unmarshal(data)
}

// Save encodes p and writes it to path.
func Save(path string, p modulation.Params) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("preset: write %s: %w", path, err)
	}

	return nil
}
