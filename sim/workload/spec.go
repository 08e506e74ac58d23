package workload

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/observatory-sim/observatory-sim/sim"
)

// ScenarioSpec is the YAML scenario file. Loaded via LoadScenarioYAML(path).
type ScenarioSpec struct {
	SpeedFactor     float64      `yaml:"speed_factor,omitempty"`
	RoundIntervalMs *uint64      `yaml:"round_interval_ms,omitempty"`
	Servers         []ServerSpec `yaml:"servers"`
	Clients         []ClientSpec `yaml:"clients"`
}

// ServerSpec defines a single server.
type ServerSpec struct {
	ProcessingPower uint64 `yaml:"processing_power"`
}

// ClientSpec defines a single observatory.
type ClientSpec struct {
	WorkGenerationRate uint64    `yaml:"work_generation_rate"`
	Workshare          []float64 `yaml:"workshare"`
}

// LoadScenarioYAML parses the YAML scenario at path into an unvalidated Scenario.
// Uses strict field checking: typos must cause errors.
func LoadScenarioYAML(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var spec ScenarioSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("%w: parsing scenario %s: %v", sim.ErrConfiguration, path, err)
	}
	return spec.Scenario()
}

// Scenario converts the spec into datasets. A speed factor of 0 means unset;
// negative values are rejected.
func (s ScenarioSpec) Scenario() (*Scenario, error) {
	if s.SpeedFactor < 0 {
		return nil, fmt.Errorf("%w: speed_factor: got %v", sim.ErrInvalidSpeedFactor, s.SpeedFactor)
	}
	sc := &Scenario{
		Servers:         make([]sim.ServerDescriptor, len(s.Servers)),
		Clients:         make([]sim.ClientDescriptor, len(s.Clients)),
		SpeedFactor:     s.SpeedFactor,
		RoundIntervalMs: copyUint64(s.RoundIntervalMs),
	}
	for i, srv := range s.Servers {
		sc.Servers[i] = sim.ServerDescriptor{ProcessingPower: srv.ProcessingPower}
	}
	for i, c := range s.Clients {
		shares := make([]float64, len(c.Workshare))
		copy(shares, c.Workshare)
		sc.Clients[i] = sim.ClientDescriptor{WorkGenerationRate: c.WorkGenerationRate, Workshare: shares}
	}
	return sc, nil
}

// Spec converts a Scenario back into its YAML form.
func (s *Scenario) Spec() ScenarioSpec {
	spec := ScenarioSpec{
		SpeedFactor:     s.SpeedFactor,
		RoundIntervalMs: copyUint64(s.RoundIntervalMs),
		Servers:         make([]ServerSpec, len(s.Servers)),
		Clients:         make([]ClientSpec, len(s.Clients)),
	}
	for i, srv := range s.Servers {
		spec.Servers[i] = ServerSpec{ProcessingPower: srv.ProcessingPower}
	}
	for i, c := range s.Clients {
		spec.Clients[i] = ClientSpec{WorkGenerationRate: c.WorkGenerationRate, Workshare: c.Workshare}
	}
	return spec
}

func copyUint64(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
