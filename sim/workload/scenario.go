// Package workload loads the server and client datasets that drive a
// simulation run, from either the original key/value `config` file or a
// YAML scenario.
package workload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/observatory-sim/observatory-sim/sim"
)

// Supported configuration formats.
const (
	FormatAuto     = "auto"
	FormatKeyValue = "kv"
	FormatYAML     = "yaml"
)

// Scenario is a validated pair of datasets plus optional run overrides.
type Scenario struct {
	Servers []sim.ServerDescriptor
	Clients []sim.ClientDescriptor

	SpeedFactor     float64 // 0 means not set in the file
	RoundIntervalMs *uint64 // nil means not set in the file; 0 is a valid interval
}

// Validate checks the datasets; see sim.ValidateDatasets.
func (s *Scenario) Validate() error {
	return sim.ValidateDatasets(s.Servers, s.Clients)
}

// Apply overlays the file's run overrides on base. Values the caller marked as
// explicitly set win over the file.
func (s *Scenario) Apply(base sim.SimConfig, speedSet, intervalSet bool) sim.SimConfig {
	if s.SpeedFactor != 0 && !speedSet {
		base.SpeedFactor = s.SpeedFactor
	}
	if s.RoundIntervalMs != nil && !intervalSet {
		base.RoundIntervalMs = *s.RoundIntervalMs
	}
	return base
}

// IsValidFormat returns true if the given name is a recognized configuration format.
func IsValidFormat(format string) bool {
	switch format {
	case FormatAuto, FormatKeyValue, FormatYAML, "":
		return true
	}
	return false
}

// LoadScenario reads and validates the scenario at path. FormatAuto picks YAML
// for .yaml/.yml files and the key/value format otherwise.
func LoadScenario(path, format string) (*Scenario, error) {
	if !IsValidFormat(format) {
		return nil, fmt.Errorf("%w: unknown config format %q; valid: auto, kv, yaml", sim.ErrConfiguration, format)
	}
	if format == FormatAuto || format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = FormatYAML
		default:
			format = FormatKeyValue
		}
	}

	var (
		sc  *Scenario
		err error
	)
	if format == FormatYAML {
		sc, err = LoadScenarioYAML(path)
	} else {
		sc, err = LoadKeyValueFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return sc, nil
}
