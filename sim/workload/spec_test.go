package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/observatory-sim/observatory-sim/sim"
)

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_YAML(t *testing.T) {
	// GIVEN a YAML scenario with overrides
	path := writeScenario(t, "scenario.yaml", `
speed_factor: 2.0
round_interval_ms: 500
servers:
  - processing_power: 2
  - processing_power: 4
clients:
  - work_generation_rate: 10
    workshare: [0.5, 0.5]
`)

	// WHEN loaded with format detection
	sc, err := LoadScenario(path, FormatAuto)

	// THEN datasets and overrides match the file
	require.NoError(t, err)
	assert.Equal(t, []sim.ServerDescriptor{{ProcessingPower: 2}, {ProcessingPower: 4}}, sc.Servers)
	assert.Equal(t, []sim.ClientDescriptor{{WorkGenerationRate: 10, Workshare: []float64{0.5, 0.5}}}, sc.Clients)
	assert.Equal(t, 2.0, sc.SpeedFactor)
	require.NotNil(t, sc.RoundIntervalMs)
	assert.Equal(t, uint64(500), *sc.RoundIntervalMs)
}

func TestLoadScenarioYAML_ZeroRoundInterval_Kept(t *testing.T) {
	path := writeScenario(t, "scenario.yaml", `
round_interval_ms: 0
servers:
  - processing_power: 1
clients:
  - work_generation_rate: 1
    workshare: [1.0]
`)

	sc, err := LoadScenarioYAML(path)
	require.NoError(t, err)

	require.NotNil(t, sc.RoundIntervalMs)
	assert.Zero(t, sc.Apply(sim.DefaultSimConfig(), false, false).RoundIntervalMs)
	// and it survives the round trip back to YAML
	require.NotNil(t, sc.Spec().RoundIntervalMs)
	assert.Zero(t, *sc.Spec().RoundIntervalMs)
}

func TestLoadScenarioYAML_NoRoundInterval_KeepsBase(t *testing.T) {
	path := writeScenario(t, "scenario.yaml", `
servers:
  - processing_power: 1
clients:
  - work_generation_rate: 1
    workshare: [1.0]
`)

	sc, err := LoadScenarioYAML(path)
	require.NoError(t, err)

	assert.Nil(t, sc.RoundIntervalMs)
	assert.Equal(t, uint64(sim.DefaultRoundIntervalMs), sc.Apply(sim.DefaultSimConfig(), false, false).RoundIntervalMs)
}

func TestLoadScenarioYAML_UnknownField_Rejected(t *testing.T) {
	// Typos must cause errors.
	path := writeScenario(t, "scenario.yml", `
servers:
  - processing_powr: 2
clients: []
`)

	_, err := LoadScenarioYAML(path)

	assert.ErrorIs(t, err, sim.ErrConfiguration)
}

func TestLoadScenario_YAML_WorkshareMismatch(t *testing.T) {
	path := writeScenario(t, "scenario.yaml", `
servers:
  - processing_power: 2
  - processing_power: 4
clients:
  - work_generation_rate: 10
    workshare: [1.0]
`)

	_, err := LoadScenario(path, FormatAuto)

	assert.ErrorIs(t, err, sim.ErrConfiguration)
}

func TestScenarioSpec_NegativeSpeedFactor_Rejected(t *testing.T) {
	_, err := ScenarioSpec{SpeedFactor: -2}.Scenario()

	assert.ErrorIs(t, err, sim.ErrInvalidSpeedFactor)
}

func TestScenario_Spec_MarshalsBackToLoadableYAML(t *testing.T) {
	// GIVEN a scenario read from the key/value format
	original := &Scenario{
		Servers: []sim.ServerDescriptor{{ProcessingPower: 3}},
		Clients: []sim.ClientDescriptor{{WorkGenerationRate: 7, Workshare: []float64{0.25}}},
	}

	// WHEN written as YAML and loaded again
	out, err := yaml.Marshal(original.Spec())
	require.NoError(t, err)
	loaded, err := LoadScenario(writeScenario(t, "out.yaml", string(out)), FormatYAML)

	// THEN the datasets are unchanged
	require.NoError(t, err)
	assert.Equal(t, original.Servers, loaded.Servers)
	assert.Equal(t, original.Clients, loaded.Clients)
}
