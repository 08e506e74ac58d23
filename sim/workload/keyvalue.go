package workload

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"github.com/observatory-sim/observatory-sim/sim"
)

// Keys of the key/value configuration file.
const (
	KeyServers       = "S" // power_1;power_2;...
	KeyClients       = "C" // rate_1,share_11,...,share_1n;rate_2,...
	KeySpeedFactor   = "G" // optional global speed factor
	KeyRoundInterval = "I" // optional round interval in ms

	// DefaultValue is returned for keys missing from the file.
	DefaultValue = "1"
)

// KeyValueConfig holds the raw key=value pairs of a configuration file.
type KeyValueConfig map[string]string

// Get returns the value for key, or DefaultValue when the key is absent.
func (c KeyValueConfig) Get(key string) string {
	if v, ok := c[key]; ok {
		return v
	}
	return DefaultValue
}

// ParseKeyValueConfig reads key=value lines from r.
func ParseKeyValueConfig(r io.Reader) (KeyValueConfig, error) {
	data, err := godotenv.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing key/value config: %v", sim.ErrConfiguration, err)
	}
	return KeyValueConfig(data), nil
}

// LoadKeyValueFile reads the key/value file at path into an unvalidated Scenario.
func LoadKeyValueFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := ParseKeyValueConfig(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	sc, err := cfg.Scenario()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return sc, nil
}

// Scenario decodes the server and client datasets and the optional overrides.
// Field-level problems from every key are reported together.
func (c KeyValueConfig) Scenario() (*Scenario, error) {
	var result *multierror.Error
	sc := &Scenario{}

	servers, err := ParseServerDataset(c.Get(KeyServers))
	if err != nil {
		result = multierror.Append(result, err)
	}
	sc.Servers = servers

	clients, err := ParseClientDataset(c.Get(KeyClients))
	if err != nil {
		result = multierror.Append(result, err)
	}
	sc.Clients = clients

	if v, ok := c[KeySpeedFactor]; ok {
		g, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
			result = multierror.Append(result, fmt.Errorf("%w: key %s: %q", sim.ErrInvalidSpeedFactor, KeySpeedFactor, v))
		} else {
			sc.SpeedFactor = g
		}
	}
	if v, ok := c[KeyRoundInterval]; ok {
		ms, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: key %s: %q is not a non-negative integer", sim.ErrConfiguration, KeyRoundInterval, v))
		} else {
			sc.RoundIntervalMs = &ms
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return sc, nil
}

// ParseServerDataset decodes "power_1;power_2;...". A single trailing ';' is ignored.
func ParseServerDataset(value string) ([]sim.ServerDescriptor, error) {
	var result *multierror.Error
	records := splitRecords(value)
	servers := make([]sim.ServerDescriptor, 0, len(records))
	for i, rec := range records {
		power, err := strconv.ParseUint(rec, 10, 64)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: key %s: server %d: %q is not a non-negative integer",
				sim.ErrConfiguration, KeyServers, i+1, rec))
			continue
		}
		servers = append(servers, sim.ServerDescriptor{ProcessingPower: power})
	}
	return servers, result.ErrorOrNil()
}

// ParseClientDataset decodes "rate,share_1,...,share_n;rate,...". The number of
// shares is checked against the server count later, by sim.ValidateDatasets.
func ParseClientDataset(value string) ([]sim.ClientDescriptor, error) {
	var result *multierror.Error
	records := splitRecords(value)
	clients := make([]sim.ClientDescriptor, 0, len(records))
	for i, rec := range records {
		fields := strings.Split(rec, ",")
		rate, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: key %s: client %d: rate %q is not a non-negative integer",
				sim.ErrConfiguration, KeyClients, i+1, fields[0]))
			continue
		}
		shares := make([]float64, 0, len(fields)-1)
		ok := true
		for k, f := range fields[1:] {
			share, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%w: key %s: client %d: share %d: %q is not a number",
					sim.ErrConfiguration, KeyClients, i+1, k+1, f))
				ok = false
				continue
			}
			shares = append(shares, share)
		}
		if ok {
			clients = append(clients, sim.ClientDescriptor{WorkGenerationRate: rate, Workshare: shares})
		}
	}
	return clients, result.ErrorOrNil()
}

func splitRecords(value string) []string {
	value = strings.TrimSuffix(strings.TrimSpace(value), ";")
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
