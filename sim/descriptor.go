package sim

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
)

// ServerDescriptor describes one configured server.
type ServerDescriptor struct {
	ProcessingPower uint64 // work units per simulated second (must be > 0)
}

// ClientDescriptor describes one configured observatory.
// Workshare is aligned positionally with the server dataset; the fractions
// are not required to sum to 1.
type ClientDescriptor struct {
	WorkGenerationRate uint64    // work units generated per round
	Workshare          []float64 // fraction of each round's work sent to server k
}

// ValidateDatasets checks both datasets before any entity is built and reports
// every problem found, not just the first one.
func ValidateDatasets(servers []ServerDescriptor, clients []ClientDescriptor) error {
	var result *multierror.Error
	if len(servers) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: at least one server is required", ErrConfiguration))
	}
	for i, s := range servers {
		if s.ProcessingPower == 0 {
			result = multierror.Append(result, fmt.Errorf("server %d: %w", i+1, ErrZeroCapacity))
		}
	}
	for i, c := range clients {
		if len(c.Workshare) != len(servers) {
			result = multierror.Append(result, fmt.Errorf("%w: client %d has %d workshare entries for %d servers",
				ErrConfiguration, i+1, len(c.Workshare), len(servers)))
		}
		for k, w := range c.Workshare {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				result = multierror.Append(result, fmt.Errorf("%w: client %d share for server %d must be a finite non-negative number, got %v",
					ErrConfiguration, i+1, k+1, w))
			}
		}
	}
	return result.ErrorOrNil()
}
