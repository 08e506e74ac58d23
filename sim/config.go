package sim

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultSpeedFactor runs the simulation in real time.
	DefaultSpeedFactor = 1.0
	// DefaultRoundIntervalMs is the pause between two client rounds before scaling.
	DefaultRoundIntervalMs = 3000
)

// SimConfig groups the run-wide parameters handed to every Server and Client.
type SimConfig struct {
	SpeedFactor     float64 // divides every simulated delay; must be finite and > 0
	RoundIntervalMs uint64  // unscaled pause between client rounds
	MaxRounds       int     // rounds per client; 0 runs until cancelled
}

// NewSimConfig creates a SimConfig with the default round interval and no round limit.
func NewSimConfig(speedFactor float64) SimConfig {
	return SimConfig{
		SpeedFactor:     speedFactor,
		RoundIntervalMs: DefaultRoundIntervalMs,
	}
}

// DefaultSimConfig returns the configuration of the original real-time simulation.
func DefaultSimConfig() SimConfig {
	return NewSimConfig(DefaultSpeedFactor)
}

// Validate reports an invalid speed factor or a negative round limit.
func (c SimConfig) Validate() error {
	if math.IsNaN(c.SpeedFactor) || math.IsInf(c.SpeedFactor, 0) || c.SpeedFactor <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidSpeedFactor, c.SpeedFactor)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("%w: max rounds must be non-negative, got %d", ErrConfiguration, c.MaxRounds)
	}
	return nil
}

// ScaleMs applies the global speed factor to a delay in milliseconds:
// floor(ms / SpeedFactor), saturating at math.MaxUint64.
func (c SimConfig) ScaleMs(ms uint64) uint64 {
	f := float64(ms) / c.SpeedFactor
	if f >= maxUint64Float {
		return math.MaxUint64
	}
	return uint64(f)
}

// Scale returns the scaled delay as a time.Duration; see MsDuration.
func (c SimConfig) Scale(ms uint64) time.Duration {
	return MsDuration(c.ScaleMs(ms))
}

// maxUint64Float is 2^64, the first float64 above math.MaxUint64.
const maxUint64Float float64 = 1 << 64

// maxDurationMs is the largest millisecond count a time.Duration can hold.
const maxDurationMs = uint64(math.MaxInt64 / int64(time.Millisecond))

// MsDuration converts milliseconds to a time.Duration. Delays beyond the
// range of time.Duration are capped at its maximum (about 292 years).
func MsDuration(ms uint64) time.Duration {
	if ms > maxDurationMs {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

// RoundInterval is the scaled pause a client takes after each completed round.
func (c SimConfig) RoundInterval() time.Duration {
	return c.Scale(c.RoundIntervalMs)
}
