package sim

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/observatory-sim/observatory-sim/sim/trace"
)

// ServiceTimeMs is the unscaled time a server with the given processing power
// needs for workload: floor(1000 * workload / power) milliseconds.
// power must be positive. A result that does not fit in a uint64 saturates
// at math.MaxUint64.
func ServiceTimeMs(workload, power uint64) uint64 {
	hi, lo := bits.Mul64(1000, workload)
	if hi >= power {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, power)
	return q
}

// ServerOption customizes a Server at construction.
type ServerOption func(*Server)

// WithServerObserver reports every processed packet to o.
func WithServerObserver(o Observer) ServerOption {
	return func(s *Server) { s.observer = o }
}

// Server consumes packets from its host, sleeps for the simulated processing
// time and acknowledges each packet on the packet's return link.
type Server struct {
	id              int
	host            *Host
	processingPower uint64
	config          SimConfig
	observer        Observer
	log             *logrus.Entry
}

// NewServer creates server id (1-based). Zero processing power and an invalid
// speed factor are rejected here so they can never surface mid-run.
func NewServer(id int, d ServerDescriptor, config SimConfig, opts ...ServerOption) (*Server, error) {
	if d.ProcessingPower == 0 {
		return nil, fmt.Errorf("server %d: %w", id, ErrZeroCapacity)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("server %d: %w", id, err)
	}
	s := &Server{
		id:              id,
		host:            NewHost(),
		processingPower: d.ProcessingPower,
		config:          config,
		observer:        NopObserver{},
		log:             logrus.WithField("entity", fmt.Sprintf("S%d", id)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the server's 1-based index.
func (s *Server) ID() int { return s.id }

// ProcessingPower returns the configured work units per simulated second.
func (s *Server) ProcessingPower() uint64 { return s.processingPower }

// Host returns the host the server is attached to.
func (s *Server) Host() *Host { return s.host }

// VirtualLink returns a link clients use to submit work to this server.
func (s *Server) VirtualLink() VirtualLink { return s.host.VirtualLink() }

// Run processes packets until ctx is cancelled, which returns nil.
// A failed acknowledgment ends this server only and is returned as an error
// wrapping ErrPeerGone. The host is closed when Run returns.
func (s *Server) Run(ctx context.Context) error {
	defer s.host.Close()
	s.log.Infof("Running server %d (power %d)", s.id, s.processingPower)

	for {
		msg, err := s.host.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server %d: reading: %w", s.id, err)
		}
		s.log.Debugf("Received %d work units from observatory %d", msg.Workload, msg.Origin)

		serviceMs := ServiceTimeMs(msg.Workload, s.processingPower)
		scaledMs := s.config.ScaleMs(serviceMs)
		s.log.Debugf("Estimated time: %dms (scaled: %dms)", serviceMs, scaledMs)

		if err := sleepContext(ctx, MsDuration(scaledMs)); err != nil {
			return nil
		}

		s.log.Debugf("Processing done; acknowledging observatory %d", msg.Origin)
		if err := msg.From.Send(NewPacket(s.VirtualLink(), 0, s.id)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server %d: acknowledging observatory %d: %w", s.id, msg.Origin, err)
		}
		// Only acknowledged packets count as served.
		s.observer.ObserveService(trace.ServiceRecord{
			ServerID:  s.id,
			Origin:    msg.Origin,
			PacketID:  msg.ID,
			Workload:  msg.Workload,
			ServiceMs: serviceMs,
			ScaledMs:  scaledMs,
		})
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
// A non-positive d returns immediately.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
