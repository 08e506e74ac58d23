package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/observatory-sim/observatory-sim/sim/trace"
)

// ShareOf is the part of x a target with the given weight receives: floor(x * weight).
func ShareOf(x uint64, weight float64) uint64 {
	return uint64(float64(x) * weight)
}

// Target is one entry of a client's fixed distribution scheme.
type Target struct {
	Link   VirtualLink
	Weight float64
}

// ClientOption customizes a Client at construction.
type ClientOption func(*Client)

// WithClientObserver reports every completed round to o.
func WithClientObserver(o Observer) ClientOption {
	return func(c *Client) { c.observer = o }
}

// WithGenerator replaces the fixed-rate generator built from the descriptor.
func WithGenerator(g WorkGenerator) ClientOption {
	return func(c *Client) { c.generator = g }
}

// Client is an observatory. Every round it fans its generated work out to all
// targets and then waits for one acknowledgment per target.
//
// Acknowledgments carry no reference to the request they answer, so the
// barrier only counts arrivals: it cannot tell which server replied, and an
// extra packet from anywhere counts as one of the round's acknowledgments.
type Client struct {
	id        int
	host      *Host
	targets   []Target
	generator WorkGenerator
	config    SimConfig
	observer  Observer
	log       *logrus.Entry
}

// NewClient creates client id (1-based) with one target per server, in server
// order, weighted by d.Workshare. The distribution scheme is never changed
// afterwards.
func NewClient(id int, servers []*Server, d ClientDescriptor, config SimConfig, opts ...ClientOption) (*Client, error) {
	if len(d.Workshare) != len(servers) {
		return nil, fmt.Errorf("%w: client %d has %d workshare entries for %d servers",
			ErrConfiguration, id, len(d.Workshare), len(servers))
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("client %d: %w", id, err)
	}
	targets := make([]Target, len(servers))
	for i, srv := range servers {
		targets[i] = Target{Link: srv.VirtualLink(), Weight: d.Workshare[i]}
	}
	c := &Client{
		id:        id,
		host:      NewHost(),
		targets:   targets,
		generator: FixedRate(d.WorkGenerationRate),
		config:    config,
		observer:  NopObserver{},
		log:       logrus.WithField("entity", fmt.Sprintf("C%d", id)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ID returns the client's 1-based index.
func (c *Client) ID() int { return c.id }

// Host returns the host the client is attached to.
func (c *Client) Host() *Host { return c.host }

// VirtualLink returns the client's own return address.
func (c *Client) VirtualLink() VirtualLink { return c.host.VirtualLink() }

// Targets returns a copy of the distribution scheme.
func (c *Client) Targets() []Target {
	out := make([]Target, len(c.targets))
	copy(out, c.targets)
	return out
}

// Run executes rounds until ctx is cancelled or, when config.MaxRounds is set,
// until that many rounds are complete. Both return nil. There is no timeout on
// the acknowledgment barrier: a server that never answers stalls the client
// until ctx is cancelled. The host is closed when Run returns.
func (c *Client) Run(ctx context.Context) error {
	defer c.host.Close()
	c.log.Infof("Running client %d", c.id)

	for round := 1; c.config.MaxRounds == 0 || round <= c.config.MaxRounds; round++ {
		x := c.generator.Generate(round)
		c.log.Debugf("Round %d: generating %d work units", round, x)

		start := time.Now()
		var sent uint64
		for k, t := range c.targets {
			workload := ShareOf(x, t.Weight)
			c.log.Debugf("Sending %d units to server %d", workload, k+1)
			if err := t.Link.Send(NewPacket(c.VirtualLink(), workload, c.id)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("client %d: round %d: server %d: %w", c.id, round, k+1, err)
			}
			sent += workload
		}

		c.log.Debugf("Waiting for %d acknowledgments", len(c.targets))
		for range c.targets {
			if _, err := c.host.Read(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("client %d: round %d: %w", c.id, round, err)
			}
		}
		latency := time.Since(start)
		c.log.Infof("Round %d complete: every server processed the batch (%v)", round, latency)
		c.observer.ObserveRound(trace.RoundRecord{
			ClientID: c.id,
			Round:    round,
			Workload: sent,
			Acks:     len(c.targets),
			Latency:  latency,
		})

		if c.config.MaxRounds != 0 && round == c.config.MaxRounds {
			break
		}
		if err := sleepContext(ctx, c.config.RoundInterval()); err != nil {
			return nil
		}
	}
	return nil
}
