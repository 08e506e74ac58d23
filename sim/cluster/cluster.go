package cluster

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/observatory-sim/observatory-sim/sim"
)

// Option customizes a Simulation.
type Option func(*Simulation)

// WithObserver attaches o to every server and client. Repeated options fan out.
func WithObserver(o sim.Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, o) }
}

// WithGeneratorFactory replaces the fixed-rate generator of every client.
// The factory receives the 1-based client id and its descriptor.
func WithGeneratorFactory(f func(id int, d sim.ClientDescriptor) sim.WorkGenerator) Option {
	return func(s *Simulation) { s.generatorFactory = f }
}

// Simulation owns every server and client of one run. Entities are built once
// and never reconfigured; each runs in its own goroutine.
type Simulation struct {
	config           sim.SimConfig
	servers          []*sim.Server
	clients          []*sim.Client
	observers        sim.Observers
	generatorFactory func(id int, d sim.ClientDescriptor) sim.WorkGenerator
	hasRun           bool
	log              *logrus.Entry
}

// NewSimulation validates both datasets and the run configuration, then builds
// the servers (so their links exist) followed by the clients. Any invalid
// input fails here, before a single goroutine starts.
func NewSimulation(servers []sim.ServerDescriptor, clients []sim.ClientDescriptor,
	config sim.SimConfig, opts ...Option) (*Simulation, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := sim.ValidateDatasets(servers, clients); err != nil {
		return nil, err
	}

	s := &Simulation{
		config: config,
		log:    logrus.WithField("entity", "T0"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log.Info("Initializing servers")
	s.servers = make([]*sim.Server, len(servers))
	for i, d := range servers {
		srv, err := sim.NewServer(i+1, d, config, sim.WithServerObserver(s.observers))
		if err != nil {
			return nil, err
		}
		s.servers[i] = srv
	}

	s.log.Info("Initializing clients")
	s.clients = make([]*sim.Client, len(clients))
	for i, d := range clients {
		clientOpts := []sim.ClientOption{sim.WithClientObserver(s.observers)}
		if s.generatorFactory != nil {
			clientOpts = append(clientOpts, sim.WithGenerator(s.generatorFactory(i+1, d)))
		}
		c, err := sim.NewClient(i+1, s.servers, d, config, clientOpts...)
		if err != nil {
			return nil, err
		}
		s.clients[i] = c
	}
	return s, nil
}

// Servers returns the servers in configuration order.
func (s *Simulation) Servers() []*sim.Server { return s.servers }

// Clients returns the clients in configuration order.
func (s *Simulation) Clients() []*sim.Client { return s.clients }

// Config returns the run configuration.
func (s *Simulation) Config() sim.SimConfig { return s.config }

// Run starts one goroutine per server and per client and waits for them.
//
// With an unbounded round count Run returns only after ctx is cancelled. With
// MaxRounds set, the servers are stopped once every client has finished.
// A failing entity is logged and stops alone; the others keep running. Run
// returns every entity error combined.
// Panics if called more than once.
func (s *Simulation) Run(ctx context.Context) error {
	if s.hasRun {
		panic("Simulation.Run() called more than once")
	}
	s.hasRun = true

	var (
		mu     sync.Mutex
		result *multierror.Error
	)
	record := func(err error) error {
		if err != nil {
			s.log.Errorf("Task terminated: %v", err)
			mu.Lock()
			result = multierror.Append(result, err)
			mu.Unlock()
		}
		return err
	}

	serverCtx, stopServers := context.WithCancel(ctx)
	defer stopServers()

	// Plain groups: one failed task must not cancel its siblings.
	var serverGroup, clientGroup errgroup.Group

	s.log.Info("Launching server tasks")
	for _, srv := range s.servers {
		srv := srv
		serverGroup.Go(func() error { return record(srv.Run(serverCtx)) })
	}

	s.log.Info("Launching client tasks")
	for _, c := range s.clients {
		c := c
		clientGroup.Go(func() error { return record(c.Run(ctx)) })
	}

	s.log.Info("Waiting for the simulation to finish")
	_ = clientGroup.Wait()
	if s.config.MaxRounds == 0 {
		// Unbounded runs keep the servers up, even if every client failed.
		<-ctx.Done()
	}
	stopServers()
	_ = serverGroup.Wait()

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("simulation finished with failed tasks: %w", err)
	}
	return nil
}
