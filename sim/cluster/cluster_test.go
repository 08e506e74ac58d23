package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observatory-sim/observatory-sim/sim"
	"github.com/observatory-sim/observatory-sim/sim/trace"
)

func TestNewSimulation_BuildsServersThenClients(t *testing.T) {
	servers := []sim.ServerDescriptor{{ProcessingPower: 2}, {ProcessingPower: 4}}
	clients := []sim.ClientDescriptor{
		{WorkGenerationRate: 10, Workshare: []float64{0.5, 0.5}},
		{WorkGenerationRate: 6, Workshare: []float64{1, 0}},
	}

	s, err := NewSimulation(servers, clients, sim.DefaultSimConfig())
	require.NoError(t, err)

	require.Len(t, s.Servers(), 2)
	require.Len(t, s.Clients(), 2)
	for i, srv := range s.Servers() {
		assert.Equal(t, i+1, srv.ID())
		assert.Equal(t, servers[i].ProcessingPower, srv.ProcessingPower())
	}
	for _, c := range s.Clients() {
		for k, target := range c.Targets() {
			assert.True(t, target.Link.PointsTo(s.Servers()[k].Host().Interface()))
		}
	}
}

func TestNewSimulation_FailsFastOnInvalidInput(t *testing.T) {
	valid := []sim.ServerDescriptor{{ProcessingPower: 2}, {ProcessingPower: 4}}
	tests := []struct {
		name    string
		servers []sim.ServerDescriptor
		clients []sim.ClientDescriptor
		config  sim.SimConfig
		wantErr error
	}{
		{
			name:    "workshare shorter than server list",
			servers: valid,
			clients: []sim.ClientDescriptor{{WorkGenerationRate: 10, Workshare: []float64{1}}},
			config:  sim.DefaultSimConfig(),
			wantErr: sim.ErrConfiguration,
		},
		{
			name:    "zero processing power",
			servers: []sim.ServerDescriptor{{ProcessingPower: 2}, {ProcessingPower: 0}},
			clients: []sim.ClientDescriptor{{WorkGenerationRate: 10, Workshare: []float64{0.5, 0.5}}},
			config:  sim.DefaultSimConfig(),
			wantErr: sim.ErrZeroCapacity,
		},
		{
			name:    "zero speed factor",
			servers: valid,
			config:  sim.NewSimConfig(0),
			wantErr: sim.ErrInvalidSpeedFactor,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSimulation(tc.servers, tc.clients, tc.config)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSimulation_TwoServerScenario_RoundWaitsForSlowestServer(t *testing.T) {
	// GIVEN servers with power {2, 4}, one client sending 10 units split evenly,
	// and a speed factor of 10 (2500ms -> 250ms, 1250ms -> 125ms)
	st := trace.NewSimulationTrace()
	config := sim.NewSimConfig(10)
	config.MaxRounds = 2
	s, err := NewSimulation(
		[]sim.ServerDescriptor{{ProcessingPower: 2}, {ProcessingPower: 4}},
		[]sim.ClientDescriptor{{WorkGenerationRate: 10, Workshare: []float64{0.5, 0.5}}},
		config, WithObserver(st))
	require.NoError(t, err)

	// WHEN it runs for two rounds
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	// THEN every round waited for the slower server
	rounds := st.Rounds()
	require.Len(t, rounds, 2)
	for _, r := range rounds {
		assert.GreaterOrEqual(t, r.Latency, 250*time.Millisecond)
		assert.Equal(t, uint64(10), r.Workload)
		assert.Equal(t, 2, r.Acks)
	}

	// AND each server slept its own scaled service time
	summary := trace.Summarize(st)
	assert.Equal(t, 4, summary.TotalPackets)
	assert.Equal(t, trace.ServerSummary{Packets: 2, Workload: 10, BusyScaledMs: 500, BusyServiceMs: 5000}, summary.Servers[1])
	assert.Equal(t, trace.ServerSummary{Packets: 2, Workload: 10, BusyScaledMs: 250, BusyServiceMs: 2500}, summary.Servers[2])
}

func TestSimulation_DoubleSpeed_HalvesServiceTimes(t *testing.T) {
	st := trace.NewSimulationTrace()
	config := sim.NewSimConfig(2.0)
	config.MaxRounds = 1
	s, err := NewSimulation(
		[]sim.ServerDescriptor{{ProcessingPower: 2}, {ProcessingPower: 4}},
		[]sim.ClientDescriptor{{WorkGenerationRate: 10, Workshare: []float64{0.5, 0.5}}},
		config, WithObserver(st))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	scaled := make(map[int]uint64)
	for _, rec := range st.Services() {
		scaled[rec.ServerID] = rec.ScaledMs
	}
	assert.Equal(t, map[int]uint64{1: 1250, 2: 625}, scaled)
}

func TestSimulation_ManyClientsSharingServers_AcksReachTheirSender(t *testing.T) {
	// GIVEN five clients all targeting the same two fast servers
	const numClients, rounds = 5, 3
	clients := make([]sim.ClientDescriptor, numClients)
	for i := range clients {
		clients[i] = sim.ClientDescriptor{WorkGenerationRate: uint64(i + 1), Workshare: []float64{1, 1}}
	}
	st := trace.NewSimulationTrace()
	s, err := NewSimulation(
		[]sim.ServerDescriptor{{ProcessingPower: 1000}, {ProcessingPower: 1000}},
		clients,
		sim.SimConfig{SpeedFactor: 1, MaxRounds: rounds},
		WithObserver(st))
	require.NoError(t, err)

	// WHEN they run concurrently
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	require.NoError(t, ctx.Err(), "a client stalled waiting for acknowledgments")

	// THEN every client completed all its rounds with exactly one ack per server
	summary := trace.Summarize(st)
	assert.Equal(t, numClients*rounds, summary.TotalRounds)
	for id := 1; id <= numClients; id++ {
		cs := summary.Clients[id]
		assert.Equal(t, rounds, cs.Rounds, "client %d", id)
		assert.Equal(t, uint64(2*id*rounds), cs.Workload, "client %d", id)
	}
	for _, r := range st.Rounds() {
		assert.Equal(t, 2, r.Acks)
	}
	assert.Equal(t, numClients*rounds, summary.Servers[1].Packets)
	assert.Equal(t, numClients*rounds, summary.Servers[2].Packets)

	// AND no acknowledgment was left over in any client's queue
	for _, c := range s.Clients() {
		assert.Equal(t, 0, c.Host().Interface().Len())
	}
}

func TestSimulation_Unbounded_RunsUntilCancelled(t *testing.T) {
	st := trace.NewSimulationTrace()
	s, err := NewSimulation(
		[]sim.ServerDescriptor{{ProcessingPower: 1000}},
		[]sim.ClientDescriptor{{WorkGenerationRate: 1, Workshare: []float64{1}}},
		sim.SimConfig{SpeedFactor: 1, RoundIntervalMs: 5},
		WithObserver(st))
	require.NoError(t, err)

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err = s.Run(ctx)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.Greater(t, len(st.Rounds()), 1)
}

func TestSimulation_GeneratorFactory_AppliesPerClient(t *testing.T) {
	st := trace.NewSimulationTrace()
	s, err := NewSimulation(
		[]sim.ServerDescriptor{{ProcessingPower: 1000}},
		[]sim.ClientDescriptor{
			{WorkGenerationRate: 1, Workshare: []float64{1}},
			{WorkGenerationRate: 2, Workshare: []float64{1}},
		},
		sim.SimConfig{SpeedFactor: 1, MaxRounds: 2},
		WithObserver(st),
		WithGeneratorFactory(func(id int, d sim.ClientDescriptor) sim.WorkGenerator {
			return sim.GeneratorFunc(func(round int) uint64 { return d.WorkGenerationRate * uint64(round) })
		}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	summary := trace.Summarize(st)
	assert.Equal(t, uint64(1+2), summary.Clients[1].Workload)
	assert.Equal(t, uint64(2+4), summary.Clients[2].Workload)
}

func TestSimulation_RunTwice_Panics(t *testing.T) {
	s, err := NewSimulation([]sim.ServerDescriptor{{ProcessingPower: 1}}, nil, sim.SimConfig{SpeedFactor: 1, MaxRounds: 1})
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))

	assert.Panics(t, func() { _ = s.Run(context.Background()) })
}

