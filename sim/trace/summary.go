package trace

import "time"

// ServerSummary aggregates the packets one server processed.
type ServerSummary struct {
	Packets       int    `json:"packets"`
	Workload      uint64 `json:"workload"`
	BusyScaledMs  uint64 `json:"busy_scaled_ms"`
	BusyServiceMs uint64 `json:"busy_service_ms"`
}

// ClientSummary aggregates the rounds one client completed.
type ClientSummary struct {
	Rounds      int           `json:"rounds"`
	Workload    uint64        `json:"workload"`
	MeanLatency time.Duration `json:"mean_latency_ns"`
	MaxLatency  time.Duration `json:"max_latency_ns"`
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalPackets int                   `json:"total_packets"`
	TotalRounds  int                   `json:"total_rounds"`
	MeanLatency  time.Duration         `json:"mean_round_latency_ns"`
	MaxLatency   time.Duration         `json:"max_round_latency_ns"`
	Servers      map[int]ServerSummary `json:"servers"`
	Clients      map[int]ClientSummary `json:"clients"`
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		Servers: make(map[int]ServerSummary),
		Clients: make(map[int]ClientSummary),
	}
	if st == nil {
		return summary
	}

	services := st.Services()
	summary.TotalPackets = len(services)
	for _, s := range services {
		ss := summary.Servers[s.ServerID]
		ss.Packets++
		ss.Workload += s.Workload
		ss.BusyServiceMs += s.ServiceMs
		ss.BusyScaledMs += s.ScaledMs
		summary.Servers[s.ServerID] = ss
	}

	rounds := st.Rounds()
	summary.TotalRounds = len(rounds)
	if len(rounds) == 0 {
		return summary
	}
	var total time.Duration
	latencySums := make(map[int]time.Duration)
	for _, r := range rounds {
		total += r.Latency
		if r.Latency > summary.MaxLatency {
			summary.MaxLatency = r.Latency
		}
		cs := summary.Clients[r.ClientID]
		cs.Rounds++
		cs.Workload += r.Workload
		if r.Latency > cs.MaxLatency {
			cs.MaxLatency = r.Latency
		}
		latencySums[r.ClientID] += r.Latency
		summary.Clients[r.ClientID] = cs
	}
	summary.MeanLatency = total / time.Duration(len(rounds))
	for id, cs := range summary.Clients {
		cs.MeanLatency = latencySums[id] / time.Duration(cs.Rounds)
		summary.Clients[id] = cs
	}
	return summary
}
