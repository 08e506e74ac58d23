package trace

import "sync"

// SimulationTrace collects service and round records while the simulation runs.
// Servers and clients record from their own goroutines, so every method is
// safe for concurrent use.
type SimulationTrace struct {
	mu       sync.Mutex
	services []ServiceRecord
	rounds   []RoundRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace() *SimulationTrace {
	return &SimulationTrace{
		services: make([]ServiceRecord, 0),
		rounds:   make([]RoundRecord, 0),
	}
}

// ObserveService appends a service record.
func (st *SimulationTrace) ObserveService(record ServiceRecord) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.services = append(st.services, record)
}

// ObserveRound appends a round record.
func (st *SimulationTrace) ObserveRound(record RoundRecord) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.rounds = append(st.rounds, record)
}

// Services returns a copy of the service records in arrival order.
func (st *SimulationTrace) Services() []ServiceRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]ServiceRecord, len(st.services))
	copy(out, st.services)
	return out
}

// Rounds returns a copy of the round records in completion order.
func (st *SimulationTrace) Rounds() []RoundRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]RoundRecord, len(st.rounds))
	copy(out, st.rounds)
	return out
}
