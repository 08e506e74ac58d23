package sim

import "github.com/observatory-sim/observatory-sim/sim/trace"

// Observer receives a record for every packet a server acknowledges and every
// round a client completes. Implementations are called from entity goroutines
// and must be safe for concurrent use.
type Observer interface {
	ObserveService(record trace.ServiceRecord)
	ObserveRound(record trace.RoundRecord)
}

// NopObserver discards all records.
type NopObserver struct{}

func (NopObserver) ObserveService(trace.ServiceRecord) {}
func (NopObserver) ObserveRound(trace.RoundRecord)     {}

// Observers fans each record out to every member in order.
type Observers []Observer

func (obs Observers) ObserveService(record trace.ServiceRecord) {
	for _, o := range obs {
		o.ObserveService(record)
	}
}

func (obs Observers) ObserveRound(record trace.RoundRecord) {
	for _, o := range obs {
		o.ObserveRound(record)
	}
}
