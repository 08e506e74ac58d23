// Package trace provides service and round recording for simulation analysis.
// This package has no dependencies on sim/ or sim/cluster/; it stores pure data types.
package trace

import "time"

// ServiceRecord captures a single packet processed by a server.
type ServiceRecord struct {
	ServerID  int
	Origin    int    // client that sent the work
	PacketID  string // ID of the request packet, not of the acknowledgment
	Workload  uint64
	ServiceMs uint64 // floor(1000 * workload / processing power)
	ScaledMs  uint64 // ServiceMs after the global speed factor
}

// RoundRecord captures one completed client round.
type RoundRecord struct {
	ClientID int
	Round    int
	Workload uint64        // sum of the workloads sent to every target
	Acks     int           // acknowledgments counted by the barrier
	Latency  time.Duration // first send to last acknowledgment
}
