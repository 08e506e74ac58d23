// Package sim provides the concurrent simulation fabric for the observatory
// network: observatories (clients) generate work every round and distribute it
// across servers that process it at a fixed rate and acknowledge completion.
//
// # Reading Guide
//
// Start with these files to understand the fabric:
//   - packet.go, link.go, nic.go, host.go: addressing. A VirtualLink is the only
//     way to reach an entity; a Packet carries the sender's own link so the
//     receiver can answer without any registry.
//   - server.go: read one packet, sleep for the scaled service time, acknowledge.
//   - client.go: one round = fan-out scaled workload to every server, then count
//     exactly one acknowledgment per server before the next round.
//
// # Architecture
//
// The sim package defines the entities and their extension points; the rest
// lives in sub-packages:
//   - sim/cluster/: builds all entities from the two datasets and runs them
//   - sim/workload/: key/value and YAML configuration loaders
//   - sim/trace/: service and round records, summaries, CSV export
//
// # Key Interfaces
//
//   - WorkGenerator: work units a client produces in a given round
//   - Observer: receives a record for every served packet and completed round
package sim
