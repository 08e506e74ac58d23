package sim

import "github.com/rs/xid"

// Packet is the unit of transmission between entities. It is created fresh
// for every send and never mutated afterwards.
type Packet struct {
	ID       string      // diagnostic identifier; acknowledgments get their own
	From     VirtualLink // the sender's own return address
	Workload uint64      // work units; 0 for acknowledgments
	Origin   int         // index of the sending entity, for diagnostics only
}

// NewPacket creates a packet that asks to be answered at from.
func NewPacket(from VirtualLink, workload uint64, origin int) Packet {
	return Packet{
		ID:       xid.New().String(),
		From:     from,
		Workload: workload,
		Origin:   origin,
	}
}

