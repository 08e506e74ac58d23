package sim

import (
	"context"
	"sync"
)

// NetworkInterface owns one unbounded inbound queue. Any number of links may
// enqueue concurrently; only the owning task reads.
type NetworkInterface struct {
	mu     sync.Mutex
	queue  []Packet
	closed bool

	// ready holds at most one wake-up token for a reader blocked on an empty queue.
	ready chan struct{}
}

// NewNetworkInterface creates an interface with an empty, open queue.
func NewNetworkInterface() *NetworkInterface {
	return &NetworkInterface{
		ready: make(chan struct{}, 1),
	}
}

// VirtualLink returns a new link that delivers to this interface.
func (n *NetworkInterface) VirtualLink() VirtualLink {
	return VirtualLink{nic: n}
}

// Read blocks until a packet is available and dequeues it in FIFO order.
// It returns ctx.Err() if the context is cancelled first.
func (n *NetworkInterface) Read(ctx context.Context) (Packet, error) {
	for {
		n.mu.Lock()
		if n.closed {
			n.mu.Unlock()
			return Packet{}, ErrInterfaceClosed
		}
		if len(n.queue) > 0 {
			p := n.queue[0]
			n.queue[0] = Packet{}
			n.queue = n.queue[1:]
			n.mu.Unlock()
			return p, nil
		}
		n.mu.Unlock()

		select {
		case <-ctx.Done():
			return Packet{}, ctx.Err()
		case <-n.ready:
		}
	}
}

// Len returns the number of queued packets.
func (n *NetworkInterface) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue)
}

// Close drops any queued packets; later sends through any link fail with ErrPeerGone.
// Closing twice is a no-op.
func (n *NetworkInterface) Close() {
	n.mu.Lock()
	n.closed = true
	n.queue = nil
	n.mu.Unlock()

	select {
	case n.ready <- struct{}{}:
	default:
	}
}

func (n *NetworkInterface) enqueue(p Packet) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrPeerGone
	}
	n.queue = append(n.queue, p)
	n.mu.Unlock()

	select {
	case n.ready <- struct{}{}:
	default:
	}
	return nil
}
