package sim

import "fmt"

// VirtualLink is a one-directional handle to exactly one NetworkInterface.
// Links are plain values: copying one yields another handle to the same queue,
// and any number of them may be held by concurrent senders. The zero value is
// not connected to anything.
type VirtualLink struct {
	nic *NetworkInterface
}

// Send enqueues p on the linked interface without waiting for the receiver.
// It fails only when the receiving interface has been closed (or the link is
// unconnected), in which case the error wraps ErrPeerGone.
func (l VirtualLink) Send(p Packet) error {
	if l.nic == nil {
		return fmt.Errorf("sending packet %s: unconnected link: %w", p.ID, ErrPeerGone)
	}
	if err := l.nic.enqueue(p); err != nil {
		return fmt.Errorf("sending packet %s: %w", p.ID, err)
	}
	return nil
}

// Connected reports whether the link addresses an interface.
func (l VirtualLink) Connected() bool {
	return l.nic != nil
}

// PointsTo reports whether the link delivers to nic.
func (l VirtualLink) PointsTo(nic *NetworkInterface) bool {
	return l.nic != nil && l.nic == nic
}
