package sim

import "context"

// Host is the attachment point of a Server or Client: it owns exactly one
// NetworkInterface for its whole lifetime.
type Host struct {
	nic *NetworkInterface
}

// NewHost creates a host with a fresh interface.
func NewHost() *Host {
	return &Host{nic: NewNetworkInterface()}
}

// VirtualLink returns a link to this host's interface.
func (h *Host) VirtualLink() VirtualLink {
	return h.nic.VirtualLink()
}

// Interface returns the host's network interface.
func (h *Host) Interface() *NetworkInterface {
	return h.nic
}

// Read blocks until the next inbound packet arrives.
func (h *Host) Read(ctx context.Context) (Packet, error) {
	return h.nic.Read(ctx)
}

// Close detaches the host from the network.
func (h *Host) Close() {
	h.nic.Close()
}
