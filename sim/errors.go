package sim

import "errors"

var (
	// ErrConfiguration marks a malformed or inconsistent dataset. Always detected
	// before any entity starts.
	ErrConfiguration = errors.New("configuration error")

	// ErrZeroCapacity marks a server descriptor whose processing power is 0.
	ErrZeroCapacity = errors.New("server processing power must be positive")

	// ErrInvalidSpeedFactor marks a global speed factor that is not a finite positive number.
	ErrInvalidSpeedFactor = errors.New("global speed factor must be a finite positive number")

	// ErrPeerGone is returned by VirtualLink.Send when the receiving interface
	// has been closed because its owning task terminated.
	ErrPeerGone = errors.New("peer gone")

	// ErrInterfaceClosed is returned by NetworkInterface.Read after Close.
	ErrInterfaceClosed = errors.New("network interface closed")
)
