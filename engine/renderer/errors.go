package renderer

import "github.com/pkg/errors"

var (
	// ErrContextUnavailable is returned when the graphics context cannot be initialized.
	ErrContextUnavailable = errors.New("graphics context unavailable")

	// ErrLeakedHandles is returned by Close when leak detection is on and GPU objects are still alive.
	ErrLeakedHandles = errors.New("gpu handles leaked")

	// ErrClosed is the panic value for calls made after Close.
	ErrClosed = errors.New("renderer closed")

	// ErrReleased is the panic value for using a GPU resource after its Release.
	ErrReleased = errors.New("resource used after release")
)
