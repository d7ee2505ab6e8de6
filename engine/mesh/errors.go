package mesh

import "github.com/pkg/errors"

var (
	// ErrNotUploaded is the panic value for drawing a mesh before Upload.
	ErrNotUploaded = errors.New("mesh drawn before upload")

	// ErrAlreadyUploaded is the panic value for uploading a mesh twice.
	ErrAlreadyUploaded = errors.New("mesh already uploaded")

	// ErrLayoutMismatch is returned when a program reads a vertex input the layout does not provide.
	ErrLayoutMismatch = errors.New("vertex layout does not match program inputs")
)
