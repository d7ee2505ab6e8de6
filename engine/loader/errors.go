package loader

import (
	"fmt"

	"github.com/pkg/errors"
)

// LoadErrorKind classifies a model load failure.
type LoadErrorKind int

const (
	// FileNotFound means the path did not exist when the load started.
	FileNotFound LoadErrorKind = iota
	// ImportError means the file exists but could not be parsed into a scene.
	ImportError
	// EmptyScene means the file parsed but contains no meshes.
	EmptyScene
)

func (k LoadErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "FileNotFound"
	case EmptyScene:
		return "EmptyScene"
	default:
		return "ImportError"
	}
}

var (
	ErrFileNotFound = errors.New("model file not found")
	ErrImport       = errors.New("model import failed")
	ErrEmptyScene   = errors.New("model contains no meshes")
	ErrNoRenderer   = errors.New("loader has no renderer")
)

// LoadError is returned by every Loader operation that fails on a specific file.
// Cause is the importer's message; importer error values never escape the package.
type LoadError struct {
	Path  string
	Kind  LoadErrorKind
	Cause string
}

func (e *LoadError) Error() string {
	if e.Cause == "" {
		return fmt.Sprintf("load %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("load %s: %s: %s", e.Path, e.Kind, e.Cause)
}

// Is matches the sentinel for the error's kind. An EmptyScene error also matches ErrImport.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrFileNotFound:
		return e.Kind == FileNotFound
	case ErrImport:
		return e.Kind == ImportError || e.Kind == EmptyScene
	case ErrEmptyScene:
		return e.Kind == EmptyScene
	}
	return false
}

func newLoadError(path string, kind LoadErrorKind, cause error) *LoadError {
	le := &LoadError{Path: path, Kind: kind}
	if cause != nil {
		le.Cause = cause.Error()
	}
	return le
}
