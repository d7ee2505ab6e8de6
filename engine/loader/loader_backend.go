package loader

import "github.com/Carmen-Shannon/oxy-viewer/engine/model"

// loaderBackend parses one model file format into the format-independent model.Scene.
// Backends do CPU work only and never touch the renderer.
type loaderBackend interface {
	// Import parses the file at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.Scene: the scene with sub-meshes in file order
	//   - error: error if the file cannot be parsed
	Import(path string) (*model.Scene, error)

	// Extensions lists the lower-case file extensions the backend accepts, dot included.
	//
	// Returns:
	//   - []string: the supported extensions
	Extensions() []string
}
