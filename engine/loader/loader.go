package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/pkg/errors"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	renderer    renderer.Renderer
	logger      *slog.Logger
	postProcess PostProcess
	workers     int

	sceneCache map[string]*model.Scene

	backend loaderBackend
}

// Loader imports model files into CPU-side scenes and turns them into GPU meshes.
// Imported scenes are cached by path. Import and ImportAll are safe for concurrent use;
// Load and LoadCombined upload to the renderer and must run on the render thread.
type Loader interface {
	// Import parses a model file into a post-processed scene without any GPU work.
	// A missing file fails with ErrFileNotFound before the importer runs.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *model.Scene: the imported scene, shared with the cache
	//   - error: a *LoadError matching ErrFileNotFound, ErrImport or ErrEmptyScene
	Import(path string) (*model.Scene, error)

	// ImportAll imports several files concurrently on a worker pool.
	//
	// Parameters:
	//   - paths: the files to import
	//
	// Returns:
	//   - map[string]*model.Scene: the successfully imported scenes keyed by path
	//   - error: the error of the first failing path in argument order, or nil
	ImportAll(paths ...string) (map[string]*model.Scene, error)

	// Load imports a file and uploads one mesh per sub-mesh, in scene order.
	// Incomplete scenes fail with ErrImport. If any upload fails, the meshes already uploaded are released.
	//
	// Parameters:
	//   - path: the file path to the model file
	//   - defaults: the position, scale and colour every mesh starts with
	//
	// Returns:
	//   - []mesh.Mesh: the uploaded meshes
	//   - error: a *LoadError, ErrNoRenderer or an upload error
	Load(path string, defaults common.Placement) ([]mesh.Mesh, error)

	// LoadCombined imports a file and uploads the whole node tree as a single mesh.
	// Incomplete scenes and scenes without a root node fail with ErrImport.
	//
	// Parameters:
	//   - path: the file path to the model file
	//   - defaults: the position, scale and colour of the mesh
	//
	// Returns:
	//   - mesh.Mesh: the uploaded mesh
	//   - error: a *LoadError, ErrNoRenderer or an upload error
	LoadCombined(path string, defaults common.Placement) (mesh.Mesh, error)

	// Get retrieves a cached scene by path. Returns nil if not found.
	//
	// Parameters:
	//   - path: the cache key to look up
	//
	// Returns:
	//   - *model.Scene: the cached scene or nil
	Get(path string) *model.Scene

	// Scenes returns a copy of the scene cache.
	//
	// Returns:
	//   - map[string]*model.Scene: all cached scenes keyed by path
	Scenes() map[string]*model.Scene
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:          sync.RWMutex{},
		logger:      slog.Default(),
		postProcess: DefaultPostProcess,
		workers:     4,
		sceneCache:  make(map[string]*model.Scene),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Import(path string) (*model.Scene, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newLoadError(path, FileNotFound, nil)
		}
		return nil, newLoadError(path, ImportError, err)
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, newLoadError(path, ImportError, err)
	}

	start := time.Now()
	scene, err := importSafely(backend, path)
	if err != nil {
		l.logger.Error("model import failed", "path", path, "error", err)
		return nil, newLoadError(path, ImportError, err)
	}
	if scene == nil || len(scene.Meshes) == 0 {
		return nil, newLoadError(path, EmptyScene, nil)
	}
	l.postProcess.Apply(scene)

	l.mu.Lock()
	if cached, ok := l.sceneCache[path]; ok {
		// a concurrent import of the same path won
		scene = cached
	} else {
		l.sceneCache[path] = scene
	}
	l.mu.Unlock()

	l.logger.Info("model imported",
		"path", path,
		"meshes", len(scene.Meshes),
		"incomplete", scene.Incomplete,
		"elapsed", time.Since(start),
	)
	return scene, nil
}

func (l *loader) ImportAll(paths ...string) (map[string]*model.Scene, error) {
	results := make(map[string]*model.Scene, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	pool := worker.NewDynamicWorkerPool(min(l.workers, len(paths)), len(paths), time.Second)
	defer pool.Stop()

	var (
		wg       sync.WaitGroup
		resultMu sync.Mutex
		errs     = make([]error, len(paths))
	)
	for i, p := range paths {
		wg.Add(1)
		idx, path := i, p
		pool.SubmitTask(worker.Task{
			ID:      idx,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()
				scene, err := l.Import(path)
				if err != nil {
					errs[idx] = err
					return nil, err
				}
				resultMu.Lock()
				results[path] = scene
				resultMu.Unlock()
				return scene, nil
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (l *loader) Load(path string, defaults common.Placement) ([]mesh.Mesh, error) {
	if l.renderer == nil {
		return nil, ErrNoRenderer
	}
	scene, err := l.Import(path)
	if err != nil {
		return nil, err
	}
	if scene.Incomplete {
		return nil, newLoadError(path, ImportError, errors.New("scene is flagged incomplete"))
	}

	geometries := FlattenPerSubMesh(scene)
	meshes := make([]mesh.Mesh, 0, len(geometries))
	for i, g := range geometries {
		m := mesh.NewMesh(l.renderer, g,
			mesh.WithName(fmt.Sprintf("%s/%s", scene.Name, scene.Meshes[i].Name)),
			mesh.WithPlacement(defaults),
			mesh.WithLogger(l.logger),
		)
		if err := m.Upload(); err != nil {
			for _, uploaded := range meshes {
				uploaded.Release()
			}
			return nil, errors.Wrapf(err, "upload %s", m.Name())
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func (l *loader) LoadCombined(path string, defaults common.Placement) (mesh.Mesh, error) {
	if l.renderer == nil {
		return nil, ErrNoRenderer
	}
	scene, err := l.Import(path)
	if err != nil {
		return nil, err
	}

	g, err := FlattenCombined(scene)
	if err != nil {
		return nil, newLoadError(path, ImportError, err)
	}
	m := mesh.NewMesh(l.renderer, g,
		mesh.WithName(scene.Name),
		mesh.WithPlacement(defaults),
		mesh.WithLogger(l.logger),
	)
	if err := m.Upload(); err != nil {
		return nil, errors.Wrapf(err, "upload %s", m.Name())
	}
	return m, nil
}

func (l *loader) Get(path string) *model.Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sceneCache[path]
}

func (l *loader) Scenes() map[string]*model.Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]*model.Scene, len(l.sceneCache))
	for k, v := range l.sceneCache {
		out[k] = v
	}
	return out
}

// resolveBackend checks the file extension against the configured backend.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	if l.backend == nil {
		return nil, errors.New("no loader backend configured")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(l.backend.Extensions(), ext) {
		return nil, errors.Errorf("unsupported model format %q", ext)
	}
	return l.backend, nil
}

// importSafely converts a panic inside the third-party importer into an error.
func importSafely(backend loaderBackend, path string) (scene *model.Scene, err error) {
	defer func() {
		if r := recover(); r != nil {
			scene = nil
			err = errors.Errorf("importer panic: %v", r)
		}
	}()
	return backend.Import(path)
}
