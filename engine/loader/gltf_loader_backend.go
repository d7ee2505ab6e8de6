package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend for .gltf and .glb files.
// Each triangle-type primitive becomes one sub-mesh; node transforms are not applied.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Extensions() []string {
	return []string{".gltf", ".glb"}
}

func (b *gltfLoaderBackendImpl) Import(path string) (*model.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "parse gltf")
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return sceneFromDocument(doc, name)
}

// sceneFromDocument converts a decoded glTF document. Buffer or accessor errors fail the import;
// a broken node graph only marks the scene Incomplete.
func sceneFromDocument(doc *gltf.Document, name string) (*model.Scene, error) {
	scene := &model.Scene{Name: name}

	// sub-mesh indices per glTF mesh
	subMeshes := make([][]int, len(doc.Meshes))
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			sm, ok, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d", mi, pi)
			}
			if !ok {
				continue
			}
			sm.Name = subMeshName(m.Name, mi, pi, len(m.Primitives))
			subMeshes[mi] = append(subMeshes[mi], len(scene.Meshes))
			scene.Meshes = append(scene.Meshes, sm)
		}
	}

	roots := rootNodes(doc)
	if len(roots) == 0 {
		scene.Incomplete = true
		return scene, nil
	}
	root := &model.Node{Name: name}
	onPath := make(map[uint32]bool)
	for _, idx := range roots {
		child, err := buildNode(doc, idx, subMeshes, onPath)
		if err != nil {
			scene.Incomplete = true
			return scene, nil
		}
		root.Children = append(root.Children, child)
	}
	scene.Root = root
	return scene, nil
}

func subMeshName(meshName string, mi, pi, primitives int) string {
	if meshName == "" {
		meshName = fmt.Sprintf("mesh%d", mi)
	}
	if primitives > 1 {
		return fmt.Sprintf("%s.%d", meshName, pi)
	}
	return meshName
}

// rootNodes returns the node list of the default scene, falling back to the first scene and
// then to every node no other node lists as a child.
func rootNodes(doc *gltf.Document) []uint32 {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}
	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []uint32
	for i, child := range isChild {
		if !child {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func buildNode(doc *gltf.Document, idx uint32, subMeshes [][]int, onPath map[uint32]bool) (*model.Node, error) {
	if int(idx) >= len(doc.Nodes) {
		return nil, errors.Errorf("node %d out of range", idx)
	}
	if onPath[idx] {
		return nil, errors.Errorf("node %d is its own ancestor", idx)
	}
	onPath[idx] = true
	defer delete(onPath, idx)

	gn := doc.Nodes[idx]
	n := &model.Node{Name: gn.Name}
	if gn.Mesh != nil {
		if int(*gn.Mesh) >= len(subMeshes) {
			return nil, errors.Errorf("node %d references mesh %d out of range", idx, *gn.Mesh)
		}
		n.MeshIndices = append(n.MeshIndices, subMeshes[*gn.Mesh]...)
	}
	for _, c := range gn.Children {
		child, err := buildNode(doc, c, subMeshes, onPath)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// readPrimitive returns ok=false for primitives that are not triangles or carry no positions.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (model.SubMesh, bool, error) {
	var sm model.SubMesh

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return sm, false, nil
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return sm, false, err
	}
	if sm.Positions, err = modeler.ReadPosition(doc, acr, nil); err != nil {
		return sm, false, errors.Wrap(err, "read positions")
	}

	if nIdx, ok := prim.Attributes["NORMAL"]; ok {
		acr, err := accessor(doc, nIdx)
		if err != nil {
			return sm, false, err
		}
		normals, err := modeler.ReadNormal(doc, acr, nil)
		if err != nil {
			return sm, false, errors.Wrap(err, "read normals")
		}
		if len(normals) == len(sm.Positions) {
			sm.Normals = normals
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acr, err := accessor(doc, *prim.Indices)
		if err != nil {
			return sm, false, err
		}
		if indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return sm, false, errors.Wrap(err, "read indices")
		}
	} else {
		indices = make([]uint32, len(sm.Positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, idx := range indices {
		if int(idx) >= len(sm.Positions) {
			return sm, false, errors.Errorf("index %d out of range for %d positions", idx, len(sm.Positions))
		}
	}

	sm.Faces, ok = facesForMode(prim.Mode, indices)
	return sm, ok, nil
}

func accessor(doc *gltf.Document, idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, errors.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

// facesForMode expands strips and fans into triangle faces. Point and line primitives are not drawable
// as triangles and report ok=false.
func facesForMode(mode gltf.PrimitiveMode, indices []uint32) ([][]uint32, bool) {
	var faces [][]uint32
	switch mode {
	case gltf.PrimitiveTriangles:
		for i := 0; i+2 < len(indices); i += 3 {
			faces = append(faces, []uint32{indices[i], indices[i+1], indices[i+2]})
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				faces = append(faces, []uint32{indices[i], indices[i+1], indices[i+2]})
			} else {
				faces = append(faces, []uint32{indices[i+1], indices[i], indices[i+2]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(indices); i++ {
			faces = append(faces, []uint32{indices[0], indices[i], indices[i+1]})
		}
	default:
		return nil, false
	}
	return faces, true
}
