package mesh

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// boxFace is one side of an axis-aligned box: its outward normal and two in-plane axes with u x v = normal.
type boxFace struct {
	normal, u, v mgl32.Vec3
}

var boxFaces = [6]boxFace{
	{normal: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{normal: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
}

func appendVertex(g *model.Geometry, p, n mgl32.Vec3) {
	g.Vertices = append(g.Vertices, p[0], p[1], p[2], n[0], n[1], n[2])
}

// BoxGeometry builds an axis-aligned box centred on the origin with flat per-face normals:
// 4 vertices per face (24 total) and 2 counter-clockwise triangles per face (36 indices).
//
// Parameters:
//   - width, height, depth: the extents along X, Y and Z
//
// Returns:
//   - model.Geometry: the box
func BoxGeometry(width, height, depth float32) model.Geometry {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	g := model.Geometry{
		Vertices: make([]float32, 0, 24*model.FloatsPerVertex),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range boxFaces {
		centre := mul(f.normal, half)
		u, v := mul(f.u, half), mul(f.v, half)
		base := uint32(g.VertexCount())
		appendVertex(&g, centre.Sub(u).Sub(v), f.normal)
		appendVertex(&g, centre.Add(u).Sub(v), f.normal)
		appendVertex(&g, centre.Add(u).Add(v), f.normal)
		appendVertex(&g, centre.Sub(u).Add(v), f.normal)
		g.Indices = append(g.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return g
}

// mul is the component-wise product.
func mul(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// UnitBox is a 1x1x1 box.
func UnitBox() model.Geometry {
	return BoxGeometry(1, 1, 1)
}

// BuildingBox is the 0.4 x 0.8 x 0.4 box buildings are scaled from.
func BuildingBox() model.Geometry {
	return BoxGeometry(0.4, 0.8, 0.4)
}

// PyramidGeometry builds a square-based pyramid centred on the origin: base at -height/2, apex at
// +height/2. Each of the 4 sides is its own triangle with a flat face normal, and the base is two
// downward-facing triangles, for 18 vertices and 18 indices.
//
// Parameters:
//   - baseWidth: the side length of the square base
//   - height: the distance from base to apex
//
// Returns:
//   - model.Geometry: the pyramid
func PyramidGeometry(baseWidth, height float32) model.Geometry {
	w, h := baseWidth/2, height/2
	frontLeft := mgl32.Vec3{-w, -h, w}
	frontRight := mgl32.Vec3{w, -h, w}
	backRight := mgl32.Vec3{w, -h, -w}
	backLeft := mgl32.Vec3{-w, -h, -w}
	apex := mgl32.Vec3{0, h, 0}

	triangles := [][3]mgl32.Vec3{
		{frontLeft, frontRight, apex},
		{frontRight, backRight, apex},
		{backRight, backLeft, apex},
		{backLeft, frontLeft, apex},
		{frontLeft, backRight, frontRight},
		{frontLeft, backLeft, backRight},
	}

	g := model.Geometry{
		Vertices: make([]float32, 0, 18*model.FloatsPerVertex),
		Indices:  make([]uint32, 0, 18),
	}
	for _, t := range triangles {
		n := common.FaceNormal(t[0], t[1], t[2])
		for _, p := range t {
			g.Indices = append(g.Indices, uint32(g.VertexCount()))
			appendVertex(&g, p, n)
		}
	}
	return g
}

// UnitPyramid is the 0.4-wide, 0.8-tall pyramid matching BuildingBox's proportions.
func UnitPyramid() model.Geometry {
	return PyramidGeometry(0.4, 0.8)
}

// PlaneGeometry builds a flat rectangle on y = 0 facing +Y: 4 vertices, 6 indices.
//
// Parameters:
//   - width: extent along X
//   - depth: extent along Z
//
// Returns:
//   - model.Geometry: the plane
func PlaneGeometry(width, depth float32) model.Geometry {
	w, d := width/2, depth/2
	up := mgl32.Vec3{0, 1, 0}
	g := model.Geometry{}
	appendVertex(&g, mgl32.Vec3{-w, 0, d}, up)
	appendVertex(&g, mgl32.Vec3{w, 0, d}, up)
	appendVertex(&g, mgl32.Vec3{w, 0, -d}, up)
	appendVertex(&g, mgl32.Vec3{-w, 0, -d}, up)
	g.Indices = []uint32{0, 1, 2, 2, 3, 0}
	return g
}

// SkyboxGeometry builds a 2x2x2 cube seen from the inside: windings reversed and normals pointing inward.
func SkyboxGeometry() model.Geometry {
	g := BoxGeometry(2, 2, 2)
	for i := 0; i < len(g.Indices); i += 3 {
		g.Indices[i+1], g.Indices[i+2] = g.Indices[i+2], g.Indices[i+1]
	}
	for v := 0; v < g.VertexCount(); v++ {
		o := v*model.FloatsPerVertex + 3
		g.Vertices[o], g.Vertices[o+1], g.Vertices[o+2] = -g.Vertices[o], -g.Vertices[o+1], -g.Vertices[o+2]
	}
	return g
}

// Shape names a built-in geometry, as used in configuration files.
type Shape string

const (
	ShapeBox      Shape = "box"
	ShapeBuilding Shape = "building"
	ShapePyramid  Shape = "pyramid"
	ShapePlane    Shape = "plane"
)

// ShapeGeometry returns the geometry for a Shape name, reporting false for unknown names.
func ShapeGeometry(s Shape) (model.Geometry, bool) {
	switch s {
	case ShapeBox, "":
		return UnitBox(), true
	case ShapeBuilding:
		return BuildingBox(), true
	case ShapePyramid:
		return UnitPyramid(), true
	case ShapePlane:
		return PlaneGeometry(1, 1), true
	default:
		return model.Geometry{}, false
	}
}
