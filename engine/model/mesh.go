// Package model holds procedural triangle meshes and their GPU vertex layouts.
package model

import (
	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/chewxy/math32"
)

// Mesh is an indexed triangle mesh in model space. Meshes are immutable once built and may be
// shared between any number of scene nodes.
type Mesh struct {
	// Name is the mesh identifier, used for debugging and GPU buffer labels.
	Name string

	// Vertices are the mesh vertices.
	Vertices []GPUVertex

	// Indices are the triangle indices, three per triangle, counter-clockwise front faces.
	Indices []uint32

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32

	// BoundingRadius is the maximum vertex distance from the model-space origin.
	BoundingRadius float32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Center returns the centre of the bounding box.
func (m *Mesh) Center() common.Vec3 {
	return common.V3(
		(m.BoundingMin[0]+m.BoundingMax[0])/2,
		(m.BoundingMin[1]+m.BoundingMax[1])/2,
		(m.BoundingMin[2]+m.BoundingMax[2])/2,
	)
}

// newMesh finalizes a generated mesh by computing its bounds.
func newMesh(name string, vertices []GPUVertex, indices []uint32) *Mesh {
	m := &Mesh{Name: name, Vertices: vertices, Indices: indices}
	if len(vertices) == 0 {
		return m
	}
	m.BoundingMin = vertices[0].Position
	m.BoundingMax = vertices[0].Position
	for _, v := range vertices[1:] {
		for a := 0; a < 3; a++ {
			m.BoundingMin[a] = min(m.BoundingMin[a], v.Position[a])
			m.BoundingMax[a] = max(m.BoundingMax[a], v.Position[a])
		}
	}
	m.BoundingRadius = ComputeBoundingRadius(vertices)
	return m
}

func vertex(p, n common.Vec3) GPUVertex {
	return GPUVertex{Position: p.Array(), Normal: n.Array()}
}

// Box builds an axis-aligned box centred on the origin with flat per-face normals.
//
// Parameters:
//   - width: size along X
//   - height: size along Y
//   - depth: size along Z
//
// Returns:
//   - *Mesh: 24 vertices, 12 triangles
func Box(width, height, depth float32) *Mesh {
	hx, hy, hz := width/2, height/2, depth/2

	// each face: normal, then two in-plane axes (u, v) scaled to the half extents
	faces := []struct {
		n, u, v common.Vec3
	}{
		{common.V3(1, 0, 0), common.V3(0, 0, -hz), common.V3(0, hy, 0)},
		{common.V3(-1, 0, 0), common.V3(0, 0, hz), common.V3(0, hy, 0)},
		{common.V3(0, 1, 0), common.V3(hx, 0, 0), common.V3(0, 0, -hz)},
		{common.V3(0, -1, 0), common.V3(hx, 0, 0), common.V3(0, 0, hz)},
		{common.V3(0, 0, 1), common.V3(hx, 0, 0), common.V3(0, hy, 0)},
		{common.V3(0, 0, -1), common.V3(-hx, 0, 0), common.V3(0, hy, 0)},
	}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		center := common.V3(f.n.X*hx, f.n.Y*hy, f.n.Z*hz)
		base := uint32(len(vertices))
		vertices = append(vertices,
			vertex(center.Sub(f.u).Sub(f.v), f.n),
			vertex(center.Add(f.u).Sub(f.v), f.n),
			vertex(center.Add(f.u).Add(f.v), f.n),
			vertex(center.Sub(f.u).Add(f.v), f.n),
		)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return newMesh("box", vertices, indices)
}

// Cylinder builds a capped cylinder (or truncated cone) along Y, centred on the origin.
//
// Parameters:
//   - radiusTop: radius at +height/2
//   - radiusBottom: radius at -height/2
//   - height: total height
//   - radialSegments: number of sides, at least 3
//
// Returns:
//   - *Mesh: the cylinder mesh
func Cylinder(radiusTop, radiusBottom, height float32, radialSegments int) *Mesh {
	radialSegments = max(radialSegments, 3)
	half := height / 2
	slope := (radiusBottom - radiusTop) / height

	var vertices []GPUVertex
	var indices []uint32

	// torso: row 0 is the top ring, row 1 the bottom ring; the seam vertex is duplicated
	for row := 0; row < 2; row++ {
		r := radiusTop
		y := half
		if row == 1 {
			r = radiusBottom
			y = -half
		}
		for x := 0; x <= radialSegments; x++ {
			theta := float32(x) / float32(radialSegments) * 2 * math32.Pi
			sin, cos := math32.Sin(theta), math32.Cos(theta)
			vertices = append(vertices, vertex(
				common.V3(r*sin, y, r*cos),
				common.V3(sin, slope, cos).Normalize(),
			))
		}
	}
	stride := uint32(radialSegments + 1)
	for x := uint32(0); x < uint32(radialSegments); x++ {
		a := x
		b := stride + x
		c := b + 1
		d := a + 1
		indices = append(indices, a, b, d, b, c, d)
	}

	addCap := func(top bool) {
		r, y, ny := radiusTop, half, float32(1)
		if !top {
			r, y, ny = radiusBottom, -half, -1
		}
		if r <= 0 {
			return
		}
		center := uint32(len(vertices))
		vertices = append(vertices, vertex(common.V3(0, y, 0), common.V3(0, ny, 0)))
		for x := 0; x <= radialSegments; x++ {
			theta := float32(x) / float32(radialSegments) * 2 * math32.Pi
			vertices = append(vertices, vertex(
				common.V3(r*math32.Sin(theta), y, r*math32.Cos(theta)),
				common.V3(0, ny, 0),
			))
		}
		for x := uint32(0); x < uint32(radialSegments); x++ {
			i := center + 1 + x
			if top {
				indices = append(indices, i, i+1, center)
			} else {
				indices = append(indices, i+1, i, center)
			}
		}
	}
	addCap(true)
	addCap(false)

	return newMesh("cylinder", vertices, indices)
}

// Sphere builds a UV sphere centred on the origin.
//
// Parameters:
//   - radius: sphere radius
//   - widthSegments: segments around Y, at least 3
//   - heightSegments: segments from pole to pole, at least 2
//
// Returns:
//   - *Mesh: the sphere mesh
func Sphere(radius float32, widthSegments, heightSegments int) *Mesh {
	return sphereSector("sphere", radius, widthSegments, heightSegments, math32.Pi)
}

// Hemisphere builds the upper half of a UV sphere (y >= 0), open at the equator.
// Rotate it by π about X for a bottom cap.
//
// Parameters:
//   - radius: sphere radius
//   - widthSegments: segments around Y, at least 3
//   - heightSegments: segments from the pole to the equator, at least 1
//
// Returns:
//   - *Mesh: the hemisphere mesh
func Hemisphere(radius float32, widthSegments, heightSegments int) *Mesh {
	return sphereSector("hemisphere", radius, widthSegments, heightSegments, math32.Pi/2)
}

func sphereSector(name string, radius float32, widthSegments, heightSegments int, thetaLength float32) *Mesh {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 1)

	var vertices []GPUVertex
	for iy := 0; iy <= heightSegments; iy++ {
		theta := float32(iy) / float32(heightSegments) * thetaLength
		for ix := 0; ix <= widthSegments; ix++ {
			phi := float32(ix) / float32(widthSegments) * 2 * math32.Pi
			p := common.V3(
				-radius*math32.Cos(phi)*math32.Sin(theta),
				radius*math32.Cos(theta),
				radius*math32.Sin(phi)*math32.Sin(theta),
			)
			vertices = append(vertices, vertex(p, p.Normalize()))
		}
	}

	stride := uint32(widthSegments + 1)
	var indices []uint32
	for iy := uint32(0); iy < uint32(heightSegments); iy++ {
		for ix := uint32(0); ix < uint32(widthSegments); ix++ {
			a := iy*stride + ix + 1
			b := iy*stride + ix
			c := (iy+1)*stride + ix
			d := (iy+1)*stride + ix + 1
			if iy != 0 {
				indices = append(indices, a, b, d)
			}
			if iy != uint32(heightSegments)-1 || thetaLength < math32.Pi {
				indices = append(indices, b, c, d)
			}
		}
	}
	return newMesh(name, vertices, indices)
}

// Tube sweeps a circle of the given radius along a curve. Ring orientation is carried from
// one sample to the next by projecting the previous normal onto the new tangent plane, so
// the tube does not twist.
//
// Parameters:
//   - curve: the path to follow
//   - tubularSegments: number of segments along the curve, at least 1
//   - radius: tube radius
//   - radialSegments: number of sides, at least 3
//
// Returns:
//   - *Mesh: the open tube mesh
func Tube(curve *common.CatmullRom, tubularSegments int, radius float32, radialSegments int) *Mesh {
	tubularSegments = max(tubularSegments, 1)
	radialSegments = max(radialSegments, 3)

	vertices := make([]GPUVertex, 0, (tubularSegments+1)*(radialSegments+1))
	var normal common.Vec3
	for i := 0; i <= tubularSegments; i++ {
		t := float32(i) / float32(tubularSegments)
		p := curve.Point(t)
		tangent := curve.Tangent(t)

		if i == 0 {
			normal = initialNormal(tangent)
		} else {
			projected := normal.Sub(tangent.Scale(normal.Dot(tangent)))
			if projected.Len() > 1e-6 {
				normal = projected.Normalize()
			} else {
				normal = initialNormal(tangent)
			}
		}
		binormal := tangent.Cross(normal).Normalize()

		for j := 0; j <= radialSegments; j++ {
			v := float32(j) / float32(radialSegments) * 2 * math32.Pi
			sin, cos := math32.Sin(v), -math32.Cos(v)
			n := normal.Scale(cos).Add(binormal.Scale(sin)).Normalize()
			vertices = append(vertices, vertex(p.Add(n.Scale(radius)), n))
		}
	}

	stride := uint32(radialSegments + 1)
	indices := make([]uint32, 0, tubularSegments*radialSegments*6)
	for j := uint32(1); j <= uint32(tubularSegments); j++ {
		for i := uint32(1); i <= uint32(radialSegments); i++ {
			a := stride*(j-1) + (i - 1)
			b := stride*j + (i - 1)
			c := stride*j + i
			d := stride*(j-1) + i
			indices = append(indices, a, b, d, b, c, d)
		}
	}
	return newMesh("tube", vertices, indices)
}

// initialNormal picks a vector perpendicular to tangent, starting from the axis the tangent is
// least aligned with.
func initialNormal(tangent common.Vec3) common.Vec3 {
	ax, ay, az := math32.Abs(tangent.X), math32.Abs(tangent.Y), math32.Abs(tangent.Z)
	axis := common.V3(1, 0, 0)
	smallest := ax
	if ay <= smallest {
		smallest = ay
		axis = common.V3(0, 1, 0)
	}
	if az <= smallest {
		axis = common.V3(0, 0, 1)
	}
	return tangent.Cross(axis).Cross(tangent).Normalize()
}
