package meshdiff

import (
	"sort"

	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/exp/constraints"
)

// BoundingDiagonal returns the length of the diagonal of m's bounding box.
func BoundingDiagonal(m *model3d.Mesh) float64 {
	if m.NumTriangles() == 0 {
		return 0
	}
	return m.Min().Dist(m.Max())
}

// MeshVolume computes the signed volume enclosed by a mesh with outward
// facing normals.
//
// The result is only meaningful for closed meshes.
func MeshVolume(m *model3d.Mesh) float64 {
	var total float64
	for _, t := range CanonicalTriangles(m) {
		total += t[0].Dot(t[1].Cross(t[2]))
	}
	return total / 6
}

// CanonicalTriangles returns the triangles of m in a deterministic order.
//
// The mesh itself does not guarantee an iteration order, so everything that
// must be reproducible (file output, sampling) goes through this.
func CanonicalTriangles(m *model3d.Mesh) []*model3d.Triangle {
	tris := m.TriangleSlice()
	sort.Slice(tris, func(i, j int) bool {
		return triangleLess(tris[i], tris[j])
	})
	return tris
}

func triangleLess(t1, t2 *model3d.Triangle) bool {
	for i := 0; i < 3; i++ {
		if t1[i] != t2[i] {
			return coordLess(t1[i], t2[i])
		}
	}
	return false
}

func coordLess(c1, c2 model3d.Coord3D) bool {
	if c1.X != c2.X {
		return c1.X < c2.X
	}
	if c1.Y != c2.Y {
		return c1.Y < c2.Y
	}
	return c1.Z < c2.Z
}

func meshSolid(m *model3d.Mesh) model3d.Solid {
	return model3d.NewColliderSolid(meshCollider(m))
}

// meshCollider and meshSDF build their hierarchies from the canonical
// triangle order, so ties between equidistant triangles always resolve the
// same way.
func meshCollider(m *model3d.Mesh) model3d.MultiCollider {
	tris := CanonicalTriangles(m)
	model3d.GroupTriangles(tris)
	return model3d.GroupedTrianglesToCollider(tris)
}

func meshSDF(m *model3d.Mesh) model3d.PointSDF {
	tris := CanonicalTriangles(m)
	model3d.GroupTriangles(tris)
	return model3d.GroupedTrianglesToSDF(tris)
}

func copyMesh(m *model3d.Mesh) *model3d.Mesh {
	res := model3d.NewMesh()
	m.Iterate(func(t *model3d.Triangle) {
		t1 := *t
		res.Add(&t1)
	})
	return res
}

func clamp[F constraints.Float](x, min, max F) F {
	if x < min {
		return min
	} else if x > max {
		return max
	}
	return x
}
