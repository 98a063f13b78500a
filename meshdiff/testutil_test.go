package meshdiff

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

// testCylinder creates a polygonal cylinder along the z axis with outward
// facing triangles. Either cap may be left open.
func testCylinder(radius, height float64, sides int, bottom, top bool) *model3d.Mesh {
	ring := func(z float64) []model3d.Coord3D {
		res := make([]model3d.Coord3D, sides)
		for i := range res {
			theta := 2 * math.Pi * float64(i) / float64(sides)
			res[i] = model3d.XYZ(radius*math.Cos(theta), radius*math.Sin(theta), z)
		}
		return res
	}
	lower, upper := ring(0), ring(height)
	m := model3d.NewMesh()
	for i := 0; i < sides; i++ {
		j := (i + 1) % sides
		m.Add(&model3d.Triangle{lower[i], lower[j], upper[j]})
		m.Add(&model3d.Triangle{lower[i], upper[j], upper[i]})
		if bottom {
			m.Add(&model3d.Triangle{model3d.Z(0), lower[j], lower[i]})
		}
		if top {
			m.Add(&model3d.Triangle{model3d.Z(height), upper[i], upper[j]})
		}
	}
	return m
}

// prismVolume is the volume enclosed by a closed testCylinder.
func prismVolume(radius, height float64, sides int) float64 {
	n := float64(sides)
	return n / 2 * radius * radius * math.Sin(2*math.Pi/n) * height
}

func translateMesh(m *model3d.Mesh, offset model3d.Coord3D) *model3d.Mesh {
	xf := IdentityTransform()
	xf.Translation = offset
	return TransformMesh(m, xf)
}

func checkClosed(t *testing.T, m *model3d.Mesh) {
	t.Helper()
	if loops := (LoopFiller{}).FindBoundaryLoops(m); len(loops) != 0 {
		t.Fatalf("expected closed mesh but found %d boundary loops", len(loops))
	}
}

func checkNear(t *testing.T, name string, actual, expected, tol float64) {
	t.Helper()
	if math.Abs(actual-expected) > tol {
		t.Fatalf("%s: expected %f but got %f (tolerance %f)", name, expected, actual, tol)
	}
}
