package meshdiff

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

func TestDeriveICPParams(t *testing.T) {
	voxel, params := DeriveICPParams(100, DefaultConfig().ICP)
	checkNear(t, "voxel", voxel, 1, 1e-9)
	checkNear(t, "threshold", params.DistThresholdSq, 100, 1e-9)
	checkNear(t, "exit", params.ExitVal, 0.3, 1e-9)
	if params.IterLimit != DefaultICPIterLimit {
		t.Fatalf("expected iteration limit %d but got %d", DefaultICPIterLimit, params.IterLimit)
	}
}

func TestKabsch(t *testing.T) {
	expected := RigidTransform{
		Rotation:    EulerRotation(12, -33, 71),
		Translation: model3d.XYZ(0.5, -2, 7),
	}
	source := []model3d.Coord3D{
		model3d.XYZ(0, 0, 0),
		model3d.XYZ(1, 0, 0),
		model3d.XYZ(0, 2, 0),
		model3d.XYZ(0, 0, 3),
		model3d.XYZ(1, -1, 0.5),
	}
	target := make([]model3d.Coord3D, len(source))
	for i, s := range source {
		target[i] = expected.Apply(s)
	}
	actual, ok := kabsch(source, target)
	if !ok {
		t.Fatal("factorization failed")
	}
	for i, x := range actual.Rotation {
		checkNear(t, "rotation", x, expected.Rotation[i], 1e-8)
	}
	checkCoordNear(t, actual.Translation, expected.Translation, 1e-8)
}

func TestICPAlignTranslation(t *testing.T) {
	reference := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(30, 20, 12))
	moving := translateMesh(reference, model3d.XYZ(1, -0.6, 0.4))
	xf := (&ICPAligner{}).Align(moving, reference, 0.5, ICPParams{
		DistThresholdSq: 25,
		ExitVal:         1e-6,
		IterLimit:       200,
	})
	checkCoordNear(t, xf.Translation, model3d.XYZ(-1, 0.6, -0.4), 0.05)
	if !xf.Compose(RigidTransform{
		Rotation:    IdentityTransform().Rotation,
		Translation: model3d.XYZ(1, -0.6, 0.4),
	}).IsIdentity(0.05) {
		t.Fatalf("unexpected transform: %s", xf)
	}
}

func TestICPAlignRotation(t *testing.T) {
	reference := model3d.NewMeshRect(model3d.XYZ(-15, -10, -6), model3d.XYZ(15, 10, 6))
	offset := RigidTransform{
		Rotation:    EulerRotation(0, 0, 4),
		Translation: model3d.XYZ(0.5, 0.3, 0),
	}
	moving := TransformMesh(reference, offset)
	xf := (&ICPAligner{}).Align(moving, reference, 0.5, ICPParams{
		DistThresholdSq: 25,
		ExitVal:         1e-6,
		IterLimit:       300,
	})
	for _, v := range moving.VertexSlice() {
		checkCoordNear(t, xf.Apply(v), nearestVertex(reference, xf.Apply(v)), 0.1)
	}
}

func TestICPAlignDeterministic(t *testing.T) {
	reference := testCylinder(10, 30, 32, true, true)
	moving := translateMesh(testCylinder(10, 30, 32, true, true), model3d.XYZ(2.6, 0.3, -0.2))
	params := ICPParams{
		DistThresholdSq: 25,
		ExitVal:         1e-6,
		IterLimit:       50,
	}
	expected := (&ICPAligner{}).Align(moving, reference, 0.7, params)
	for i := 0; i < 4; i++ {
		actual := (&ICPAligner{}).Align(copyMesh(moving), copyMesh(reference), 0.7, params)
		if actual != expected {
			t.Fatalf("run %d: expected %s but got %s", i, expected, actual)
		}
	}
}

func TestMeshSDFDeterministic(t *testing.T) {
	mesh := testCylinder(3, 5, 24, true, true)
	sdf1 := meshSDF(mesh)
	sdf2 := meshSDF(copyMesh(mesh))
	for x := -4.0; x <= 4; x += 0.5 {
		for z := -1.0; z <= 6; z += 0.5 {
			c := model3d.XYZ(x, 0, z)
			p1, d1 := sdf1.PointSDF(c)
			p2, d2 := sdf2.PointSDF(c)
			if p1 != p2 || d1 != d2 {
				t.Fatalf("query %v: got (%v, %f) and (%v, %f)", c, p1, d1, p2, d2)
			}
		}
	}
}

func TestICPAlignNoCorrespondences(t *testing.T) {
	reference := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	moving := translateMesh(reference, model3d.XYZ(100, 0, 0))
	xf := (&ICPAligner{}).Align(moving, reference, 0.1, ICPParams{
		DistThresholdSq: 1,
		ExitVal:         1e-3,
		IterLimit:       10,
	})
	if !xf.IsIdentity(0) {
		t.Fatalf("expected identity but got %s", xf)
	}

	xf = (&ICPAligner{}).Align(model3d.NewMesh(), reference, 0.1, ICPParams{IterLimit: 10})
	if !xf.IsIdentity(0) {
		t.Fatalf("expected identity for empty mesh but got %s", xf)
	}
}

func TestSamplePoints(t *testing.T) {
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(4, 4, 4))
	points := SamplePoints(box, 0.5)
	// Roughly one point per surface cell.
	if len(points) < 300 || len(points) > 1000 {
		t.Fatalf("unexpected sample count %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !coordLess(points[i-1], points[i]) {
			t.Fatal("samples are not sorted")
		}
	}
	for _, p := range points {
		dist := math.Min(
			math.Min(math.Min(p.X, 4-p.X), math.Min(p.Y, 4-p.Y)),
			math.Min(p.Z, 4-p.Z),
		)
		if math.Abs(dist) > 1e-9 {
			t.Fatalf("sample %v is not on the surface", p)
		}
	}
}

func nearestVertex(m *model3d.Mesh, c model3d.Coord3D) model3d.Coord3D {
	var best model3d.Coord3D
	bestDist := math.Inf(1)
	for _, v := range m.VertexSlice() {
		if d := v.Dist(c); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}
