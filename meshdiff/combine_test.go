package meshdiff

import (
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

func TestSolidCombinerOps(t *testing.T) {
	offset := model3d.XYZ(0.0371, 0.0193, 0.0257)
	a := model3d.NewMeshRect(offset, offset.AddScalar(2))
	b := model3d.NewMeshRect(offset.AddScalar(1), offset.AddScalar(3))
	combiner := &SolidCombiner{VoxelSize: 0.07}

	cases := []struct {
		op     BooleanOp
		volume float64
	}{
		{Difference, 7},
		{Intersection, 1},
		{Union, 15},
	}
	for _, c := range cases {
		res := combiner.Combine(a, b, c.op)
		if !res.Valid {
			t.Fatalf("%s: invalid result: %s", c.op, res.ErrorString)
		}
		checkClosed(t, res.Mesh)
		checkNear(t, c.op.String(), MeshVolume(res.Mesh), c.volume, 0.1*c.volume)
	}
}

func TestSolidCombinerEmptyResults(t *testing.T) {
	a := testCylinder(2, 3, 12, true, true)
	combiner := &SolidCombiner{VoxelSize: 0.1}

	res := combiner.Combine(a, a, Difference)
	if !res.Valid {
		t.Fatalf("self difference should be valid: %s", res.ErrorString)
	}
	if n := res.Mesh.NumTriangles(); n != 0 {
		t.Fatalf("self difference should be empty, got %d triangles", n)
	}

	far := translateMesh(a, model3d.XYZ(100, 0, 0))
	res = combiner.Combine(a, far, Intersection)
	if !res.Valid {
		t.Fatalf("disjoint intersection should be valid: %s", res.ErrorString)
	}
	if n := res.Mesh.NumTriangles(); n != 0 {
		t.Fatalf("disjoint intersection should be empty, got %d triangles", n)
	}
}

func TestSolidCombinerInvalid(t *testing.T) {
	closed := testCylinder(2, 3, 12, true, true)
	open := testCylinder(2, 3, 12, true, false)
	combiner := &SolidCombiner{VoxelSize: 0.1}

	res := combiner.Combine(closed, open, Difference)
	if res.Valid || res.Mesh != nil || res.ErrorString == "" {
		t.Fatalf("open operand should be invalid: %+v", res)
	}
	res = combiner.Combine(model3d.NewMesh(), closed, Union)
	if res.Valid || res.ErrorString == "" {
		t.Fatalf("empty operand should be invalid: %+v", res)
	}
	res = (&SolidCombiner{}).Combine(closed, closed, Union)
	if res.Valid {
		t.Fatal("zero voxel size should be invalid")
	}
}
