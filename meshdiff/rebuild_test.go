package meshdiff

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

func TestVoxelRebuild(t *testing.T) {
	mesh := testCylinder(5, 10, 24, true, true)
	var fractions []float64
	rebuilt, err := VoxelRebuilder{}.Rebuild(mesh, RebuildSettings{
		VoxelSize: 0.25,
		Progress: func(f float64) bool {
			fractions = append(fractions, f)
			return true
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rebuilt == mesh {
		t.Fatal("rebuild should produce a new mesh")
	}
	checkClosed(t, rebuilt)

	expected := prismVolume(5, 10, 24)
	checkNear(t, "volume", MeshVolume(rebuilt), expected, 0.05*expected)

	if len(fractions) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] <= fractions[i-1] {
			t.Fatalf("progress went from %f to %f", fractions[i-1], fractions[i])
		}
	}
	if fractions[len(fractions)-1] != 1 {
		t.Fatalf("final progress should be 1 but got %f", fractions[len(fractions)-1])
	}
}

func TestVoxelRebuildShifted(t *testing.T) {
	mesh := testCylinder(3, 4, 16, true, true)
	settings := RebuildSettings{VoxelSize: 0.2137}
	r1, err := VoxelRebuilder{}.Rebuild(mesh, settings)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := VoxelRebuilder{}.Rebuild(translateMesh(mesh, model3d.XYZ(5, 0, 0)), settings)
	if err != nil {
		t.Fatal(err)
	}
	v1, v2 := MeshVolume(r1), MeshVolume(r2)
	checkNear(t, "shifted volume", v2, v1, 1e-3*v1)
	checkNear(t, "shift", r2.Min().X-r1.Min().X, 5, 1e-4)
}

func TestVoxelRebuildDecimate(t *testing.T) {
	mesh := model3d.NewMeshRect(model3d.XYZ(0.013, 0.027, 0.031), model3d.XYZ(2.013, 1.027, 1.531))
	plain, err := VoxelRebuilder{}.Rebuild(mesh, RebuildSettings{VoxelSize: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	decimated, err := VoxelRebuilder{}.Rebuild(mesh, RebuildSettings{VoxelSize: 0.1, Decimate: true})
	if err != nil {
		t.Fatal(err)
	}
	if decimated.NumTriangles() >= plain.NumTriangles() {
		t.Fatalf("decimation did not reduce %d triangles (got %d)", plain.NumTriangles(),
			decimated.NumTriangles())
	}
	checkNear(t, "volume", MeshVolume(decimated), MeshVolume(plain), 0.05*MeshVolume(plain))
}

func TestVoxelRebuildErrors(t *testing.T) {
	rb := VoxelRebuilder{}
	settings := RebuildSettings{VoxelSize: 0.5}

	_, err := rb.Rebuild(model3d.NewMesh(), settings)
	if KindOf(err) != RebuildError {
		t.Errorf("empty mesh: expected RebuildError but got %v", err)
	}

	flat := model3d.NewMesh()
	flat.Add(&model3d.Triangle{model3d.XYZ(0, 0, 0), model3d.XYZ(1, 0, 0), model3d.XYZ(0, 1, 0)})
	_, err = rb.Rebuild(flat, settings)
	if KindOf(err) != RebuildError {
		t.Errorf("flat mesh: expected RebuildError but got %v", err)
	}

	mesh := testCylinder(2, 2, 8, true, true)
	_, err = rb.Rebuild(mesh, RebuildSettings{VoxelSize: 0})
	if KindOf(err) != RebuildError {
		t.Errorf("zero voxel size: expected RebuildError but got %v", err)
	}
	_, err = rb.Rebuild(mesh, RebuildSettings{VoxelSize: 1e-4})
	if KindOf(err) != RebuildError {
		t.Errorf("huge grid: expected RebuildError but got %v", err)
	}

	calls := 0
	_, err = rb.Rebuild(mesh, RebuildSettings{
		VoxelSize: 0.5,
		Progress: func(float64) bool {
			calls++
			return false
		},
	})
	if KindOf(err) != RebuildError {
		t.Errorf("cancelled: expected RebuildError but got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single progress call before cancelling, got %d", calls)
	}
}

func TestVoxelGridSolid(t *testing.T) {
	grid, err := newVoxelGrid(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1), 1)
	if err != nil {
		t.Fatal(err)
	}
	// Corners at indices 1..2 of a 4x4x4 grid span the unit cube.
	for x := 1; x <= 2; x++ {
		for y := 1; y <= 2; y++ {
			for z := 1; z <= 2; z++ {
				grid.Set(x, y, z, true)
			}
		}
	}
	solid := grid.Solid()
	if !solid.Contains(model3d.XYZ(0.5, 0.5, 0.5)) {
		t.Error("center should be inside")
	}
	if solid.Contains(model3d.XYZ(-0.9, 0.5, 0.5)) {
		t.Error("padding should be outside")
	}
	if solid.Contains(model3d.XYZ(math.Inf(1), 0, 0)) {
		t.Error("far points should be outside")
	}
}
