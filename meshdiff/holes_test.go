package meshdiff

import (
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

func TestFindBoundaryLoopsClosed(t *testing.T) {
	m := testCylinder(3, 5, 12, true, true)
	if loops := (LoopFiller{}).FindBoundaryLoops(m); len(loops) != 0 {
		t.Fatalf("expected no loops but got %d", len(loops))
	}
}

func TestFindBoundaryLoopsOpen(t *testing.T) {
	m := testCylinder(3, 5, 12, false, false)
	loops := (LoopFiller{}).FindBoundaryLoops(m)
	if len(loops) != 2 {
		t.Fatalf("expected 2 loops but got %d", len(loops))
	}
	for i, loop := range loops {
		if len(loop.Vertices) != 12 {
			t.Errorf("loop %d: expected 12 vertices but got %d", i, len(loop.Vertices))
		}
		if loop.Edge[0] != loop.Vertices[0] || loop.Edge[1] != loop.Vertices[1] {
			t.Errorf("loop %d: edge %v does not start the ring", i, loop.Edge)
		}
	}

	again := (LoopFiller{}).FindBoundaryLoops(m)
	for i := range loops {
		if loops[i].Edge != again[i].Edge {
			t.Fatal("loop order is not deterministic")
		}
	}
}

func TestFillHoles(t *testing.T) {
	for _, sides := range []int{3, 7, 48} {
		m := testCylinder(4, 6, sides, false, true)
		count, err := FillHoles(m, LoopFiller{}, UniversalMetric{})
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Fatalf("sides %d: expected 1 fill but got %d", sides, count)
		}
		checkClosed(t, m)
		expected := prismVolume(4, 6, sides)
		checkNear(t, "volume", MeshVolume(m), expected, 1e-8*expected)
	}
}

func TestFillHolesMultiple(t *testing.T) {
	m := testCylinder(4, 6, 20, false, false)
	count, err := FillHoles(m, LoopFiller{}, UniversalMetric{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 fills but got %d", count)
	}
	checkClosed(t, m)
	if v := MeshVolume(m); v <= 0 {
		t.Fatalf("expected positive volume but got %f", v)
	}
}

func TestFillFan(t *testing.T) {
	sides := MaxOptimalLoop + 10
	m := testCylinder(50, 5, sides, true, false)
	count, err := FillHoles(m, LoopFiller{}, UniversalMetric{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 fill but got %d", count)
	}
	checkClosed(t, m)
	expected := prismVolume(50, 5, sides)
	checkNear(t, "volume", MeshVolume(m), expected, 1e-6*expected)
}

func TestFillInvalidLoop(t *testing.T) {
	m := model3d.NewMesh()
	short := BoundaryLoop{Vertices: []model3d.Coord3D{model3d.X(1), model3d.Y(1)}}
	if err := (LoopFiller{}).Fill(m, short, UniversalMetric{}); err == nil {
		t.Error("expected error for two vertex loop")
	}
	pinched := BoundaryLoop{Vertices: []model3d.Coord3D{
		model3d.X(1), model3d.Y(1), model3d.Z(1), model3d.Y(1),
	}}
	if err := (LoopFiller{}).Fill(m, pinched, UniversalMetric{}); err == nil {
		t.Error("expected error for repeated vertex")
	}
	if m.NumTriangles() != 0 {
		t.Errorf("failed fills added %d triangles", m.NumTriangles())
	}
}

func TestUniversalMetricPrefersShortDiagonal(t *testing.T) {
	// A rhombus should be split along its short diagonal.
	a := model3d.XYZ(0, 0, 0)
	b := model3d.XYZ(2, -0.5, 0)
	c := model3d.XYZ(4, 0, 0)
	d := model3d.XYZ(2, 0.5, 0)
	metric := UniversalMetric{}
	short := metric.Weight(a, b, d) + metric.Weight(b, c, d)
	long := metric.Weight(a, b, c) + metric.Weight(a, c, d)
	if short >= long {
		t.Fatalf("short diagonal weight %f should be below long diagonal weight %f", short, long)
	}
}
