package meshdiff

import (
	"fmt"

	"github.com/unixpickle/model3d/model3d"
)

type BooleanOp int

const (
	Difference BooleanOp = iota
	Intersection
	Union
)

func (b BooleanOp) String() string {
	switch b {
	case Difference:
		return "difference"
	case Intersection:
		return "intersection"
	case Union:
		return "union"
	}
	return fmt.Sprintf("BooleanOp(%d)", int(b))
}

// CombineResult is the outcome of a boolean operation. When Valid is false,
// Mesh is nil and ErrorString says why.
type CombineResult struct {
	Valid       bool
	Mesh        *model3d.Mesh
	ErrorString string
}

// A Combiner computes boolean operations on closed meshes.
type Combiner interface {
	Combine(a, b *model3d.Mesh, op BooleanOp) CombineResult
}

// SolidCombiner evaluates the operation on the inside/outside functions of
// the two meshes and extracts the surface of the result with marching cubes.
type SolidCombiner struct {
	VoxelSize float64
}

func (s *SolidCombiner) Combine(a, b *model3d.Mesh, op BooleanOp) CombineResult {
	if !(s.VoxelSize > 0) {
		return invalidResult("invalid voxel size %f", s.VoxelSize)
	}
	for i, m := range []*model3d.Mesh{a, b} {
		if m == nil || m.NumTriangles() == 0 {
			return invalidResult("operand %d is empty", i)
		}
		if loops := (LoopFiller{}).FindBoundaryLoops(m); len(loops) > 0 {
			return invalidResult("operand %d is not closed (%d boundary loops)", i, len(loops))
		}
	}

	sa, sb := meshSolid(a), meshSolid(b)
	var solid model3d.Solid
	switch op {
	case Difference:
		solid = &model3d.SubtractedSolid{Positive: sa, Negative: sb}
	case Intersection:
		solid = model3d.IntersectedSolid{sa, sb}
	case Union:
		solid = model3d.JoinedSolid{sa, sb}
	default:
		return invalidResult("unknown operation %v", op)
	}

	min, max := solid.Min(), solid.Max()
	if max.X < min.X || max.Y < min.Y || max.Z < min.Z {
		return CombineResult{Valid: true, Mesh: model3d.NewMesh()}
	}
	return CombineResult{
		Valid: true,
		Mesh:  model3d.MarchingCubesSearch(solid, s.VoxelSize, 8),
	}
}

func invalidResult(format string, args ...any) CombineResult {
	return CombineResult{ErrorString: fmt.Sprintf(format, args...)}
}
