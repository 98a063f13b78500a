package meshdiff

import (
	"math"

	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/mat"
)

// A GlobalAligner brings several objects into rough registration with the
// first object. The first returned transform is always the identity.
type GlobalAligner interface {
	GlobalAlign(objects []*model3d.Mesh, samplingVoxelSize float64, p ICPParams) []RigidTransform
}

// PCAGlobalAligner matches the centroid and principal axes of each object to
// those of the first object, and then refines the result with a local
// Aligner.
type PCAGlobalAligner struct {
	// Local refines the coarse alignment. If nil, no refinement is done.
	Local Aligner
}

func (p *PCAGlobalAligner) GlobalAlign(objects []*model3d.Mesh, samplingVoxelSize float64,
	params ICPParams) []RigidTransform {
	if len(objects) == 0 {
		return nil
	}
	res := make([]RigidTransform, len(objects))
	res[0] = IdentityTransform()

	ref := objects[0]
	refFrame, ok := principalFrame(ref)
	if !ok {
		for i := range res {
			res[i] = IdentityTransform()
		}
		return res
	}
	refSDF := meshSDF(ref)

	for i, obj := range objects[1:] {
		coarse := IdentityTransform()
		if frame, ok := principalFrame(obj); ok {
			coarse = bestFrameMatch(obj, frame, refFrame, refSDF, samplingVoxelSize)
		}
		if p.Local != nil {
			fine := p.Local.Align(TransformMesh(obj, coarse), ref, samplingVoxelSize, params)
			coarse = fine.Compose(coarse)
		}
		res[i+1] = coarse
	}
	return res
}

// A frame is an area-weighted centroid and a right-handed set of principal
// axes, sorted by decreasing variance.
type frame struct {
	Center model3d.Coord3D
	Axes   [3]model3d.Coord3D
}

// principalFrame computes the surface frame of m from the second moments of
// its triangles.
func principalFrame(m *model3d.Mesh) (frame, bool) {
	var totalArea float64
	var center model3d.Coord3D
	var moment [9]float64
	for _, t := range CanonicalTriangles(m) {
		area := t.Area()
		if area == 0 {
			continue
		}
		totalArea += area
		s := t[0].Add(t[1]).Add(t[2])
		center = center.Add(s.Scale(area / 3))
		outer := func(a model3d.Coord3D, scale float64) {
			arr := a.Array()
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					moment[i*3+j] += scale * arr[i] * arr[j]
				}
			}
		}
		for _, v := range t {
			outer(v, area/12)
		}
		outer(s, area/12)
	}
	if totalArea == 0 {
		return frame{}, false
	}
	center = center.Scale(1 / totalArea)
	c := center.Array()
	cov := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			cov.SetSym(i, j, moment[i*3+j]/totalArea-c[i]*c[j])
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return frame{}, false
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues are ascending.
	var axes [3]model3d.Coord3D
	for i := 0; i < 3; i++ {
		col := 2 - i
		axes[i] = model3d.XYZ(vecs.At(0, col), vecs.At(1, col), vecs.At(2, col)).Normalize()
	}
	if axes[0].Cross(axes[1]).Dot(axes[2]) < 0 {
		axes[2] = axes[2].Scale(-1)
	}
	return frame{Center: center, Axes: axes}, true
}

// bestFrameMatch tries every rotation taking the object's axes onto the
// reference axes up to sign, and keeps the one whose samples land closest
// to the reference surface.
func bestFrameMatch(obj *model3d.Mesh, objFrame, refFrame frame, refSDF model3d.PointSDF,
	samplingVoxelSize float64) RigidTransform {
	samples := SamplePoints(obj, samplingVoxelSize)
	signs := [][3]float64{{1, 1, 1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}

	var best RigidTransform
	bestScore := math.Inf(1)
	for _, sign := range signs {
		var rotation model3d.Matrix3
		for k := 0; k < 3; k++ {
			to := refFrame.Axes[k].Array()
			from := objFrame.Axes[k].Array()
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					rotation[i*3+j] += sign[k] * to[i] * from[j]
				}
			}
		}
		xf := RigidTransform{
			Rotation:    rotation,
			Translation: refFrame.Center.Sub(rotation.MulColumn(objFrame.Center)),
		}
		var score float64
		for _, s := range samples {
			x := xf.Apply(s)
			closest, _ := refSDF.PointSDF(x)
			score += x.SquaredDist(closest)
		}
		if score < bestScore {
			best, bestScore = xf, score
		}
	}
	return best
}
