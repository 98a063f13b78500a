package meshdiff

import (
	"math"
	"sort"

	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultICPIterLimit = 100

	// stallLimit is the number of consecutive iterations without an RMS
	// improvement after which ICP gives up.
	stallLimit = 3
)

// ICPParams control a single rigid registration.
type ICPParams struct {
	// DistThresholdSq is the squared distance beyond which a sample has no
	// correspondence.
	DistThresholdSq float64

	// ExitVal is the RMS distance at which registration stops.
	ExitVal float64

	IterLimit int
}

// DeriveICPParams scales the registration parameters to a reference mesh
// with bounding-box diagonal d. It returns the sampling voxel size along with
// the ICP parameters.
func DeriveICPParams(d float64, c ICPConfig) (float64, ICPParams) {
	limit := c.IterLimit
	if limit <= 0 {
		limit = DefaultICPIterLimit
	}
	thresh := c.DistThresholdFactor * d
	return c.SamplingFactor * d, ICPParams{
		DistThresholdSq: thresh * thresh,
		ExitVal:         c.ExitFactor * d,
		IterLimit:       limit,
	}
}

// An Aligner computes the rigid transform that best maps moving onto
// reference. It never fails; without usable correspondences it returns the
// identity.
type Aligner interface {
	Align(moving, reference *model3d.Mesh, samplingVoxelSize float64, p ICPParams) RigidTransform
}

// ICPAligner performs point-to-surface iterative closest point registration.
//
// Samples of the moving surface are matched with their closest points on the
// reference surface, and every iteration solves for the optimal rigid motion
// of the matched pairs.
type ICPAligner struct {
	// Log, if non-nil, receives per-iteration debug lines.
	Log *Reporter
}

func (i *ICPAligner) Align(moving, reference *model3d.Mesh, samplingVoxelSize float64,
	p ICPParams) RigidTransform {
	if moving.NumTriangles() == 0 || reference.NumTriangles() == 0 {
		return IdentityTransform()
	}
	samples := SamplePoints(moving, samplingVoxelSize)
	sdf := meshSDF(reference)

	current := IdentityTransform()
	best := current
	bestRMS := math.Inf(1)
	stalled := 0
	for iter := 0; iter < p.IterLimit; iter++ {
		var source, target []model3d.Coord3D
		var sumSq float64
		for _, s := range samples {
			x := current.Apply(s)
			closest, _ := sdf.PointSDF(x)
			d := x.SquaredDist(closest)
			if d > p.DistThresholdSq {
				continue
			}
			source = append(source, x)
			target = append(target, closest)
			sumSq += d
		}
		if len(source) < 3 {
			break
		}
		rms := math.Sqrt(sumSq / float64(len(source)))
		if i.Log != nil {
			i.Log.Debugf("icp iteration %d: rms=%f pairs=%d", iter, rms, len(source))
		}
		if rms < bestRMS {
			best, bestRMS = current, rms
			stalled = 0
		} else {
			stalled++
			if stalled >= stallLimit {
				break
			}
		}
		if rms < p.ExitVal {
			break
		}
		step, ok := kabsch(source, target)
		if !ok {
			break
		}
		current = step.Compose(current)
	}
	return best
}

// kabsch finds the rigid motion minimizing the squared distances from the
// transformed source points to the target points.
func kabsch(source, target []model3d.Coord3D) (RigidTransform, bool) {
	sourceMean := meanCoord(source)
	targetMean := meanCoord(target)

	h := mat.NewDense(3, 3, nil)
	for i, s := range source {
		a := s.Sub(sourceMean).Array()
		b := target[i].Sub(targetMean).Array()
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				h.Set(row, col, h.At(row, col)+a[row]*b[col])
			}
		}
	}

	var svd mat.SVD
	if !svd.Factorize(h, mat.SVDFull) {
		return RigidTransform{}, false
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var vu mat.Dense
	vu.Mul(&v, u.T())
	sign := 1.0
	if mat.Det(&vu) < 0 {
		sign = -1
	}
	fix := mat.NewDiagDense(3, []float64{1, 1, sign})
	var r mat.Dense
	r.Product(&v, fix, u.T())

	rotation := denseToMatrix3(&r)
	return RigidTransform{
		Rotation:    rotation,
		Translation: targetMean.Sub(rotation.MulColumn(sourceMean)),
	}, true
}

func denseToMatrix3(d mat.Matrix) model3d.Matrix3 {
	var res model3d.Matrix3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			res[row*3+col] = d.At(row, col)
		}
	}
	return res
}

func meanCoord(cs []model3d.Coord3D) model3d.Coord3D {
	var sum model3d.Coord3D
	for _, c := range cs {
		sum = sum.Add(c)
	}
	return sum.Scale(1 / float64(len(cs)))
}

// SamplePoints samples a mesh's surface with roughly one point per cell of a
// grid with the given spacing. The result is sorted.
func SamplePoints(m *model3d.Mesh, voxelSize float64) []model3d.Coord3D {
	if !(voxelSize > 0) {
		return m.VertexSlice()
	}
	type cell [3]int64
	cells := map[cell]model3d.Coord3D{}
	add := func(c model3d.Coord3D) {
		key := cell{
			int64(math.Floor(c.X / voxelSize)),
			int64(math.Floor(c.Y / voxelSize)),
			int64(math.Floor(c.Z / voxelSize)),
		}
		if old, ok := cells[key]; !ok || coordLess(c, old) {
			cells[key] = c
		}
	}
	m.Iterate(func(t *model3d.Triangle) {
		maxEdge := math.Max(t[0].Dist(t[1]), math.Max(t[1].Dist(t[2]), t[2].Dist(t[0])))
		n := int(math.Ceil(maxEdge / voxelSize))
		if n < 1 {
			n = 1
		}
		ab := t[1].Sub(t[0]).Scale(1 / float64(n))
		ac := t[2].Sub(t[0]).Scale(1 / float64(n))
		for i := 0; i <= n; i++ {
			for j := 0; i+j <= n; j++ {
				add(t[0].Add(ab.Scale(float64(i))).Add(ac.Scale(float64(j))))
			}
		}
	})
	res := make([]model3d.Coord3D, 0, len(cells))
	for _, c := range cells {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool {
		return coordLess(res[i], res[j])
	})
	return res
}
