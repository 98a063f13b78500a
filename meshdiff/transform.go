package meshdiff

import (
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model3d"
)

// A RigidTransform maps c to Rotation*c + Translation.
type RigidTransform struct {
	Rotation    model3d.Matrix3
	Translation model3d.Coord3D
}

func IdentityTransform() RigidTransform {
	return RigidTransform{Rotation: model3d.Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// EulerRotation builds Rz*Ry*Rx from angles in degrees.
func EulerRotation(xDeg, yDeg, zDeg float64) model3d.Matrix3 {
	rx := axisRotation(model3d.X(1), xDeg)
	ry := axisRotation(model3d.Y(1), yDeg)
	rz := axisRotation(model3d.Z(1), zDeg)
	return *rz.Mul(&ry).Mul(&rx)
}

func axisRotation(axis model3d.Coord3D, deg float64) model3d.Matrix3 {
	return *model3d.NewMatrix3Rotation(axis, deg*math.Pi/180)
}

func (r RigidTransform) Apply(c model3d.Coord3D) model3d.Coord3D {
	return r.Rotation.MulColumn(c).Add(r.Translation)
}

// Compose returns the transform which applies first and then r.
func (r RigidTransform) Compose(first RigidTransform) RigidTransform {
	return RigidTransform{
		Rotation:    *r.Rotation.Mul(&first.Rotation),
		Translation: r.Apply(first.Translation),
	}
}

// IsIdentity checks if r leaves every point in place, up to eps.
func (r RigidTransform) IsIdentity(eps float64) bool {
	id := IdentityTransform()
	for i, x := range r.Rotation {
		if math.Abs(x-id.Rotation[i]) > eps {
			return false
		}
	}
	return r.Translation.Norm() <= eps
}

// String renders r as a translation and a row-major rotation matrix.
func (r RigidTransform) String() string {
	m := r.Rotation
	return fmt.Sprintf(
		"translation=(%.4f, %.4f, %.4f) rotation=[[%.4f %.4f %.4f] [%.4f %.4f %.4f] [%.4f %.4f %.4f]]",
		r.Translation.X, r.Translation.Y, r.Translation.Z,
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8],
	)
}

// TransformMesh creates a new mesh with every vertex of m moved by r.
func TransformMesh(m *model3d.Mesh, r RigidTransform) *model3d.Mesh {
	res := model3d.NewMesh()
	m.Iterate(func(t *model3d.Triangle) {
		res.Add(&model3d.Triangle{r.Apply(t[0]), r.Apply(t[1]), r.Apply(t[2])})
	})
	return res
}
