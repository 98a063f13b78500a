package meshdiff

import (
	"github.com/unixpickle/model3d/model3d"
)

// A WorkingVolume is a rotated cube that bounds the region of interest of a
// comparison. Geometry outside of it is chopped away.
type WorkingVolume struct {
	// Size is the edge length of the cube.
	Size float64 `yaml:"size" toml:"size" json:"size"`

	// Base is the offset of the cube's minimum corner on every axis before
	// the cube is rotated.
	Base float64 `yaml:"base" toml:"base" json:"base"`

	// AnglesDeg are rotations about the x, y and z axes, applied in that
	// order.
	AnglesDeg [3]float64 `yaml:"angles_deg" toml:"angles_deg" json:"angles_deg"`

	// Position translates the rotated cube.
	Position [3]float64 `yaml:"position" toml:"position" json:"position"`
}

// DefaultWorkingVolume is suited to the cylinder matrix sample meshes.
func DefaultWorkingVolume() *WorkingVolume {
	return &WorkingVolume{
		Size:      45,
		Base:      -0.5,
		AnglesDeg: [3]float64{55.5, -18, -19.6},
		Position:  [3]float64{-7, 30, -65},
	}
}

// Transform maps the axis-aligned cube into place.
func (w *WorkingVolume) Transform() RigidTransform {
	return RigidTransform{
		Rotation:    EulerRotation(w.AnglesDeg[0], w.AnglesDeg[1], w.AnglesDeg[2]),
		Translation: model3d.NewCoord3DArray(w.Position),
	}
}

// Mesh creates a closed, outward facing cube mesh for the volume.
func (w *WorkingVolume) Mesh() *model3d.Mesh {
	min := model3d.XYZ(w.Base, w.Base, w.Base)
	return TransformMesh(model3d.NewMeshRect(min, min.AddScalar(w.Size)), w.Transform())
}
