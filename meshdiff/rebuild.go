package meshdiff

import (
	"math"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
)

const (
	// DefaultVoxelSize is the rebuild resolution in mesh units (mm).
	DefaultVoxelSize = 0.278

	// MaxVoxels bounds the size of a rebuild grid.
	MaxVoxels = 1 << 26
)

type RebuildSettings struct {
	// Decimate merges flat regions of the reconstructed surface.
	Decimate bool

	// VoxelSize is the edge length of a grid cell.
	VoxelSize float64

	// Progress, if non-nil, is called after every grid slice.
	Progress ProgressFunc
}

// DefaultRebuildSettings returns the fixed settings used by the pipeline.
func DefaultRebuildSettings() RebuildSettings {
	return RebuildSettings{VoxelSize: DefaultVoxelSize}
}

// A Rebuilder reconstructs a mesh, producing a new mesh value.
type Rebuilder interface {
	Rebuild(m *model3d.Mesh, s RebuildSettings) (*model3d.Mesh, error)
}

// VoxelRebuilder samples a mesh's interior on a regular grid and extracts a
// new surface from the grid with marching cubes. The result is always
// closed and manifold, which heals small topological defects.
type VoxelRebuilder struct{}

func (VoxelRebuilder) Rebuild(m *model3d.Mesh, s RebuildSettings) (*model3d.Mesh, error) {
	if m.NumTriangles() == 0 {
		return nil, newError(RebuildError, "", nil, "empty mesh")
	}
	if !(s.VoxelSize > 0) {
		return nil, newError(RebuildError, "", nil, "invalid voxel size %f", s.VoxelSize)
	}
	size := m.Max().Sub(m.Min())
	if math.Min(size.X, math.Min(size.Y, size.Z)) <= 0 {
		return nil, newError(RebuildError, "", nil, "degenerate mesh bounds %v", size)
	}

	grid, err := newVoxelGrid(m.Min(), m.Max(), s.VoxelSize)
	if err != nil {
		return nil, err
	}
	solid := meshSolid(m)
	for z := 0; z < grid.NZ; z++ {
		essentials.ConcurrentMap(0, grid.NX*grid.NY, func(i int) {
			x, y := i%grid.NX, i/grid.NX
			grid.Set(x, y, z, solid.Contains(grid.Point(x, y, z)))
		})
		if s.Progress != nil && !s.Progress(float64(z+1)/float64(grid.NZ)) {
			return nil, newError(RebuildError, "", nil, "cancelled at %.0f%%",
				100*float64(z+1)/float64(grid.NZ))
		}
	}
	if grid.Count() == 0 {
		return nil, newError(RebuildError, "", nil, "mesh encloses no voxels")
	}

	result := model3d.MarchingCubesSearch(grid.Solid(), s.VoxelSize, 8)
	if s.Decimate {
		result = model3d.DecimateSimple(result, s.VoxelSize*1e-2)
	}
	if result.NumTriangles() == 0 {
		return nil, newError(RebuildError, "", nil, "reconstruction is empty")
	}
	return result, nil
}

// A voxelGrid stores inside/outside samples at the corners of a regular
// grid, padded by one cell on every side so the surface closes.
type voxelGrid struct {
	Origin     model3d.Coord3D
	Delta      float64
	NX, NY, NZ int
	Values     []bool
}

func newVoxelGrid(min, max model3d.Coord3D, delta float64) (*voxelGrid, error) {
	min = min.AddScalar(-delta)
	max = max.AddScalar(delta)
	size := max.Sub(min)
	g := &voxelGrid{
		Origin: min,
		Delta:  delta,
		NX:     int(math.Ceil(size.X/delta)) + 1,
		NY:     int(math.Ceil(size.Y/delta)) + 1,
		NZ:     int(math.Ceil(size.Z/delta)) + 1,
	}
	total := float64(g.NX) * float64(g.NY) * float64(g.NZ)
	if total > MaxVoxels {
		return nil, newError(RebuildError, "", nil, "voxel grid %dx%dx%d exceeds %d voxels",
			g.NX, g.NY, g.NZ, MaxVoxels)
	}
	g.Values = make([]bool, g.NX*g.NY*g.NZ)
	return g, nil
}

func (v *voxelGrid) index(x, y, z int) int {
	return x + v.NX*(y+v.NY*z)
}

func (v *voxelGrid) Point(x, y, z int) model3d.Coord3D {
	return v.Origin.Add(model3d.XYZ(float64(x), float64(y), float64(z)).Scale(v.Delta))
}

func (v *voxelGrid) Set(x, y, z int, inside bool) {
	v.Values[v.index(x, y, z)] = inside
}

func (v *voxelGrid) Get(x, y, z int) bool {
	if x < 0 || y < 0 || z < 0 || x >= v.NX || y >= v.NY || z >= v.NZ {
		return false
	}
	return v.Values[v.index(x, y, z)]
}

func (v *voxelGrid) Count() int {
	var n int
	for _, x := range v.Values {
		if x {
			n++
		}
	}
	return n
}

// Solid interpolates the samples trilinearly and thresholds at one half.
func (v *voxelGrid) Solid() model3d.Solid {
	max := v.Point(v.NX-1, v.NY-1, v.NZ-1)
	return model3d.CheckedFuncSolid(v.Origin, max, func(c model3d.Coord3D) bool {
		rel := c.Sub(v.Origin).Scale(1 / v.Delta)
		x0, y0, z0 := math.Floor(rel.X), math.Floor(rel.Y), math.Floor(rel.Z)
		tx, ty, tz := rel.X-x0, rel.Y-y0, rel.Z-z0
		ix, iy, iz := int(x0), int(y0), int(z0)
		var value float64
		for corner := 0; corner < 8; corner++ {
			dx, dy, dz := corner&1, (corner>>1)&1, (corner>>2)&1
			if !v.Get(ix+dx, iy+dy, iz+dz) {
				continue
			}
			value += lerpWeight(tx, dx) * lerpWeight(ty, dy) * lerpWeight(tz, dz)
		}
		return value >= 0.5
	})
}

func lerpWeight(t float64, side int) float64 {
	if side == 1 {
		return t
	}
	return 1 - t
}
