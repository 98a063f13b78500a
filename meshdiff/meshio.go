package meshdiff

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// A MeshIO loads and saves meshes by path, choosing the format from the
// path's extension.
type MeshIO interface {
	Load(path string) (*model3d.Mesh, error)
	Save(mesh *model3d.Mesh, path string) error
}

// STLIO implements MeshIO for ASCII and binary STL files.
type STLIO struct {
	// Log, if non-nil, receives notes about cleaned up input.
	Log *Reporter
}

// SupportedFormat reports if a path has an extension STLIO can handle.
func SupportedFormat(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".stl"
}

// Load reads a mesh and drops zero-area triangles.
func (s *STLIO) Load(path string) (*model3d.Mesh, error) {
	if !SupportedFormat(path) {
		return nil, newError(LoadError, path, nil, "unsupported mesh format %q", filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(LoadError, path, err, "open mesh")
	}
	defer f.Close()
	tris, err := model3d.ReadSTL(f)
	if err != nil {
		return nil, newError(LoadError, path, errors.Wrap(err, "read stl"), "invalid mesh")
	}
	mesh := model3d.NewMesh()
	removed := 0
	for _, t := range tris {
		if t.Area() == 0 {
			removed++
		} else {
			mesh.Add(t)
		}
	}
	if removed > 0 && s.Log != nil {
		s.Log.Infof(" - removed %d invalid triangles from %s", removed, path)
	}
	if mesh.NumTriangles() == 0 {
		return nil, newError(LoadError, path, nil, "mesh has no triangles")
	}
	return mesh, nil
}

// Save writes the mesh in canonical triangle order, replacing any existing
// file at path.
func (s *STLIO) Save(mesh *model3d.Mesh, path string) error {
	if !SupportedFormat(path) {
		return newError(SaveError, path, nil, "unsupported mesh format %q", filepath.Ext(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return newError(SaveError, path, err, "create file")
	}
	if err := model3d.WriteSTL(f, CanonicalTriangles(mesh)); err != nil {
		f.Close()
		return newError(SaveError, path, errors.Wrap(err, "write stl"), "write mesh")
	}
	if err := f.Close(); err != nil {
		return newError(SaveError, path, err, "close file")
	}
	return nil
}
