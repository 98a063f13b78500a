package meshdiff

import (
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// MaxOptimalLoop is the largest boundary loop that is triangulated with the
// minimum-weight search. Larger loops are closed with a fan around their
// centroid, since the search is cubic in the loop length.
const MaxOptimalLoop = 600

// An Edge is a directed mesh edge from Edge[0] to Edge[1].
type Edge [2]model3d.Coord3D

// A BoundaryLoop is a closed ring of boundary edges, i.e. a hole.
//
// Vertices are ordered in the direction of the boundary edges, so the edge
// Vertices[i] -> Vertices[i+1] belongs to an existing triangle.
type BoundaryLoop struct {
	// Edge is a representative boundary edge of the loop.
	Edge     Edge
	Vertices []model3d.Coord3D
}

// A FillMetric scores candidate triangles when closing a hole. Lower is
// better.
type FillMetric interface {
	Weight(a, b, c model3d.Coord3D) float64
}

// UniversalMetric is the single fill metric used by the pipeline. It prefers
// small, well-shaped triangles.
type UniversalMetric struct{}

func (UniversalMetric) Weight(a, b, c model3d.Coord3D) float64 {
	ab := a.SquaredDist(b)
	bc := b.SquaredDist(c)
	ca := c.SquaredDist(a)
	area := b.Sub(a).Cross(c.Sub(a)).Norm() / 2
	sq := ab + bc + ca
	w := area + 0.1*sq
	if area <= 1e-12*sq {
		// Slivers would leave a degenerate patch.
		w += 1e3 * sq
	}
	return w
}

// A HoleRepairer finds and closes holes in a mesh.
type HoleRepairer interface {
	// FindBoundaryLoops returns one entry per hole, or nothing for a closed
	// mesh.
	FindBoundaryLoops(m *model3d.Mesh) []BoundaryLoop

	// Fill adds triangles to m which close the loop.
	Fill(m *model3d.Mesh, loop BoundaryLoop, metric FillMetric) error
}

// LoopFiller is the default HoleRepairer.
type LoopFiller struct{}

// FindBoundaryLoops finds every directed edge without a matching reverse
// edge and chains them into loops.
//
// Loops are returned in a deterministic order. Chains that do not close are
// dropped.
func (LoopFiller) FindBoundaryLoops(m *model3d.Mesh) []BoundaryLoop {
	edges := map[Edge]bool{}
	m.Iterate(func(t *model3d.Triangle) {
		for i := 0; i < 3; i++ {
			edges[Edge{t[i], t[(i+1)%3]}] = true
		}
	})

	outgoing := map[model3d.Coord3D][]Edge{}
	var boundary []Edge
	for e := range edges {
		if !edges[Edge{e[1], e[0]}] {
			boundary = append(boundary, e)
		}
	}
	sort.Slice(boundary, func(i, j int) bool {
		return edgeLess(boundary[i], boundary[j])
	})
	for _, e := range boundary {
		outgoing[e[0]] = append(outgoing[e[0]], e)
	}

	used := map[Edge]bool{}
	var loops []BoundaryLoop
	for _, start := range boundary {
		if used[start] {
			continue
		}
		used[start] = true
		vertices := []model3d.Coord3D{start[0]}
		cur := start
		closed := false
		for {
			if cur[1] == start[0] {
				closed = true
				break
			}
			vertices = append(vertices, cur[1])
			next, ok := nextUnused(outgoing[cur[1]], used)
			if !ok {
				break
			}
			used[next] = true
			cur = next
		}
		if closed {
			loops = append(loops, BoundaryLoop{Edge: start, Vertices: vertices})
		}
	}
	return loops
}

func nextUnused(candidates []Edge, used map[Edge]bool) (Edge, bool) {
	for _, e := range candidates {
		if !used[e] {
			return e, true
		}
	}
	return Edge{}, false
}

func edgeLess(e1, e2 Edge) bool {
	if e1[0] != e2[0] {
		return coordLess(e1[0], e2[0])
	}
	return coordLess(e1[1], e2[1])
}

// Fill closes the loop with a minimum-weight triangulation, oriented to
// match the triangles around the hole.
func (LoopFiller) Fill(m *model3d.Mesh, loop BoundaryLoop, metric FillMetric) error {
	vs := loop.Vertices
	n := len(vs)
	if n < 3 {
		return errors.Errorf("fill hole: loop has %d vertices", n)
	}
	seen := make(map[model3d.Coord3D]bool, n)
	for _, v := range vs {
		if seen[v] {
			return errors.Errorf("fill hole: loop through non-manifold vertex %v", v)
		}
		seen[v] = true
	}
	if n > MaxOptimalLoop {
		fillFan(m, vs)
		return nil
	}

	// weights[i][j] is the best weight of the polygon vs[i], ..., vs[j], and
	// splits[i][j] the apex chosen for edge (i, j).
	weights := make([][]float64, n)
	splits := make([][]int, n)
	for i := range weights {
		weights[i] = make([]float64, n)
		splits[i] = make([]int, n)
	}
	for span := 2; span < n; span++ {
		for i := 0; i+span < n; i++ {
			j := i + span
			best := math.Inf(1)
			bestM := -1
			for k := i + 1; k < j; k++ {
				w := weights[i][k] + weights[k][j] + metric.Weight(vs[i], vs[k], vs[j])
				if w < best {
					best = w
					bestM = k
				}
			}
			weights[i][j] = best
			splits[i][j] = bestM
		}
	}

	sections := [][2]int{{0, n - 1}}
	for len(sections) > 0 {
		s := sections[len(sections)-1]
		sections = sections[:len(sections)-1]
		i, j := s[0], s[1]
		k := splits[i][j]
		m.Add(&model3d.Triangle{vs[j], vs[k], vs[i]})
		if k-i > 1 {
			sections = append(sections, [2]int{i, k})
		}
		if j-k > 1 {
			sections = append(sections, [2]int{k, j})
		}
	}
	return nil
}

func fillFan(m *model3d.Mesh, vs []model3d.Coord3D) {
	var center model3d.Coord3D
	for _, v := range vs {
		center = center.Add(v)
	}
	center = center.Scale(1 / float64(len(vs)))
	for i, v := range vs {
		next := vs[(i+1)%len(vs)]
		m.Add(&model3d.Triangle{next, v, center})
	}
}

// FillHoles fills every loop found by a single scan of m and returns the
// number of fill operations performed.
//
// Holes created by filling are not searched for again. A loop which cannot
// be filled does not stop the others from being filled; the failures are
// returned together.
func FillHoles(m *model3d.Mesh, h HoleRepairer, metric FillMetric) (int, error) {
	var failures []string
	count := 0
	for _, loop := range h.FindBoundaryLoops(m) {
		count++
		if err := h.Fill(m, loop, metric); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return count, errors.Errorf("%d of %d holes not filled: %s", len(failures), count,
			strings.Join(failures, "; "))
	}
	return count, nil
}
