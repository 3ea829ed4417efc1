package pointcloud

import (
	"math"
	"sort"

	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// center is a kd-tree point that remembers its index in the candidate set.
type center struct {
	x     []float64
	index int
}

func (p center) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.x[d] - c.(center).x[d]
}

func (p center) Dims() int { return len(p.x) }

// Distance is the squared euclidean distance.
func (p center) Distance(c kdtree.Comparable) float64 {
	return dist2(p.x, c.(center).x)
}

func dist2(a, b []float64) (d float64) {
	for i := range a {
		dx := a[i] - b[i]
		d += dx * dx
	}
	return
}

type centers []center

func (c centers) Index(i int) kdtree.Comparable { return c[i] }
func (c centers) Len() int                      { return len(c) }
func (c centers) Slice(start, end int) kdtree.Interface {
	return c[start:end]
}
func (c centers) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(centerPlane{centers: c, Dim: d}, kdtree.MedianOfMedians(centerPlane{centers: c, Dim: d}))
}

type centerPlane struct {
	centers
	kdtree.Dim
}

func (p centerPlane) Less(i, j int) bool {
	return p.centers[i].x[p.Dim] < p.centers[j].x[p.Dim]
}
func (p centerPlane) Slice(start, end int) kdtree.SortSlicer {
	return centerPlane{centers: p.centers[start:end], Dim: p.Dim}
}
func (p centerPlane) Swap(i, j int) {
	p.centers[i], p.centers[j] = p.centers[j], p.centers[i]
}

// Pairing lists, for every target, the candidate sources within radius.
type Pairing struct {
	children [][]int
}

func checkCloud(coords []float64, dim int, what string) int {
	if dim < 1 || dim > 3 {
		exceptions.Panicf("%s: dimension %d not in [1,3]", what, dim)
	}
	if len(coords)%dim != 0 {
		exceptions.Panicf("%s: %d coordinates is not a multiple of dimension %d", what, len(coords), dim)
	}
	return len(coords) / dim
}

// NewPairing builds the pairing with a kd-tree over the sources. A source
// at exactly the radius is paired.
func NewPairing(sources, targets []float64, dim int, radius float64) (p *Pairing) {
	var (
		ns = checkCloud(sources, dim, "pairing sources")
		nt = checkCloud(targets, dim, "pairing targets")
		r2 = radius * radius
	)
	p = &Pairing{children: make([][]int, nt)}
	if ns == 0 || nt == 0 {
		return
	}
	pts := make(centers, ns)
	for i := range pts {
		pts[i] = center{x: sources[i*dim : (i+1)*dim], index: i}
	}
	tree := kdtree.New(pts, false)
	// The search bound is loosened slightly, the exact test below decides.
	searchR2 := r2 * (1 + 1.e-12)
	if searchR2 == 0 {
		searchR2 = math.SmallestNonzeroFloat64
	}
	for i := 0; i < nt; i++ {
		q := center{x: targets[i*dim : (i+1)*dim], index: -1}
		keep := kdtree.NewDistKeeper(searchR2)
		tree.NearestSet(keep, q)
		var list []int
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			c := cd.Comparable.(center)
			if dist2(c.x, q.x) <= r2 {
				list = append(list, c.index)
			}
		}
		sort.Ints(list)
		p.children[i] = list
	}
	return
}

// NewBruteForcePairing compares every target with every source.
func NewBruteForcePairing(sources, targets []float64, dim int, radius float64) (p *Pairing) {
	var (
		ns = checkCloud(sources, dim, "pairing sources")
		nt = checkCloud(targets, dim, "pairing targets")
		r2 = radius * radius
	)
	p = &Pairing{children: make([][]int, nt)}
	for i := 0; i < nt; i++ {
		tx := targets[i*dim : (i+1)*dim]
		for j := 0; j < ns; j++ {
			if dist2(sources[j*dim:(j+1)*dim], tx) <= r2 {
				p.children[i] = append(p.children[i], j)
			}
		}
	}
	return
}

// ChildCenterIDs returns the ascending candidate indices paired to target i.
func (p *Pairing) ChildCenterIDs(i int) []int { return p.children[i] }

func (p *Pairing) NumTargets() int { return len(p.children) }

func (p *Pairing) ChildrenPerParent() (counts []int) {
	counts = make([]int, len(p.children))
	for i, c := range p.children {
		counts[i] = len(c)
	}
	return
}

func (p *Pairing) MaxChildren() (m int) {
	for _, c := range p.children {
		m = max(m, len(c))
	}
	return
}
