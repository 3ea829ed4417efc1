package partitions

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
)

// RCB is a recursive coordinate bisection backend with unit object weights.
// Each cut halves a group of ranks and splits the group's objects in the same
// proportion along the longest axis of their global extent. Every rank runs
// the same recursion, so the sub-boxes of all ranks are known everywhere.
type RCB struct {
	MaxIterations int // bisection steps per cut
	dim           int
	boxes         []geometry.Box
	dest          []int
}

func NewRCB() *RCB {
	return &RCB{MaxIterations: 128}
}

func (r *RCB) Partition(c comm.Communicator, cb Callbacks) (res *Result, err error) {
	var (
		n          = cb.NumObjects()
		dim        = cb.NumGeometry()
		gids, lids = cb.ObjectList()
		coords     = cb.GeometryList()
	)
	if dim < 1 || dim > 3 {
		err = errors.Errorf("rcb: geometry dimension %d not in [1,3]", dim)
		return
	}
	if len(gids) != n || len(lids) != n || len(coords) != n*dim {
		err = errors.Errorf("rcb: %d objects but %d gids, %d lids and %d coordinates",
			n, len(gids), len(lids), len(coords))
		return
	}
	r.dim = dim
	r.boxes = make([]geometry.Box, c.Size())
	r.dest = make([]int, n)
	members := make([]int, n)
	for i := range members {
		members[i] = i
	}
	r.bisect(c, coords, 0, c.Size(), geometry.InfiniteBox(0, 0, dim), members)

	res = &Result{}
	outgoing := make([][]uint64, c.Size())
	for i, d := range r.dest {
		if d == c.Rank() {
			continue
		}
		res.Exports = append(res.Exports, Assignment{GID: gids[i], LID: lids[i], Rank: d})
		outgoing[d] = append(outgoing[d], uint64(gids[i]), uint64(lids[i]))
	}
	bufs := make([][]byte, c.Size())
	for rank := range bufs {
		bufs[rank] = comm.Encode(outgoing[rank])
	}
	for src, buf := range c.AllToAll(bufs) {
		pairs := comm.Decode[uint64](buf)
		for k := 0; k+1 < len(pairs); k += 2 {
			res.Imports = append(res.Imports, Assignment{
				GID: geometry.EntityID(pairs[k]), LID: int(pairs[k+1]), Rank: src})
		}
	}
	moved := 0
	if len(res.Exports) > 0 {
		moved = 1
	}
	res.Changes = c.AllReduceInt(comm.Max, []int{moved})[0] == 1
	logrus.WithFields(logrus.Fields{
		"rank": c.Rank(), "objects": n, "exports": len(res.Exports), "imports": len(res.Imports),
	}).Debug("rcb partition")
	return
}

func (r *RCB) SubBox(rank int) (dim int, box geometry.Box, err error) {
	if r.boxes == nil {
		err = errors.New("rcb: SubBox called before Partition")
		return
	}
	if rank < 0 || rank >= len(r.boxes) {
		err = errors.Errorf("rcb: rank %d out of range [0, %d)", rank, len(r.boxes))
		return
	}
	return r.dim, r.boxes[rank], nil
}

// Destinations returns the rank assigned to each object of the last Partition.
func (r *RCB) Destinations() []int { return r.dest }

func (r *RCB) bisect(c comm.Communicator, coords []float64, lo, hi int, domain geometry.Box, members []int) {
	if hi-lo == 1 {
		r.boxes[lo] = geometry.NewBoxFromBounds(geometry.EntityID(lo), lo, domain.Bounds())
		for _, m := range members {
			r.dest[m] = lo
		}
		return
	}
	var (
		dim    = r.dim
		extent = make([]float64, 2*dim)
	)
	for d := 0; d < dim; d++ {
		extent[d], extent[d+dim] = math.Inf(1), math.Inf(1)
	}
	for _, m := range members {
		for d := 0; d < dim; d++ {
			x := coords[m*dim+d]
			extent[d] = math.Min(extent[d], x)
			extent[d+dim] = math.Min(extent[d+dim], -x)
		}
	}
	extent = c.AllReduceFloat64(comm.Min, extent)
	count := c.AllReduceInt(comm.Sum, []int{len(members)})[0]
	if count == 0 {
		for rank := lo; rank < hi; rank++ {
			r.boxes[rank] = geometry.EmptyBox()
		}
		return
	}
	axis, width := 0, -1.
	for d := 0; d < dim; d++ {
		if w := -extent[d+dim] - extent[d]; w > width {
			axis, width = d, w
		}
	}
	var (
		nLeft  = (hi - lo) / 2
		target = max(1, count*nLeft/(hi-lo))
		cut    = r.findCut(c, coords, members, axis, extent[axis], -extent[axis+dim], target)
		left   = make([]int, 0, len(members))
		right  = make([]int, 0, len(members))
	)
	for _, m := range members {
		if coords[m*dim+axis] <= cut {
			left = append(left, m)
		} else {
			right = append(right, m)
		}
	}
	bounds := domain.Bounds()
	leftBounds, rightBounds := bounds, bounds
	leftBounds[axis+3], rightBounds[axis] = cut, cut
	r.bisect(c, coords, lo, lo+nLeft, geometry.NewBoxFromBounds(0, 0, leftBounds), left)
	r.bisect(c, coords, lo+nLeft, hi, geometry.NewBoxFromBounds(0, 0, rightBounds), right)
}

// findCut returns the smallest value found in [xMin, xMax] with at least
// target objects of the group at or below it on axis.
func (r *RCB) findCut(c comm.Communicator, coords []float64, members []int, axis int,
	xMin, xMax float64, target int) float64 {
	countBelow := func(cut float64) (n int) {
		for _, m := range members {
			if coords[m*r.dim+axis] <= cut {
				n++
			}
		}
		return c.AllReduceInt(comm.Sum, []int{n})[0]
	}
	if countBelow(xMin) >= target {
		return xMin
	}
	lo, hi := xMin, xMax
	for it := 0; it < r.MaxIterations; it++ {
		mid := lo + (hi-lo)/2
		if mid <= lo || mid >= hi {
			break
		}
		if countBelow(mid) >= target {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}
