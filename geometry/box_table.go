package geometry

import (
	"github.com/gomlx/exceptions"
)

// NotFound is returned by lookups that match no box.
const NotFound = -1

// BoxTable is an ordered list of (rank, box) pairs scanned linearly. It is
// safe for concurrent readers once filled.
type BoxTable struct {
	ranks []int
	boxes []Box
}

func (t *BoxTable) Add(rank int, b Box) {
	t.ranks = append(t.ranks, rank)
	t.boxes = append(t.boxes, b.WithOwner(rank))
}

func (t *BoxTable) Reset() {
	t.ranks, t.boxes = t.ranks[:0], t.boxes[:0]
}

func (t *BoxTable) Len() int { return len(t.boxes) }

func (t *BoxTable) Ranks() []int { return append([]int(nil), t.ranks...) }

func (t *BoxTable) At(i int) (rank int, b Box) {
	if i < 0 || i >= len(t.boxes) {
		exceptions.Panicf("box table index %d out of range [0, %d)", i, len(t.boxes))
	}
	return t.ranks[i], t.boxes[i]
}

// BoxOf returns the first box recorded for rank.
func (t *BoxTable) BoxOf(rank int) (b Box, ok bool) {
	for i, r := range t.ranks {
		if r == rank {
			return t.boxes[i], true
		}
	}
	return EmptyBox(), false
}

// DestinationProcessForPoint returns the rank of the first box containing
// coords, or NotFound.
func (t *BoxTable) DestinationProcessForPoint(coords []float64) int {
	for i, b := range t.boxes {
		if b.PointInclusion(coords, 0) {
			return t.ranks[i]
		}
	}
	return NotFound
}

// DestinationProcessesForBox returns every rank whose box intersects b, in
// table order without repeats.
func (t *BoxTable) DestinationProcessesForBox(b Box) (ranks []int) {
	seen := make(map[int]bool)
	for i, tb := range t.boxes {
		if CheckForIntersection(tb, b) && !seen[t.ranks[i]] {
			seen[t.ranks[i]] = true
			ranks = append(ranks, t.ranks[i])
		}
	}
	return
}
