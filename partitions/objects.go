package partitions

import (
	"github.com/gomlx/exceptions"
	"github.com/notargets/gomls/geometry"
)

// ObjectSource supplies the objects a partitioner balances.
type ObjectSource interface {
	Callbacks() Callbacks
}

// PointObjects partitions points, one object each.
type PointObjects struct {
	Dim    int
	Coords []float64
	GIDs   []geometry.EntityID
}

func NewPointObjects(coords []float64, gids []geometry.EntityID, dim int) *PointObjects {
	if dim < 1 || dim > 3 || len(coords) != len(gids)*dim {
		exceptions.Panicf("point objects: %d coordinates, %d ids, dimension %d", len(coords), len(gids), dim)
	}
	return &PointObjects{Dim: dim, Coords: coords, GIDs: gids}
}

func (p *PointObjects) Callbacks() Callbacks {
	return Callbacks{
		NumObjects: func() int { return len(p.GIDs) },
		ObjectList: func() (gids []geometry.EntityID, lids []int) {
			gids = append(gids, p.GIDs...)
			lids = make([]int, len(p.GIDs))
			for i := range lids {
				lids[i] = i
			}
			return
		},
		NumGeometry:  func() int { return p.Dim },
		GeometryList: func() []float64 { return p.Coords },
	}
}

// BoxObjects partitions boxes through their 2^dim corners. Every corner is
// its own object carrying the box ids, so one box may land on several ranks.
type BoxObjects struct {
	Dim   int
	Boxes []geometry.Box
}

func NewBoxObjects(boxes []geometry.Box, dim int) *BoxObjects {
	if dim < 1 || dim > 3 {
		exceptions.Panicf("box objects: dimension %d", dim)
	}
	return &BoxObjects{Dim: dim, Boxes: boxes}
}

func (b *BoxObjects) corners() int { return 1 << b.Dim }

func (b *BoxObjects) Callbacks() Callbacks {
	return Callbacks{
		NumObjects: func() int { return len(b.Boxes) * b.corners() },
		ObjectList: func() (gids []geometry.EntityID, lids []int) {
			for i, box := range b.Boxes {
				for k := 0; k < b.corners(); k++ {
					gids = append(gids, box.ID())
					lids = append(lids, i)
				}
			}
			return
		},
		NumGeometry: func() int { return b.Dim },
		GeometryList: func() (coords []float64) {
			for _, box := range b.Boxes {
				lo, hi := box.Min(), box.Max()
				for k := 0; k < b.corners(); k++ {
					for d := 0; d < b.Dim; d++ {
						if k&(1<<d) == 0 {
							coords = append(coords, lo[d])
						} else {
							coords = append(coords, hi[d])
						}
					}
				}
			}
			return
		},
	}
}
