package model_problems

import (
	"math"

	"github.com/notargets/gomls/geometry"
	"github.com/notargets/gomls/utils"
)

// Peaks is the two dimensional test surface used by the transfer examples.
func Peaks(x, y float64) float64 {
	return 3*(1-x)*(1-x)*math.Exp(-x*x-(y+1)*(y+1)) -
		10*(x/5-x*x*x-math.Pow(y, 5))*math.Exp(-x*x-y*y) -
		math.Exp(-(x+1)*(x+1)-y*y)/3
}

// PeaksGrid describes the source and target clouds of the peaks problem: an
// N x N grid of sources with spacing 6/N from (-3, -3) and the (N-1)² cell
// centers of that grid as targets.
type PeaksGrid struct {
	N int
	H float64
}

func NewPeaksGrid(N int) PeaksGrid {
	return PeaksGrid{N: N, H: 6. / float64(N)}
}

func (pg PeaksGrid) NumSources() int { return pg.N * pg.N }
func (pg PeaksGrid) NumTargets() int { return (pg.N - 1) * (pg.N - 1) }

func (pg PeaksGrid) Source(k int) (x, y float64) {
	i, j := k%pg.N, k/pg.N
	return -3 + pg.H*float64(i), -3 + pg.H*float64(j)
}

func (pg PeaksGrid) Target(k int) (x, y float64) {
	i, j := k%(pg.N-1), k/(pg.N-1)
	return -3 + pg.H*(float64(i)+0.5), -3 + pg.H*(float64(j)+0.5)
}

// Block returns the coordinates and ids of block bn of np of the sources
// (targets when target is set). Target ids start after the source ids.
func (pg PeaksGrid) Block(bn, np int, target bool) (coords []float64, gids []geometry.EntityID) {
	var (
		total = pg.NumSources()
		first geometry.EntityID
		at    = pg.Source
	)
	if target {
		total, first, at = pg.NumTargets(), geometry.EntityID(pg.NumSources()), pg.Target
	}
	gids = utils.NewPartitionMap(np, total).BucketIDs(bn, first)
	coords = make([]float64, 0, 2*len(gids))
	for _, id := range gids {
		x, y := at(int(id - first))
		coords = append(coords, x, y)
	}
	return
}

// Fields evaluates the packed test fields, field major: the peaks surface
// and a linear ramp.
func Fields(coords []float64) (data []float64) {
	n := len(coords) / 2
	data = make([]float64, 2*n)
	for i := 0; i < n; i++ {
		x, y := coords[2*i], coords[2*i+1]
		data[i] = Peaks(x, y)
		data[n+i] = x + 2*y
	}
	return
}
