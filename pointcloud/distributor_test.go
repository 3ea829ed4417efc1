package pointcloud

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
)

// scatteredProblem is a global pair of clouds known to every rank. Sources
// go to x slabs on even ranks only, targets are dealt round robin.
type scatteredProblem struct {
	dim              int
	radius           float64
	sources, targets []float64
	np               int
}

func newScatteredProblem(np int) *scatteredProblem {
	rng := rand.New(rand.NewSource(23))
	return &scatteredProblem{
		dim:     2,
		radius:  0.15,
		sources: randomCloud(rng, 300, 2, 3),
		targets: randomCloud(rng, 200, 2, 3),
		np:      np,
	}
}

func (sp *scatteredProblem) sourceRank(i int) int {
	slab := int(sp.sources[2*i]) % ((sp.np + 1) / 2)
	return 2 * slab
}

func (sp *scatteredProblem) local(rank int) (src []float64, srcIDs []geometry.EntityID, tgt []float64, tgtIDs []geometry.EntityID) {
	for i := 0; i < len(sp.sources)/2; i++ {
		if sp.sourceRank(i) == rank {
			src = append(src, sp.sources[2*i:2*i+2]...)
			srcIDs = append(srcIDs, geometry.EntityID(i))
		}
	}
	for i := 0; i < len(sp.targets)/2; i++ {
		if i%sp.np == rank {
			tgt = append(tgt, sp.targets[2*i:2*i+2]...)
			tgtIDs = append(tgtIDs, geometry.EntityID(1000+i))
		}
	}
	return
}

func TestCenterDistributorCompleteness(t *testing.T) {
	for _, np := range []int{1, 2, 3, 4} {
		sp := newScatteredProblem(np)
		err := comm.Run(np, func(c comm.Communicator) error {
			src, srcIDs, tgt, _ := sp.local(c.Rank())
			d, dist, err := NewCenterDistributor(c, src, tgt, 2, sp.radius)
			if err != nil {
				return err
			}
			gids := Distribute(d, srcIDs, 1)
			if len(gids) != d.NumImports() || len(dist) != 2*len(gids) {
				return fmt.Errorf("rank %d: %d ids, %d coordinates, %d imports", c.Rank(), len(gids), len(dist), d.NumImports())
			}
			arrived := make(map[geometry.EntityID]bool)
			for k, id := range gids {
				assert.False(t, arrived[id], "source %d arrived twice", id)
				arrived[id] = true
				assert.Equal(t, sp.sources[2*id:2*id+2], dist[2*k:2*k+2])
			}
			// Every source within radius of a local target must be here
			brute := NewBruteForcePairing(sp.sources, tgt, 2, sp.radius)
			for i := 0; i < brute.NumTargets(); i++ {
				for _, j := range brute.ChildCenterIDs(i) {
					assert.True(t, arrived[geometry.EntityID(j)],
						"np %d rank %d: source %d missing for target %d", np, c.Rank(), j, i)
				}
			}
			// Arrivals are grouped by ascending source rank
			ranks := make([]int32, len(srcIDs))
			for i := range ranks {
				ranks[i] = int32(c.Rank())
			}
			from := Distribute(d, ranks, 1)
			for k := 1; k < len(from); k++ {
				assert.LessOrEqual(t, from[k-1], from[k])
			}
			if len(srcIDs) == 0 {
				assert.Empty(t, d.PushRanks())
				assert.Equal(t, 0, d.NumExports())
			}
			return nil
		})
		require.NoError(t, err, "np %d", np)
	}
}

func TestCenterDistributorStride(t *testing.T) {
	err := comm.Run(2, func(c comm.Communicator) error {
		var (
			x   = float64(c.Rank())
			src = []float64{x, 0}
			tgt = []float64{1 - x, 0}
		)
		d, dist, err := NewCenterDistributor(c, src, tgt, 2, 1)
		if err != nil {
			return err
		}
		// Both sources reach both ranks, rank 0 first
		assert.Equal(t, []float64{0, 0, 1, 0}, dist)
		assert.Equal(t, []int{0, 1}, d.PushRanks())
		assert.Equal(t, []int{0, 1}, d.PullRanks())
		vals := Distribute(d, []float64{10 * x, 10*x + 1, 10*x + 2}, 3)
		assert.Equal(t, []float64{0, 1, 2, 10, 11, 12}, vals)
		assert.Panics(t, func() { Distribute(d, []float64{1}, 3) })
		return nil
	})
	require.NoError(t, err)
}

func TestCenterDistributorFarApart(t *testing.T) {
	err := comm.Run(2, func(c comm.Communicator) error {
		x := 100 * float64(c.Rank())
		d, dist, err := NewCenterDistributor(c, []float64{x}, []float64{x + 0.5}, 1, 1)
		if err != nil {
			return err
		}
		assert.Equal(t, []float64{x}, dist)
		assert.Equal(t, []int{c.Rank()}, d.PullRanks())
		_, _, err = NewCenterDistributor(c, []float64{x}, nil, 4, 1)
		assert.Error(t, err)
		return nil
	})
	require.NoError(t, err)
}
