package partitions

import (
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
)

// gridPoints deals an n x n unit grid round robin over the ranks.
func gridPoints(rank, size, n int) (coords []float64, gids []geometry.EntityID) {
	for k := 0; k < n*n; k++ {
		if k%size != rank {
			continue
		}
		coords = append(coords, float64(k%n), float64(k/n))
		gids = append(gids, geometry.EntityID(k))
	}
	return
}

func TestSingleProcessOwnsEverything(t *testing.T) {
	coords, gids := gridPoints(0, 1, 5)
	p := NewPartitioner(comm.Self(), 2, nil, NewPointObjects(coords, gids, 2))
	require.NoError(t, p.Partition(geometry.BoundingBoxOf(0, 0, coords, 2)))
	assert.Equal(t, 1, p.Table().Len())
	assert.Equal(t, 0, p.DestinationProcessForPoint([]float64{1.e200, -4}))
	assert.Equal(t, []int{0}, p.DestinationProcessesForBox(geometry.NewBox(0, 0, 7, 7, 0, 8, 8, 0)))
	assert.False(t, p.Result().Changes)
	assert.Equal(t, make([]int, 25), p.InputPointDestinationProcs(0, 25))
}

func TestRCBBalancesGrid(t *testing.T) {
	const (
		np = 4
		n  = 20
	)
	var (
		mu               sync.Mutex
		owned            = make([]int, np)
		exports, imports int
	)
	err := comm.Run(np, func(c comm.Communicator) error {
		coords, gids := gridPoints(c.Rank(), np, n)
		backend := NewRCB()
		p := NewPartitioner(c, 2, backend, NewPointObjects(coords, gids, 2))
		if err := p.Partition(geometry.BoundingBoxOf(0, c.Rank(), coords, 2)); err != nil {
			return err
		}
		dest := p.InputPointDestinationProcs(0, len(gids))
		for i, d := range dest {
			pt := coords[2*i : 2*i+2]
			_, box, err := backend.SubBox(d)
			if err != nil {
				return err
			}
			assert.True(t, box.PointInclusion(pt, 0), "point %v outside box of rank %d", pt, d)
			assert.Equal(t, d, p.DestinationProcessForPoint(pt))
		}
		res := p.Result()
		assert.True(t, res.Changes)
		mu.Lock()
		defer mu.Unlock()
		for _, d := range dest {
			owned[d]++
		}
		exports += len(res.Exports)
		imports += len(res.Imports)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 100, 100}, owned)
	assert.Equal(t, exports, imports)
}

func TestRCBSubBoxesTileDomain(t *testing.T) {
	const np = 3
	err := comm.Run(np, func(c comm.Communicator) error {
		coords, gids := gridPoints(c.Rank(), np, 9)
		backend := NewRCB()
		p := NewPartitioner(c, 2, backend, NewPointObjects(coords, gids, 2))
		if err := p.Partition(geometry.BoundingBoxOf(0, c.Rank(), coords, 2)); err != nil {
			return err
		}
		// Any point of the plane has an owner among the sub-boxes
		var table geometry.BoxTable
		for r := 0; r < np; r++ {
			_, box, _ := backend.SubBox(r)
			table.Add(r, box)
		}
		for _, pt := range [][]float64{{-1.e9, 1.e9}, {4.5, 4.5}, {1.e300, 0}} {
			if table.DestinationProcessForPoint(pt) == NotFound {
				return fmt.Errorf("point %v not covered", pt)
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestRankWithoutGeometry(t *testing.T) {
	err := comm.Run(3, func(c comm.Communicator) error {
		var (
			coords []float64
			gids   []geometry.EntityID
		)
		if c.Rank() != 2 {
			coords, gids = gridPoints(c.Rank(), 2, 6)
		}
		p := NewPartitioner(c, 2, nil, NewPointObjects(coords, gids, 2))
		if err := p.Partition(geometry.BoundingBoxOf(0, c.Rank(), coords, 2)); err != nil {
			return err
		}
		if c.Rank() == 2 {
			assert.Equal(t, 0, p.Table().Len())
			assert.Equal(t, NotFound, p.DestinationProcessForPoint([]float64{1, 1}))
		} else {
			assert.NotEqual(t, 0, p.Table().Len())
		}
		return nil
	})
	require.NoError(t, err)
}

type failingBackend struct {
	partitionErr error
	dim          int
}

func (f *failingBackend) Partition(comm.Communicator, Callbacks) (*Result, error) {
	if f.partitionErr != nil {
		return nil, f.partitionErr
	}
	return &Result{}, nil
}

func (f *failingBackend) SubBox(rank int) (int, geometry.Box, error) {
	return f.dim, geometry.InfiniteBox(0, rank, f.dim), nil
}

func TestBackendFailures(t *testing.T) {
	err := comm.Run(2, func(c comm.Communicator) error {
		objs := NewPointObjects([]float64{0, 0}, []geometry.EntityID{geometry.EntityID(c.Rank())}, 2)
		p := NewPartitioner(c, 2, &failingBackend{partitionErr: errors.New("no memory")}, objs)
		err := p.Partition(geometry.NewBox(0, 0, 0, 0, 0, 1, 1, 0))
		assert.ErrorContains(t, err, "no memory")

		p = NewPartitioner(c, 2, &failingBackend{dim: 3}, objs)
		err = p.Partition(geometry.NewBox(0, 0, 0, 0, 0, 1, 1, 0))
		assert.ErrorContains(t, err, "dimension 3")
		return nil
	})
	require.NoError(t, err)
}

func TestBoxObjectsCorners(t *testing.T) {
	boxes := []geometry.Box{
		geometry.NewBox(7, 0, 0, 0, 0, 1, 2, 0),
		geometry.NewBox(8, 0, 5, 5, 0, 6, 6, 0),
	}
	cb := NewBoxObjects(boxes, 2).Callbacks()
	assert.Equal(t, 8, cb.NumObjects())
	assert.Equal(t, 2, cb.NumGeometry())
	gids, lids := cb.ObjectList()
	assert.Equal(t, []geometry.EntityID{7, 7, 7, 7, 8, 8, 8, 8}, gids)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1, 1}, lids)
	assert.Equal(t, []float64{0, 0, 1, 0, 0, 2, 1, 2}, cb.GeometryList()[:8])

	err := comm.Run(2, func(c comm.Communicator) error {
		p := NewPartitioner(c, 2, nil, NewBoxObjects(boxes, 2))
		return p.Partition(geometry.NewBox(0, 0, 0, 0, 0, 6, 6, 0))
	})
	require.NoError(t, err)
}

func TestRCBRejectsBadCallbacks(t *testing.T) {
	err := comm.Run(2, func(c comm.Communicator) error {
		cb := NewPointObjects(nil, nil, 2).Callbacks()
		cb.NumGeometry = func() int { return 4 }
		_, err := NewRCB().Partition(c, cb)
		assert.Error(t, err)
		_, _, err = NewRCB().SubBox(0)
		assert.Error(t, err)
		return nil
	})
	require.NoError(t, err)
}
