package partitions

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
)

// Partitioner runs a Backend over an object source and caches the sub-boxes
// that matter to this rank.
type Partitioner struct {
	comm      comm.Communicator
	dim       int
	backend   Backend
	callbacks Callbacks
	numObjs   int
	table     geometry.BoxTable
	result    *Result
	dest      []int
}

func NewPartitioner(c comm.Communicator, dim int, backend Backend, objects ObjectSource) *Partitioner {
	if dim < 1 || dim > 3 {
		exceptions.Panicf("partitioner dimension %d not in [1,3]", dim)
	}
	if backend == nil {
		backend = NewRCB()
	}
	return &Partitioner{
		comm:      c,
		dim:       dim,
		backend:   backend,
		callbacks: objects.Callbacks(),
	}
}

// Partition decomposes the global object set and records every rank's
// sub-box that intersects localBox. It is collective.
func (p *Partitioner) Partition(localBox geometry.Box) (err error) {
	p.table.Reset()
	p.numObjs = p.callbacks.NumObjects()
	p.dest = make([]int, p.numObjs)
	for i := range p.dest {
		p.dest[i] = p.comm.Rank()
	}
	if p.comm.Size() == 1 {
		p.table.Add(0, geometry.InfiniteBox(0, 0, p.dim))
		p.result = &Result{}
		return
	}
	var res *Result
	if res, err = p.backend.Partition(p.comm, p.callbacks); err != nil {
		return errors.Wrap(err, "partition backend failed")
	}
	p.result = res
	if r, ok := p.backend.(*RCB); ok {
		copy(p.dest, r.Destinations())
	} else {
		// Other backends only report moves by local id.
		_, lids := p.callbacks.ObjectList()
		exported := make(map[int]int, len(res.Exports))
		for _, ex := range res.Exports {
			exported[ex.LID] = ex.Rank
		}
		for i, lid := range lids {
			if rank, ok := exported[lid]; ok {
				p.dest[i] = rank
			}
		}
	}
	for rank := 0; rank < p.comm.Size(); rank++ {
		dim, box, err := p.backend.SubBox(rank)
		if err != nil {
			return errors.Wrapf(err, "sub-box of rank %d", rank)
		}
		if dim != p.dim {
			return errors.Errorf("backend dimension %d does not match partitioner dimension %d", dim, p.dim)
		}
		if box.IsEmpty() || localBox.IsEmpty() {
			continue
		}
		if geometry.CheckForIntersection(localBox, box) {
			p.table.Add(rank, box)
		}
	}
	logrus.WithFields(logrus.Fields{
		"rank": p.comm.Rank(), "boxes": p.table.Len(), "changes": res.Changes,
	}).Debug("partition complete")
	return
}

func (p *Partitioner) DestinationProcessForPoint(coords []float64) int {
	return p.table.DestinationProcessForPoint(coords)
}

func (p *Partitioner) DestinationProcessesForBox(b geometry.Box) []int {
	return p.table.DestinationProcessesForBox(b)
}

// Table is the cached rank to sub-box table.
func (p *Partitioner) Table() *geometry.BoxTable { return &p.table }

func (p *Partitioner) Result() *Result { return p.result }

// InputPointDestinationProcs returns the new rank of the local objects
// [begin, begin+n) of the last Partition.
func (p *Partitioner) InputPointDestinationProcs(begin, n int) []int {
	if begin < 0 || n < 0 || begin+n > len(p.dest) {
		exceptions.Panicf("object range [%d, %d) outside [0, %d)", begin, begin+n, len(p.dest))
	}
	return append([]int(nil), p.dest[begin:begin+n]...)
}
