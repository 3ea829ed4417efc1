package pointcloud

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
)

const tagDistribute = 101

// radiusSlack widens the exchange boxes so rounding never drops a source at
// exactly the radius.
const radiusSlack = 1.e-10

// CenterDistributor forwards every source center to each rank that has a
// target within radius of it. The communication pattern it builds is reused
// by Distribute to forward data attached to the sources.
type CenterDistributor struct {
	comm        comm.Communicator
	dim         int
	numSources  int
	pushRanks   []int
	pushIndices [][]int // local sources sent to pushRanks[k], in local order
	pullRanks   []int
	pullCounts  []int
	numImports  int
}

// NewCenterDistributor is collective. It returns the distributor and the
// coordinates of the sources that arrived here, ordered by ascending source
// rank and then by the sender's local order.
func NewCenterDistributor(c comm.Communicator, sourceCenters, targetCenters []float64, dim int,
	radius float64) (d *CenterDistributor, distSources []float64, err error) {
	if dim < 1 || dim > 3 {
		err = errors.Errorf("center distributor: dimension %d not in [1,3]", dim)
		return
	}
	if len(sourceCenters)%dim != 0 || len(targetCenters)%dim != 0 {
		err = errors.Errorf("center distributor: %d source and %d target coordinates for dimension %d",
			len(sourceCenters), len(targetCenters), dim)
		return
	}
	if !(radius >= 0) {
		err = errors.Errorf("center distributor: invalid radius %g", radius)
		return
	}
	d = &CenterDistributor{comm: c, dim: dim, numSources: len(sourceCenters) / dim}
	var (
		me         = c.Rank()
		numTargets = len(targetCenters) / dim
		sourceBox  = exchangeBox(c, sourceCenters, dim, d.numSources > 0)
		targetBox  = exchangeBox(c, targetCenters, dim, numTargets > 0)
		expand     = radius * (1 + radiusSlack)
	)
	if numTargets > 0 {
		targetBox = targetBox.Expand(expand, dim)
	}
	payload, _ := sourceBox.MarshalBinary()
	payload, _ = targetBox.AppendBinary(payload)

	var sourceTable, targetTable geometry.BoxTable
	for rank, buf := range c.AllGather(payload) {
		var sb, tb geometry.Box
		if err = sb.UnmarshalBinary(buf[:geometry.BoxByteSize]); err != nil {
			return nil, nil, errors.Wrapf(err, "source box from rank %d", rank)
		}
		if err = tb.UnmarshalBinary(buf[geometry.BoxByteSize:]); err != nil {
			return nil, nil, errors.Wrapf(err, "target box from rank %d", rank)
		}
		if sb.OwnerRank() >= 0 {
			sourceTable.Add(rank, sb)
		}
		if tb.OwnerRank() >= 0 {
			targetTable.Add(rank, tb)
		}
	}
	if d.numSources > 0 {
		d.pushRanks = targetTable.DestinationProcessesForBox(sourceBox)
	}
	if numTargets > 0 {
		d.pullRanks = sourceTable.DestinationProcessesForBox(targetBox)
	}
	d.pushIndices = make([][]int, len(d.pushRanks))
	for k, q := range d.pushRanks {
		box, _ := targetTable.BoxOf(q)
		for i := 0; i < d.numSources; i++ {
			if box.PointInclusion(sourceCenters[i*dim:(i+1)*dim], 0) {
				d.pushIndices[k] = append(d.pushIndices[k], i)
			}
		}
	}
	distSources = Distribute(d, sourceCenters, dim)
	d.numImports = len(distSources) / dim
	logrus.WithFields(logrus.Fields{
		"rank": me, "push": d.pushRanks, "pull": d.pullRanks,
		"exports": d.NumExports(), "imports": d.numImports,
	}).Debug("centers distributed")
	return
}

// exchangeBox is the local bounding box, or an unowned empty box when the
// rank has no centers.
func exchangeBox(c comm.Communicator, coords []float64, dim int, present bool) geometry.Box {
	if !present {
		return geometry.EmptyBox()
	}
	return geometry.BoundingBoxOf(geometry.InvalidEntityID, c.Rank(), coords, dim)
}

func (d *CenterDistributor) NumImports() int { return d.numImports }

func (d *CenterDistributor) NumExports() (n int) {
	for _, idx := range d.pushIndices {
		n += len(idx)
	}
	return
}

func (d *CenterDistributor) PushRanks() []int { return append([]int(nil), d.pushRanks...) }
func (d *CenterDistributor) PullRanks() []int { return append([]int(nil), d.pullRanks...) }

// Distribute forwards src, stride values per local source, along the
// distributor's pattern. The result holds stride values per arrived source in
// arrival order. It is collective over the push and pull ranks.
func Distribute[T comm.Fixed](d *CenterDistributor, src []T, stride int) (out []T) {
	if stride < 1 || len(src) != d.numSources*stride {
		exceptions.Panicf("distribute: %d values for %d sources with stride %d", len(src), d.numSources, stride)
	}
	var (
		me    = d.comm.Rank()
		local []T
	)
	for k, q := range d.pushRanks {
		packed := make([]T, 0, len(d.pushIndices[k])*stride)
		for _, i := range d.pushIndices[k] {
			packed = append(packed, src[i*stride:(i+1)*stride]...)
		}
		if q == me {
			local = packed
			continue
		}
		d.comm.Send(q, tagDistribute, comm.Encode(packed))
	}
	first := d.pullCounts == nil
	if first {
		d.pullCounts = make([]int, len(d.pullRanks))
	}
	for k, p := range d.pullRanks {
		var vals []T
		if p == me {
			vals = local
		} else {
			vals = comm.Decode[T](d.comm.Recv(p, tagDistribute))
		}
		if len(vals)%stride != 0 {
			exceptions.Panicf("distribute: %d values from rank %d with stride %d", len(vals), p, stride)
		}
		if first {
			d.pullCounts[k] = len(vals) / stride
		} else if len(vals) != d.pullCounts[k]*stride {
			exceptions.Panicf("distribute: rank %d sent %d values, expected %d", p, len(vals), d.pullCounts[k]*stride)
		}
		out = append(out, vals...)
	}
	if out == nil {
		out = []T{}
	}
	return
}
