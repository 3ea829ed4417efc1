package geometry

import (
	"math"

	"github.com/notargets/gomls/comm"
)

// GlobalBoundingBox unites the local boxes of all ranks. Empty local boxes
// do not contribute. The result is empty if every rank is empty.
func GlobalBoundingBox(c comm.Communicator, local Box) Box {
	vals := make([]float64, 6)
	for d := 0; d < 3; d++ {
		vals[d], vals[d+3] = math.Inf(1), math.Inf(1)
	}
	if !local.IsEmpty() {
		for d := 0; d < 3; d++ {
			vals[d] = local.bounds[d]
			vals[d+3] = -local.bounds[d+3]
		}
	}
	red := c.AllReduceFloat64(comm.Min, vals)
	if math.IsInf(red[0], 1) {
		return EmptyBox()
	}
	return NewBox(InvalidEntityID, -1, red[0], red[1], red[2], -red[3], -red[4], -red[5])
}
