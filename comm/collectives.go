package comm

import (
	"math"

	"github.com/gomlx/exceptions"
)

func (c *rankComm) Barrier() {
	c.AllGather(nil)
}

func (c *rankComm) AllGather(data []byte) (all [][]byte) {
	all = make([][]byte, c.w.size)
	for r := 0; r < c.w.size; r++ {
		if r != c.rank {
			c.Send(r, tagAllGather, data)
		}
	}
	for r := 0; r < c.w.size; r++ {
		if r == c.rank {
			all[r] = append([]byte(nil), data...)
			continue
		}
		all[r] = c.Recv(r, tagAllGather)
	}
	return
}

func (c *rankComm) AllToAll(bufs [][]byte) (recv [][]byte) {
	if len(bufs) != c.w.size {
		exceptions.Panicf("AllToAll needs %d buffers, got %d", c.w.size, len(bufs))
	}
	recv = make([][]byte, c.w.size)
	for r := 0; r < c.w.size; r++ {
		if r != c.rank {
			c.Send(r, tagAllToAll, bufs[r])
		}
	}
	for r := 0; r < c.w.size; r++ {
		if r == c.rank {
			recv[r] = append([]byte(nil), bufs[r]...)
			continue
		}
		recv[r] = c.Recv(r, tagAllToAll)
	}
	return
}

// AllReduceFloat64 combines in rank order on every rank, so all ranks see
// bitwise identical results.
func (c *rankComm) AllReduceFloat64(op ReduceOp, vals []float64) (out []float64) {
	parts := c.gatherReduce(Encode(vals))
	out = append([]float64(nil), Decode[float64](parts[0])...)
	for _, p := range parts[1:] {
		v := Decode[float64](p)
		if len(v) != len(out) {
			exceptions.Panicf("AllReduceFloat64 length mismatch: %d != %d", len(v), len(out))
		}
		for i := range out {
			switch op {
			case Min:
				out[i] = math.Min(out[i], v[i])
			case Max:
				out[i] = math.Max(out[i], v[i])
			case Sum:
				out[i] += v[i]
			default:
				exceptions.Panicf("unknown reduce op %d", op)
			}
		}
	}
	return
}

func (c *rankComm) AllReduceInt(op ReduceOp, vals []int) (out []int) {
	wide := make([]int64, len(vals))
	for i, v := range vals {
		wide[i] = int64(v)
	}
	parts := c.gatherReduce(Encode(wide))
	acc := append([]int64(nil), Decode[int64](parts[0])...)
	for _, p := range parts[1:] {
		v := Decode[int64](p)
		if len(v) != len(acc) {
			exceptions.Panicf("AllReduceInt length mismatch: %d != %d", len(v), len(acc))
		}
		for i := range acc {
			switch op {
			case Min:
				acc[i] = min(acc[i], v[i])
			case Max:
				acc[i] = max(acc[i], v[i])
			case Sum:
				acc[i] += v[i]
			default:
				exceptions.Panicf("unknown reduce op %d", op)
			}
		}
	}
	out = make([]int, len(acc))
	for i, v := range acc {
		out[i] = int(v)
	}
	return
}

func (c *rankComm) gatherReduce(data []byte) (parts [][]byte) {
	parts = make([][]byte, c.w.size)
	for r := 0; r < c.w.size; r++ {
		if r != c.rank {
			c.Send(r, tagReduce, data)
		}
	}
	for r := 0; r < c.w.size; r++ {
		if r == c.rank {
			parts[r] = data
			continue
		}
		parts[r] = c.Recv(r, tagReduce)
	}
	return
}
