// Package comm provides the SPMD process model used by the transfer code:
// ranks run as goroutines of one world and talk through per-rank mailboxes.
package comm

// Tags below zero are reserved for collectives.
const (
	tagAllGather = -1 - iota
	tagAllToAll
	tagReduce
)

type ReduceOp uint8

const (
	Min ReduceOp = iota
	Max
	Sum
)

func (op ReduceOp) String() string {
	switch op {
	case Min:
		return "Min"
	case Max:
		return "Max"
	case Sum:
		return "Sum"
	}
	return "Unknown"
}

// Communicator is the view one rank has of the world. Every call blocks the
// calling rank. Collective calls must be made by all ranks in the same order.
type Communicator interface {
	Rank() int
	Size() int
	// Send never blocks. The payload is copied.
	Send(dest, tag int, data []byte)
	// Recv returns the oldest unread message from src with the given tag.
	Recv(src, tag int) []byte
	Barrier()
	AllGather(data []byte) [][]byte
	// AllToAll sends bufs[r] to rank r and returns what every rank sent here.
	AllToAll(bufs [][]byte) [][]byte
	AllReduceFloat64(op ReduceOp, vals []float64) []float64
	AllReduceInt(op ReduceOp, vals []int) []int
}
