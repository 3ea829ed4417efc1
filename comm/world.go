package comm

import (
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type world struct {
	size     int
	boxes    []*mailBox
	comms    []*rankComm
	once     sync.Once
	firstErr error
}

func newWorld(size int) (w *world) {
	w = &world{
		size:  size,
		boxes: make([]*mailBox, size),
		comms: make([]*rankComm, size),
	}
	for r := 0; r < size; r++ {
		w.boxes[r] = newMailBox()
		w.comms[r] = &rankComm{w: w, rank: r}
	}
	return
}

func (w *world) abort(err error) {
	w.once.Do(func() {
		w.firstErr = err
		for _, mb := range w.boxes {
			mb.abort()
		}
	})
}

// Run starts size ranks, each executing fn with its own Communicator, and
// waits for all of them. The first error returned or panic raised by any rank
// aborts the world and is returned.
func Run(size int, fn func(c Communicator) error) error {
	if size < 1 {
		return errors.Errorf("invalid world size %d", size)
	}
	var (
		w  = newWorld(size)
		wg sync.WaitGroup
	)
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					if _, ok := p.(abortSignal); ok {
						return
					}
					err, ok := p.(error)
					if !ok {
						err = errors.Errorf("%v", p)
					}
					w.abort(errors.WithMessagef(err, "rank %d panicked", rank))
				}
			}()
			if err := fn(w.comms[rank]); err != nil {
				w.abort(errors.WithMessagef(err, "rank %d failed", rank))
			}
		}(r)
	}
	wg.Wait()
	if w.firstErr != nil {
		logrus.WithError(w.firstErr).Debug("world aborted")
	}
	return w.firstErr
}

// Self returns a communicator for a world of one rank.
func Self() Communicator {
	return newWorld(1).comms[0]
}

type rankComm struct {
	w    *world
	rank int
}

func (c *rankComm) Rank() int { return c.rank }
func (c *rankComm) Size() int { return c.w.size }

func (c *rankComm) checkRank(r int) {
	if r < 0 || r >= c.w.size {
		exceptions.Panicf("rank %d out of range [0, %d)", r, c.w.size)
	}
}

func (c *rankComm) Send(dest, tag int, data []byte) {
	c.checkRank(dest)
	buf := make([]byte, len(data))
	copy(buf, data)
	c.w.boxes[dest].post(message{src: c.rank, tag: tag, data: buf})
}

func (c *rankComm) Recv(src, tag int) []byte {
	c.checkRank(src)
	return c.w.boxes[c.rank].take(src, tag)
}
