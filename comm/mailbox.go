package comm

import (
	"sync"
)

type message struct {
	src, tag int
	data     []byte
}

type abortSignal struct{}

// mailBox holds the messages posted to one rank until they are received.
// Matching is by (src, tag) in posting order.
type mailBox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []message
	aborted bool
}

func newMailBox() (mb *mailBox) {
	mb = &mailBox{}
	mb.cond = sync.NewCond(&mb.mu)
	return
}

func (mb *mailBox) post(msg message) {
	mb.mu.Lock()
	mb.queue = append(mb.queue, msg)
	mb.mu.Unlock()
	mb.cond.Broadcast()
}

func (mb *mailBox) take(src, tag int) (data []byte) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for {
		if mb.aborted {
			panic(abortSignal{})
		}
		for i, msg := range mb.queue {
			if msg.src == src && msg.tag == tag {
				data = msg.data
				mb.queue = append(mb.queue[:i], mb.queue[i+1:]...)
				return
			}
		}
		mb.cond.Wait()
	}
}

func (mb *mailBox) abort() {
	mb.mu.Lock()
	mb.aborted = true
	mb.mu.Unlock()
	mb.cond.Broadcast()
}
