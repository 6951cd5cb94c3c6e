package application

import (
	"sync"

	"github.com/cnwallet/walletd/internal/core/domain"
)

// blockQueue hands blocks over from the downloader to the scanner in FIFO
// order. Once stopped, blocked pushers and poppers return immediately and
// queued blocks are dropped.
type blockQueue struct {
	items chan domain.RawBlock
	quit  chan struct{}
	once  *sync.Once
}

func newBlockQueue(size int) *blockQueue {
	if size <= 0 {
		size = 1
	}
	return &blockQueue{
		items: make(chan domain.RawBlock, size),
		quit:  make(chan struct{}),
		once:  &sync.Once{},
	}
}

// PushFront enqueues block, waiting for room if the queue is full. It
// returns false if the queue was stopped.
func (q *blockQueue) PushFront(block domain.RawBlock) bool {
	select {
	case <-q.quit:
		return false
	default:
	}

	select {
	case q.items <- block:
		return true
	case <-q.quit:
		return false
	}
}

// PopBack dequeues the oldest block, waiting until one is available. It
// returns false if the queue was stopped.
func (q *blockQueue) PopBack() (domain.RawBlock, bool) {
	select {
	case <-q.quit:
		return domain.RawBlock{}, false
	default:
	}

	select {
	case block := <-q.items:
		return block, true
	case <-q.quit:
		return domain.RawBlock{}, false
	}
}

// Stop is idempotent.
func (q *blockQueue) Stop() {
	q.once.Do(func() { close(q.quit) })
}

// Len returns the number of blocks waiting to be popped.
func (q *blockQueue) Len() int {
	return len(q.items)
}
