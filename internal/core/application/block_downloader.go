package application

import (
	"context"
	"sync"
	"time"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/internal/core/ports"
	"github.com/cnwallet/walletd/pkg/stats"
	log "github.com/sirupsen/logrus"
)

// blockDownloader pulls blocks from the daemon, skips the ones it already
// queued and feeds the others to the scanner.
type blockDownloader struct {
	daemon         ports.Daemon
	queue          *blockQueue
	startTimestamp func() uint64

	retryInterval time.Duration
	idleInterval  time.Duration

	lock   *sync.RWMutex
	status *domain.SynchronizationStatus
}

func newBlockDownloader(
	daemon ports.Daemon,
	queue *blockQueue,
	status *domain.SynchronizationStatus,
	startTimestamp func() uint64,
	retryInterval, idleInterval time.Duration,
) *blockDownloader {
	return &blockDownloader{
		daemon:         daemon,
		queue:          queue,
		startTimestamp: startTimestamp,
		retryInterval:  retryInterval,
		idleInterval:   idleInterval,
		lock:           &sync.RWMutex{},
		status:         status,
	}
}

// run loops until ctx is done. The queue is stopped on return so that the
// scanner never waits on a producer that is gone.
func (d *blockDownloader) run(ctx context.Context) error {
	defer d.queue.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		blocks, err := d.fetchBlocks(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			stats.DaemonFailures.Inc()
			log.WithError(err).Warn("downloader: failed to fetch sync data")
			if !sleep(ctx, d.retryInterval) {
				return nil
			}
			continue
		}

		queued, ok := d.enqueue(blocks)
		if !ok {
			return nil
		}
		// Nothing new: we are at the tip or the daemon served known blocks.
		if queued == 0 && !sleep(ctx, d.idleInterval) {
			return nil
		}
	}
}

// fetchBlocks runs the daemon call in its own goroutine so that a stop
// request is honored even if the daemon ignores cancellation.
func (d *blockDownloader) fetchBlocks(
	ctx context.Context,
) ([]domain.RawBlock, error) {
	d.lock.RLock()
	checkpoints := d.status.GetBlockHashCheckpoints()
	d.lock.RUnlock()
	startTimestamp := d.startTimestamp()

	type result struct {
		blocks []domain.RawBlock
		err    error
	}
	resultChan := make(chan result, 1)

	go func() {
		blocks, err := d.daemon.GetWalletSyncData(ctx, checkpoints, startTimestamp)
		resultChan <- result{blocks, err}
	}()

	select {
	case res := <-resultChan:
		return res.blocks, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// enqueue returns the number of queued blocks, and false if the queue was
// stopped while pushing.
func (d *blockDownloader) enqueue(blocks []domain.RawBlock) (int, bool) {
	queued := 0
	for _, block := range blocks {
		d.lock.Lock()
		if d.status.HaveSeenBlock(block.BlockHash) {
			d.lock.Unlock()
			log.Debugf("downloader: skipping duplicate block %d", block.BlockHeight)
			continue
		}
		// A new block at a known height: forget the abandoned branch so
		// that its hashes are not offered as checkpoints anymore.
		if d.status.HasBlocks() && block.BlockHeight <= d.status.GetHeight() {
			log.Debugf("downloader: chain forked at height %d", block.BlockHeight)
			d.status.RewindTo(block.BlockHeight)
		}
		d.status.StoreBlockHash(block.BlockHash, block.BlockHeight)
		d.lock.Unlock()

		if !d.queue.PushFront(block) {
			return queued, false
		}
		queued++
		stats.BlocksDownloaded.Inc()
		stats.DownloaderHeight.Set(float64(block.BlockHeight))
	}

	pending := d.queue.Len()
	stats.QueuedBlocks.Set(float64(pending))
	if queued > 0 {
		log.Debugf(
			"downloader: queued %d blocks up to height %d, %d waiting",
			queued, blocks[len(blocks)-1].BlockHeight, pending,
		)
	}
	return queued, true
}

func (d *blockDownloader) getStatus() domain.SynchronizationStatus {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return *d.status.Clone()
}

func (d *blockDownloader) getHeight() uint64 {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.status.GetHeight()
}

// sleep returns false if ctx was done before the interval elapsed.
func sleep(ctx context.Context, interval time.Duration) bool {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
