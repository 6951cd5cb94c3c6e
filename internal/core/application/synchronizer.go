package application

import (
	"context"
	"sync"
	"time"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultQueueSize is the number of downloaded blocks that can wait to
	// be scanned before the downloader blocks.
	DefaultQueueSize = 1000
	// DefaultRetryInterval is the wait after a failed daemon request.
	DefaultRetryInterval = 500 * time.Millisecond
	// DefaultIdleInterval is the wait after the daemon reported no new blocks.
	DefaultIdleInterval = time.Second
)

// SyncConfig tunes the sync pipeline. Zero values fall back to defaults.
type SyncConfig struct {
	QueueSize     int
	RetryInterval time.Duration
	IdleInterval  time.Duration
}

func (c SyncConfig) withDefaults() SyncConfig {
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = DefaultIdleInterval
	}
	return c
}

// SyncSnapshot is a consistent view of the ledger and of both sync statuses.
type SyncSnapshot struct {
	SubWallets       []domain.SubWallet
	Transactions     []domain.Transaction
	DownloaderStatus domain.SynchronizationStatus
	ScannerStatus    domain.SynchronizationStatus
}

// WalletSynchronizer keeps a SubWallets ledger in sync with a daemon by
// running a block downloader and a transaction scanner connected by a
// queue.
type WalletSynchronizer interface {
	// Start panics if no daemon was configured. Calling it on a running
	// synchronizer is a no-op.
	Start()
	// Stop waits for both workers to exit. It is idempotent.
	Stop()
	IsRunning() bool
	// WalletHeight is the height of the last scanned block.
	WalletHeight() uint64
	// DownloaderHeight is the height of the last downloaded block.
	DownloaderHeight() uint64
	Snapshot() SyncSnapshot
}

type walletSynchronizer struct {
	daemon     ports.Daemon
	subWallets *domain.SubWallets
	cfg        SyncConfig

	lock       *sync.Mutex
	running    bool
	cancel     context.CancelFunc
	group      *errgroup.Group
	queue      *blockQueue
	downloader *blockDownloader
	scanner    *transactionScanner
}

// NewWalletSynchronizer returns a stopped synchronizer resuming from the
// given statuses.
func NewWalletSynchronizer(
	daemon ports.Daemon,
	subWallets *domain.SubWallets,
	downloaderStatus, scannerStatus *domain.SynchronizationStatus,
	cfg SyncConfig,
) WalletSynchronizer {
	return newWalletSynchronizer(
		daemon, subWallets, downloaderStatus, scannerStatus, cfg,
	)
}

func newWalletSynchronizer(
	daemon ports.Daemon,
	subWallets *domain.SubWallets,
	downloaderStatus, scannerStatus *domain.SynchronizationStatus,
	cfg SyncConfig,
) *walletSynchronizer {
	if downloaderStatus == nil {
		downloaderStatus = domain.NewSynchronizationStatus()
	}
	if scannerStatus == nil {
		scannerStatus = domain.NewSynchronizationStatus()
	}
	cfg = cfg.withDefaults()

	queue := newBlockQueue(cfg.QueueSize)
	return &walletSynchronizer{
		daemon:     daemon,
		subWallets: subWallets,
		cfg:        cfg,
		lock:       &sync.Mutex{},
		queue:      queue,
		downloader: newBlockDownloader(
			daemon, queue, downloaderStatus, subWallets.GetMinSyncTimestamp,
			cfg.RetryInterval, cfg.IdleInterval,
		),
		scanner: newTransactionScanner(subWallets, queue, scannerStatus),
	}
}

func (w *walletSynchronizer) Start() {
	if w.daemon == nil {
		log.Panic(ErrNullDaemon)
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if w.running {
		return
	}

	// Blocks downloaded but not scanned before the last stop were dropped
	// with the queue, so downloading restarts from the scanner position.
	scannerStatus := w.scanner.getStatus()
	w.queue = newBlockQueue(w.cfg.QueueSize)
	w.downloader = newBlockDownloader(
		w.daemon, w.queue, scannerStatus.Clone(),
		w.subWallets.GetMinSyncTimestamp,
		w.cfg.RetryInterval, w.cfg.IdleInterval,
	)
	w.scanner.queue = w.queue

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return w.downloader.run(ctx) })
	group.Go(func() error { return w.scanner.run(ctx) })

	w.cancel = cancel
	w.group = group
	w.running = true

	log.WithField("height", scannerStatus.GetHeight()).Info(
		"synchronizer: started",
	)
}

func (w *walletSynchronizer) Stop() {
	w.lock.Lock()
	defer w.lock.Unlock()

	if !w.running {
		return
	}

	w.cancel()
	w.queue.Stop()
	if err := w.group.Wait(); err != nil {
		log.WithError(err).Warn("synchronizer: worker exited with error")
	}
	w.running = false

	log.WithField("height", w.scanner.getHeight()).Info("synchronizer: stopped")
}

func (w *walletSynchronizer) IsRunning() bool {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.running
}

func (w *walletSynchronizer) WalletHeight() uint64 {
	return w.scanner.getHeight()
}

func (w *walletSynchronizer) DownloaderHeight() uint64 {
	w.lock.Lock()
	downloader := w.downloader
	w.lock.Unlock()
	return downloader.getHeight()
}

func (w *walletSynchronizer) Snapshot() SyncSnapshot {
	w.lock.Lock()
	downloader := w.downloader
	w.lock.Unlock()

	var snapshot SyncSnapshot
	w.scanner.withLock(func(status *domain.SynchronizationStatus) {
		snapshot.ScannerStatus = *status.Clone()
		snapshot.SubWallets, snapshot.Transactions = w.subWallets.Snapshot()
	})
	snapshot.DownloaderStatus = downloader.getStatus()
	return snapshot
}
