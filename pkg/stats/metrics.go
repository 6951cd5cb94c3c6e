package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "walletd"

var (
	// DownloaderHeight is the height of the last block queued for scanning.
	DownloaderHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "downloader",
		Name:      "height",
		Help:      "Height of the last block downloaded from the daemon.",
	})
	// BlocksDownloaded counts blocks queued for scanning.
	BlocksDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "downloader",
		Name:      "blocks_total",
		Help:      "Number of blocks queued for scanning.",
	})
	// QueuedBlocks is the number of downloaded blocks waiting to be scanned.
	QueuedBlocks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "downloader",
		Name:      "queued_blocks",
		Help:      "Number of downloaded blocks waiting to be scanned.",
	})
	// DaemonFailures counts failed sync data requests.
	DaemonFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "downloader",
		Name:      "daemon_failures_total",
		Help:      "Number of failed requests to the daemon.",
	})

	// ScannerHeight is the height of the last scanned block.
	ScannerHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "height",
		Help:      "Height of the last block scanned for transactions.",
	})
	// BlocksProcessed counts scanned blocks.
	BlocksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "blocks_total",
		Help:      "Number of blocks scanned for transactions.",
	})
	// TransactionsFound counts ledger entries committed by the scanner.
	TransactionsFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "transactions_total",
		Help:      "Number of transactions involving the wallet.",
	})
	// Reorgs counts detected chain reorganizations.
	Reorgs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "reorgs_total",
		Help:      "Number of chain reorganizations handled.",
	})
)
