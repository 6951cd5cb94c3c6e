package ports

import (
	"context"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/pkg/cncrypto"
)

// DaemonInfo reports the chain heights known to a daemon.
type DaemonInfo struct {
	// Height is the height of the top block stored by the daemon, that is
	// its block count minus one.
	Height uint64
	// NetworkHeight is the highest height the daemon has heard of from its
	// peers.
	NetworkHeight uint64
}

// Daemon is the query interface of a CryptoNote node consumed by the wallet.
type Daemon interface {
	// GetWalletSyncData returns the blocks following the first of the given
	// checkpoints the daemon recognizes, or the blocks mined after
	// startTimestamp if none is recognized. Blocks are height ascending and
	// an empty result means the wallet is at the tip.
	GetWalletSyncData(
		ctx context.Context,
		blockHashCheckpoints []cncrypto.Hash,
		startTimestamp uint64,
	) ([]domain.RawBlock, error)
	// GetInfo returns the local and network heights of the daemon.
	GetInfo(ctx context.Context) (*DaemonInfo, error)
}
