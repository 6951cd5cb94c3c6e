package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/internal/core/ports"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const (
	walletDir     = "wallet"
	gcInterval    = 30 * time.Minute
	gcDiscardRate = 0.5
)

type repoManager struct {
	store      *badgerhold.Store
	walletRepo domain.WalletRepository
	quit       chan struct{}
}

// NewRepoManager opens, or creates, the wallet db under baseDbDir. An empty
// baseDbDir makes the db in-memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, walletDir)
	}

	quit := make(chan struct{})
	store, err := createDb(dbDir, logger, quit)
	if err != nil {
		return nil, fmt.Errorf("opening wallet db: %w", err)
	}

	return &repoManager{
		store:      store,
		walletRepo: newWalletRepository(store),
		quit:       quit,
	}, nil
}

func (r *repoManager) WalletRepository() domain.WalletRepository {
	return r.walletRepo
}

func (r *repoManager) Close() {
	close(r.quit)
	r.store.Close()
}

func createDb(
	dbDir string, logger badger.Logger, quit chan struct{},
) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(gcInterval)

		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-quit:
					return
				case <-ticker.C:
					if err := db.Badger().RunValueLogGC(gcDiscardRate); err != nil &&
						err != badger.ErrNoRewrite {
						log.Error(err)
					}
				}
			}
		}()
	}

	return db, nil
}
