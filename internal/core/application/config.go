package application

import (
	"fmt"
	"time"

	"github.com/cnwallet/walletd/internal/core/ports"
	"github.com/cnwallet/walletd/internal/infrastructure/daemon/turtlecoind"
	dbbadger "github.com/cnwallet/walletd/internal/infrastructure/storage/db/badger"
	"github.com/cnwallet/walletd/internal/infrastructure/storage/db/inmemory"
	"github.com/cnwallet/walletd/pkg/securestore"
	log "github.com/sirupsen/logrus"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"

	keystoreFilename = "keystore.db"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

// Config lazily builds the services of the daemon. Daemon can be set to
// skip the creation of the http client from DaemonOpts.
type Config struct {
	DBType      string
	DBDir       string
	KeystoreDir string

	Daemon        ports.Daemon
	DaemonOpts    turtlecoind.Options
	AddressPrefix uint64
	SyncConfig    SyncConfig
	SaveInterval  time.Duration

	repo     ports.RepoManager
	keystore securestore.SecureStorage
	wallet   WalletService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("unsupported db type %s", c.DBType)
	}
	if c.KeystoreDir == "" {
		return fmt.Errorf("missing keystore dir")
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.keystoreService(); err != nil {
		return err
	}
	if _, err := c.walletService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) Keystore() securestore.SecureStorage {
	keystore, _ := c.keystoreService()
	return keystore
}

func (c *Config) WalletService() WalletService {
	svc, _ := c.walletService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			repoManager, err := dbbadger.NewRepoManager(c.DBDir, log.New())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		default:
			c.repo = inmemory.NewRepoManager()
		}
	}
	return c.repo, nil
}

func (c *Config) keystoreService() (securestore.SecureStorage, error) {
	if c.keystore == nil {
		keystore, err := securestore.NewBoltSecureStorage(
			c.KeystoreDir, keystoreFilename,
		)
		if err != nil {
			return nil, err
		}
		c.keystore = keystore
	}
	return c.keystore, nil
}

func (c *Config) daemon() (ports.Daemon, error) {
	if c.Daemon == nil {
		daemon, err := turtlecoind.NewService(c.DaemonOpts)
		if err != nil {
			return nil, err
		}
		c.Daemon = daemon
	}
	return c.Daemon, nil
}

func (c *Config) walletService() (WalletService, error) {
	if c.wallet == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		keystore, err := c.keystoreService()
		if err != nil {
			return nil, err
		}
		daemon, err := c.daemon()
		if err != nil {
			return nil, err
		}

		wallet, err := NewWalletService(WalletServiceOpts{
			Repository:    repo.WalletRepository(),
			Keystore:      keystore,
			Daemon:        daemon,
			AddressPrefix: c.AddressPrefix,
			SyncConfig:    c.SyncConfig,
			SaveInterval:  c.SaveInterval,
		})
		if err != nil {
			return nil, err
		}
		c.wallet = wallet
	}
	return c.wallet, nil
}

// Close releases the storage held by the services.
func (c *Config) Close() {
	if c.keystore != nil {
		c.keystore.Close()
	}
	if c.repo != nil {
		c.repo.Close()
	}
}
