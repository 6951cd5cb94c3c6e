package application

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/internal/core/ports"
	"github.com/cnwallet/walletd/pkg/address"
	"github.com/cnwallet/walletd/pkg/cncrypto"
	"github.com/cnwallet/walletd/pkg/securestore"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultSaveInterval is the period of the wallet autosave.
	DefaultSaveInterval = 5 * time.Minute

	privateViewKeyID   = "view"
	privateSpendKeyTag = "spend/"
)

// WalletService manages the lifecycle of the single wallet served by the
// daemon: creation, import, open, periodic save and close. An open wallet
// is always syncing.
type WalletService interface {
	CreateWallet(ctx context.Context, password string) (*WalletInfo, error)
	ImportWallet(
		ctx context.Context, password string,
		privateSpendKey, privateViewKey string, scanHeight uint64,
	) (*WalletInfo, error)
	ImportViewWallet(
		ctx context.Context, password string,
		privateViewKey, addr string, scanHeight uint64,
	) (*WalletInfo, error)
	OpenWallet(ctx context.Context, password string) error
	// Save persists the wallet state. It is also run periodically while the
	// wallet is open.
	Save(ctx context.Context) error
	// Close stops sync, saves and locks the keystore.
	Close(ctx context.Context) error
	IsOpen() bool

	Status(ctx context.Context) (*WalletStatus, error)
	GetAddresses(ctx context.Context) ([]string, error)
	GetTotalBalance(ctx context.Context) (uint64, error)
	GetBalances(ctx context.Context) ([]SubWalletBalance, error)
	GetTransactions(ctx context.Context) ([]domain.Transaction, error)
	GetTransactionsForAddress(
		ctx context.Context, addr string,
	) ([]domain.Transaction, error)
	GetPrivateViewKey(ctx context.Context) (string, error)
	GetSpendKeys(ctx context.Context, addr string) (*SpendKeys, error)
	// GetKeyImageOwner returns the address owning the given key image.
	GetKeyImageOwner(ctx context.Context, keyImage string) (string, bool, error)
}

type openWallet struct {
	subWallets   *domain.SubWallets
	synchronizer WalletSynchronizer
	quit         chan struct{}
	wg           *sync.WaitGroup
}

type walletService struct {
	repo          domain.WalletRepository
	keystore      securestore.SecureStorage
	daemon        ports.Daemon
	addressPrefix uint64
	syncCfg       SyncConfig
	saveInterval  time.Duration

	lock   *sync.RWMutex
	wallet *openWallet
}

// WalletServiceOpts are the dependencies of the wallet service.
type WalletServiceOpts struct {
	Repository    domain.WalletRepository
	Keystore      securestore.SecureStorage
	Daemon        ports.Daemon
	AddressPrefix uint64
	SyncConfig    SyncConfig
	SaveInterval  time.Duration
}

func NewWalletService(opts WalletServiceOpts) (WalletService, error) {
	return newWalletService(opts)
}

func newWalletService(opts WalletServiceOpts) (*walletService, error) {
	if opts.Daemon == nil {
		return nil, ErrNullDaemon
	}
	if opts.Repository == nil {
		return nil, fmt.Errorf("missing wallet repository")
	}
	if opts.Keystore == nil {
		return nil, fmt.Errorf("missing keystore")
	}
	if opts.AddressPrefix == 0 {
		opts.AddressPrefix = address.TurtleCoinPrefix
	}
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = DefaultSaveInterval
	}

	return &walletService{
		repo:          opts.Repository,
		keystore:      opts.Keystore,
		daemon:        opts.Daemon,
		addressPrefix: opts.AddressPrefix,
		syncCfg:       opts.SyncConfig,
		saveInterval:  opts.SaveInterval,
		lock:          &sync.RWMutex{},
	}, nil
}

func (w *walletService) CreateWallet(
	ctx context.Context, password string,
) (*WalletInfo, error) {
	spendPub, spendSec, err := cncrypto.GenerateKeys()
	if err != nil {
		return nil, err
	}
	viewPub, viewSec, err := cncrypto.ViewKeyFromSpendKey(spendSec)
	if err != nil {
		return nil, err
	}

	return w.initWallet(
		ctx, password, viewPub, viewSec, spendPub, spendSec, 0, true,
	)
}

func (w *walletService) ImportWallet(
	ctx context.Context, password string,
	privateSpendKey, privateViewKey string, scanHeight uint64,
) (*WalletInfo, error) {
	spendSec, err := cncrypto.ParseSecretKey(privateSpendKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private spend key: %w", err)
	}
	viewSec, err := cncrypto.ParseSecretKey(privateViewKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private view key: %w", err)
	}
	spendPub, err := cncrypto.SecretKeyToPublicKey(spendSec)
	if err != nil {
		return nil, fmt.Errorf("invalid private spend key: %w", err)
	}
	viewPub, err := cncrypto.SecretKeyToPublicKey(viewSec)
	if err != nil {
		return nil, fmt.Errorf("invalid private view key: %w", err)
	}

	return w.initWallet(
		ctx, password, viewPub, viewSec, spendPub, spendSec, scanHeight, false,
	)
}

func (w *walletService) ImportViewWallet(
	ctx context.Context, password string,
	privateViewKey, addr string, scanHeight uint64,
) (*WalletInfo, error) {
	viewSec, err := cncrypto.ParseSecretKey(privateViewKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private view key: %w", err)
	}
	viewPub, err := cncrypto.SecretKeyToPublicKey(viewSec)
	if err != nil {
		return nil, fmt.Errorf("invalid private view key: %w", err)
	}
	decoded, err := address.Decode(addr, w.addressPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	if decoded.PublicViewKey != viewPub {
		return nil, ErrKeyMismatch
	}

	return w.initWallet(
		ctx, password, viewPub, viewSec,
		decoded.PublicSpendKey, cncrypto.SecretKey{}, scanHeight, false,
	)
}

// initWallet stores the keys of a new wallet, saves its initial state and
// opens it. A zero spendSec makes a view wallet.
func (w *walletService) initWallet(
	ctx context.Context, password string,
	viewPub cncrypto.PublicKey, viewSec cncrypto.SecretKey,
	spendPub cncrypto.PublicKey, spendSec cncrypto.SecretKey,
	scanHeight uint64, isNewWallet bool,
) (*WalletInfo, error) {
	if len(password) <= 0 {
		return nil, ErrNullPassword
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if w.wallet != nil {
		return nil, ErrWalletAlreadyOpen
	}
	if err := w.checkNoWallet(ctx); err != nil {
		return nil, err
	}

	isViewWallet := spendSec.IsZero()
	addr := address.Address{
		Prefix:         w.addressPrefix,
		PublicSpendKey: spendPub,
		PublicViewKey:  viewPub,
	}.Encode()

	subWallets := domain.NewSubWallets(viewSec, isViewWallet)
	if err := subWallets.AddSubWallet(
		spendPub, spendSec, addr, scanHeight, isNewWallet,
	); err != nil {
		return nil, err
	}

	if err := w.keystore.CreateUnlock([]byte(password)); err != nil {
		return nil, err
	}

	state := &domain.WalletState{
		IsViewWallet:     isViewWallet,
		PublicViewKey:    viewPub,
		DownloaderStatus: *domain.NewSynchronizationStatus(),
		ScannerStatus:    *domain.NewSynchronizationStatus(),
	}
	state.SubWallets, state.Transactions = subWallets.Snapshot()

	if err := w.storeWallet(ctx, state, viewSec, spendPub, spendSec); err != nil {
		// Leave no half created wallet behind.
		if resetErr := w.keystore.Reset(); resetErr != nil {
			log.WithError(resetErr).Warn("wallet service: failed to reset keystore")
		}
		return nil, err
	}

	w.open(subWallets, state)

	sw, _ := subWallets.GetSubWallet(spendPub)
	log.WithField("address", addr).Info("wallet service: wallet initialized")

	return &WalletInfo{
		Address:            addr,
		IsViewWallet:       isViewWallet,
		SyncStartTimestamp: sw.SyncStartTimestamp,
	}, nil
}

// storeWallet writes the private keys to the unlocked keystore and the
// initial state to the repository.
func (w *walletService) storeWallet(
	ctx context.Context, state *domain.WalletState,
	viewSec cncrypto.SecretKey,
	spendPub cncrypto.PublicKey, spendSec cncrypto.SecretKey,
) error {
	if err := w.keystore.Put([]byte(privateViewKeyID), viewSec[:]); err != nil {
		return err
	}
	if !state.IsViewWallet {
		if err := w.keystore.Put(spendKeyID(spendPub), spendSec[:]); err != nil {
			return err
		}
	}
	return w.repo.SaveWallet(ctx, state)
}

func (w *walletService) OpenWallet(ctx context.Context, password string) error {
	if len(password) <= 0 {
		return ErrNullPassword
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if w.wallet != nil {
		return ErrWalletAlreadyOpen
	}

	state, err := w.repo.GetWallet(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return ErrWalletNotFound
		}
		return err
	}

	// An uninitialized keystore would take the password as a new one.
	initialized, err := w.keystore.IsInitialized()
	if err != nil {
		return err
	}
	if !initialized {
		return ErrWalletNotFound
	}
	if err := w.keystore.CreateUnlock([]byte(password)); err != nil {
		if errors.Is(err, securestore.ErrInvalidPassword) {
			return ErrWrongPassword
		}
		return err
	}

	subWallets, err := w.restoreSubWallets(state)
	if err != nil {
		w.keystore.Lock()
		return err
	}

	w.open(subWallets, state)

	log.WithField("height", state.ScannerStatus.GetHeight()).Info(
		"wallet service: wallet opened",
	)
	return nil
}

func (w *walletService) Save(ctx context.Context) error {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.wallet == nil {
		return ErrWalletNotOpen
	}
	return w.save(ctx, w.wallet)
}

func (w *walletService) Close(ctx context.Context) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.wallet == nil {
		return ErrWalletNotOpen
	}

	wallet := w.wallet
	close(wallet.quit)
	wallet.wg.Wait()
	wallet.synchronizer.Stop()

	err := w.save(ctx, wallet)

	w.keystore.Lock()
	w.wallet = nil

	log.Info("wallet service: wallet closed")
	return err
}

func (w *walletService) IsOpen() bool {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.wallet != nil
}

func (w *walletService) Status(ctx context.Context) (*WalletStatus, error) {
	wallet, err := w.getWallet()
	if err != nil {
		return nil, err
	}

	info, err := w.daemon.GetInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get daemon info: %w", err)
	}

	return &WalletStatus{
		WalletHeight:     wallet.synchronizer.WalletHeight(),
		DownloaderHeight: wallet.synchronizer.DownloaderHeight(),
		DaemonHeight:     info.Height,
		NetworkHeight:    info.NetworkHeight,
		IsSyncing:        wallet.synchronizer.IsRunning(),
	}, nil
}

func (w *walletService) GetAddresses(ctx context.Context) ([]string, error) {
	wallet, err := w.getWallet()
	if err != nil {
		return nil, err
	}
	return wallet.subWallets.Addresses(), nil
}

func (w *walletService) GetTotalBalance(ctx context.Context) (uint64, error) {
	wallet, err := w.getWallet()
	if err != nil {
		return 0, err
	}
	return wallet.subWallets.GetTotalBalance(), nil
}

func (w *walletService) GetBalances(
	ctx context.Context,
) ([]SubWalletBalance, error) {
	wallet, err := w.getWallet()
	if err != nil {
		return nil, err
	}

	keys := wallet.subWallets.PublicSpendKeys()
	balances := make([]SubWalletBalance, 0, len(keys))
	for _, key := range keys {
		sw, err := wallet.subWallets.GetSubWallet(key)
		if err != nil {
			return nil, err
		}
		balances = append(balances, SubWalletBalance{
			Address:        sw.Address,
			PublicSpendKey: key.String(),
			Balance:        sw.Balance,
		})
	}
	return balances, nil
}

func (w *walletService) GetTransactions(
	ctx context.Context,
) ([]domain.Transaction, error) {
	wallet, err := w.getWallet()
	if err != nil {
		return nil, err
	}
	return wallet.subWallets.GetTransactions(), nil
}

func (w *walletService) GetTransactionsForAddress(
	ctx context.Context, addr string,
) ([]domain.Transaction, error) {
	wallet, err := w.getWallet()
	if err != nil {
		return nil, err
	}
	decoded, err := address.Decode(addr, w.addressPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	return wallet.subWallets.GetTransactionsForSubWallet(decoded.PublicSpendKey)
}

func (w *walletService) GetPrivateViewKey(ctx context.Context) (string, error) {
	wallet, err := w.getWallet()
	if err != nil {
		return "", err
	}
	key := wallet.subWallets.PrivateViewKey()
	return hex.EncodeToString(key[:]), nil
}

func (w *walletService) GetSpendKeys(
	ctx context.Context, addr string,
) (*SpendKeys, error) {
	wallet, err := w.getWallet()
	if err != nil {
		return nil, err
	}
	decoded, err := address.Decode(addr, w.addressPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	sw, err := wallet.subWallets.GetSubWallet(decoded.PublicSpendKey)
	if err != nil {
		return nil, err
	}

	keys := &SpendKeys{PublicKey: sw.PublicSpendKey.String()}
	if !sw.IsViewWallet {
		keys.PrivateKey = hex.EncodeToString(sw.PrivateSpendKey[:])
	}
	return keys, nil
}

func (w *walletService) GetKeyImageOwner(
	ctx context.Context, keyImage string,
) (string, bool, error) {
	wallet, err := w.getWallet()
	if err != nil {
		return "", false, err
	}
	ki, err := cncrypto.ParseKeyImage(keyImage)
	if err != nil {
		return "", false, err
	}

	owner, ok := wallet.subWallets.GetKeyImageOwner(ki)
	if !ok {
		return "", false, nil
	}
	sw, err := wallet.subWallets.GetSubWallet(owner)
	if err != nil {
		return "", false, err
	}
	return sw.Address, true, nil
}

// open starts sync and autosave. Must be called with the lock held.
func (w *walletService) open(
	subWallets *domain.SubWallets, state *domain.WalletState,
) {
	downloaderStatus := state.DownloaderStatus.Clone()
	scannerStatus := state.ScannerStatus.Clone()
	synchronizer := NewWalletSynchronizer(
		w.daemon, subWallets, downloaderStatus, scannerStatus, w.syncCfg,
	)

	wallet := &openWallet{
		subWallets:   subWallets,
		synchronizer: synchronizer,
		quit:         make(chan struct{}),
		wg:           &sync.WaitGroup{},
	}
	synchronizer.Start()

	wallet.wg.Add(1)
	go w.autosave(wallet)

	w.wallet = wallet
}

func (w *walletService) autosave(wallet *openWallet) {
	defer wallet.wg.Done()

	ticker := time.NewTicker(w.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wallet.quit:
			return
		case <-ticker.C:
			if err := w.save(context.Background(), wallet); err != nil {
				log.WithError(err).Warn("wallet service: autosave failed")
				continue
			}
			log.Debug("wallet service: wallet saved")
		}
	}
}

func (w *walletService) save(ctx context.Context, wallet *openWallet) error {
	snapshot := wallet.synchronizer.Snapshot()
	return w.repo.SaveWallet(ctx, &domain.WalletState{
		IsViewWallet:     wallet.subWallets.IsViewWallet(),
		PublicViewKey:    mustPublicKey(wallet.subWallets.PrivateViewKey()),
		SubWallets:       snapshot.SubWallets,
		Transactions:     snapshot.Transactions,
		DownloaderStatus: snapshot.DownloaderStatus,
		ScannerStatus:    snapshot.ScannerStatus,
	})
}

// restoreSubWallets rebuilds the ledger of state with the private keys
// read from the unlocked keystore.
func (w *walletService) restoreSubWallets(
	state *domain.WalletState,
) (*domain.SubWallets, error) {
	viewKey, err := w.getSecretKey([]byte(privateViewKeyID))
	if err != nil {
		return nil, err
	}
	viewPub, err := cncrypto.SecretKeyToPublicKey(viewKey)
	if err != nil {
		return nil, err
	}
	if viewPub != state.PublicViewKey {
		return nil, ErrKeyMismatch
	}

	subWallets := make([]domain.SubWallet, 0, len(state.SubWallets))
	for _, sw := range state.SubWallets {
		if !state.IsViewWallet {
			spendKey, err := w.getSecretKey(spendKeyID(sw.PublicSpendKey))
			if err != nil {
				return nil, err
			}
			sw.PrivateSpendKey = spendKey
		}
		subWallets = append(subWallets, sw)
	}

	return domain.RestoreSubWallets(
		viewKey, state.IsViewWallet, subWallets, state.Transactions,
	)
}

func (w *walletService) getSecretKey(id []byte) (cncrypto.SecretKey, error) {
	var key cncrypto.SecretKey

	buf, err := w.keystore.Get(id)
	if err != nil {
		if errors.Is(err, securestore.ErrDataNotFound) {
			return key, fmt.Errorf("%w: %s", ErrMissingPrivateKey, id)
		}
		return key, err
	}
	if len(buf) != len(key) {
		return key, fmt.Errorf("%w: %s", cncrypto.ErrInvalidKeyLength, id)
	}
	copy(key[:], buf)
	return key, nil
}

func (w *walletService) checkNoWallet(ctx context.Context) error {
	_, err := w.repo.GetWallet(ctx)
	if err == nil {
		return ErrWalletAlreadyExists
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return err
	}

	initialized, err := w.keystore.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return ErrWalletAlreadyExists
	}
	return nil
}

func (w *walletService) getWallet() (*openWallet, error) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.wallet == nil {
		return nil, ErrWalletNotOpen
	}
	return w.wallet, nil
}

func spendKeyID(key cncrypto.PublicKey) []byte {
	return []byte(privateSpendKeyTag + key.String())
}

// mustPublicKey is only used on view keys already validated on open.
func mustPublicKey(key cncrypto.SecretKey) cncrypto.PublicKey {
	pub, err := cncrypto.SecretKeyToPublicKey(key)
	if err != nil {
		log.Panic(err)
	}
	return pub
}
