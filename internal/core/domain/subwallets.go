package domain

import (
	"sort"
	"sync"
	"time"

	"github.com/cnwallet/walletd/pkg/cncrypto"
)

// SubWallets is the account ledger of a wallet: every subwallet shares the
// private view key and the transaction history. The transaction scanner is
// the only writer; every method is safe for concurrent use by readers.
type SubWallets struct {
	lock *sync.RWMutex

	privateViewKey cncrypto.SecretKey
	isViewWallet   bool

	publicSpendKeys []cncrypto.PublicKey
	subWallets      map[cncrypto.PublicKey]*SubWallet
	transactions    []Transaction
}

// NewSubWallets returns an empty ledger for the given view key.
func NewSubWallets(
	privateViewKey cncrypto.SecretKey, isViewWallet bool,
) *SubWallets {
	return &SubWallets{
		lock:           &sync.RWMutex{},
		privateViewKey: privateViewKey,
		isViewWallet:   isViewWallet,
		subWallets:     make(map[cncrypto.PublicKey]*SubWallet),
	}
}

// RestoreSubWallets rebuilds a ledger from persisted subwallets and
// transactions. Balances are recomputed by replaying the transactions.
func RestoreSubWallets(
	privateViewKey cncrypto.SecretKey, isViewWallet bool,
	subWallets []SubWallet, transactions []Transaction,
) (*SubWallets, error) {
	s := NewSubWallets(privateViewKey, isViewWallet)

	for i := range subWallets {
		sw := subWallets[i].clone()
		if _, ok := s.subWallets[sw.PublicSpendKey]; ok {
			return nil, ErrSubWalletAlreadyExists
		}
		if isViewWallet && !sw.PrivateSpendKey.IsZero() {
			return nil, ErrViewWalletSpendKey
		}
		sw.IsViewWallet = sw.PrivateSpendKey.IsZero()
		sw.Balance = 0
		s.subWallets[sw.PublicSpendKey] = &sw
		s.publicSpendKeys = append(s.publicSpendKeys, sw.PublicSpendKey)
	}

	for _, tx := range transactions {
		s.addTransaction(tx.clone())
	}
	return s, nil
}

// AddSubWallet registers a spend keypair. A zero private spend key makes the
// subwallet view only. A new wallet syncs from now, an imported one from
// the timestamp matching scanHeight.
func (s *SubWallets) AddSubWallet(
	publicSpendKey cncrypto.PublicKey, privateSpendKey cncrypto.SecretKey,
	address string, scanHeight uint64, isNewWallet bool,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subWallets[publicSpendKey]; ok {
		return ErrSubWalletAlreadyExists
	}
	if s.isViewWallet && !privateSpendKey.IsZero() {
		return ErrViewWalletSpendKey
	}

	now := time.Now()
	syncStartTimestamp := ScanHeightToTimestamp(scanHeight, now)
	if isNewWallet {
		syncStartTimestamp = CurrentTimestampAdjusted(now)
	}

	s.subWallets[publicSpendKey] = newSubWallet(
		publicSpendKey, privateSpendKey, address, syncStartTimestamp,
	)
	s.publicSpendKeys = append(s.publicSpendKeys, publicSpendKey)
	return nil
}

// GetMinSyncTimestamp returns the earliest sync start timestamp across all
// subwallets, zero if there are none.
func (s *SubWallets) GetMinSyncTimestamp() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var min uint64
	for i, key := range s.publicSpendKeys {
		ts := s.subWallets[key].SyncStartTimestamp
		if i == 0 || ts < min {
			min = ts
		}
	}
	return min
}

// GenerateAndStoreKeyImage derives and stores the key image of the output
// at outputIndex for the given subwallet. It is a no-op for unknown and
// view only subwallets.
func (s *SubWallets) GenerateAndStoreKeyImage(
	publicSpendKey cncrypto.PublicKey, derivation cncrypto.KeyDerivation,
	outputIndex uint64, blockHeight uint64,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	subWallet, ok := s.subWallets[publicSpendKey]
	if !ok {
		return nil
	}
	return subWallet.generateAndStoreKeyImage(
		derivation, outputIndex, blockHeight,
	)
}

// GetKeyImageOwner returns the public spend key of the subwallet owning
// keyImage, if any.
func (s *SubWallets) GetKeyImageOwner(
	keyImage cncrypto.KeyImage,
) (cncrypto.PublicKey, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, key := range s.publicSpendKeys {
		if _, ok := s.subWallets[key].KeyImages[keyImage]; ok {
			return key, true
		}
	}
	return cncrypto.PublicKey{}, false
}

// AddTransaction appends tx to the history and applies its transfers to
// the balances of the involved subwallets.
func (s *SubWallets) AddTransaction(tx Transaction) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.addTransaction(tx.clone())
}

// InvalidateTransactions rolls back every transaction and key image at or
// above blockHeight, returning the removed transactions.
func (s *SubWallets) InvalidateTransactions(blockHeight uint64) []Transaction {
	s.lock.Lock()
	defer s.lock.Unlock()

	kept := s.transactions[:0]
	removed := make([]Transaction, 0)
	for _, tx := range s.transactions {
		if tx.BlockHeight < blockHeight {
			kept = append(kept, tx)
			continue
		}
		for key, amount := range tx.Transfers {
			if subWallet, ok := s.subWallets[key]; ok {
				subWallet.addTransfer(-amount)
			}
		}
		removed = append(removed, tx)
	}
	s.transactions = kept

	for _, subWallet := range s.subWallets {
		subWallet.removeKeyImagesFrom(blockHeight)
	}
	return removed
}

// PrivateViewKey returns the view key shared by every subwallet.
func (s *SubWallets) PrivateViewKey() cncrypto.SecretKey {
	return s.privateViewKey
}

// IsViewWallet returns whether the whole wallet is view only.
func (s *SubWallets) IsViewWallet() bool {
	return s.isViewWallet
}

// PublicSpendKeys returns the spend keys in registration order.
func (s *SubWallets) PublicSpendKeys() []cncrypto.PublicKey {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]cncrypto.PublicKey(nil), s.publicSpendKeys...)
}

// HasSubWallet returns whether publicSpendKey belongs to the wallet.
func (s *SubWallets) HasSubWallet(publicSpendKey cncrypto.PublicKey) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	_, ok := s.subWallets[publicSpendKey]
	return ok
}

// GetSubWallet returns a copy of the subwallet for publicSpendKey.
func (s *SubWallets) GetSubWallet(
	publicSpendKey cncrypto.PublicKey,
) (*SubWallet, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	subWallet, ok := s.subWallets[publicSpendKey]
	if !ok {
		return nil, ErrSubWalletNotFound
	}
	sw := subWallet.clone()
	return &sw, nil
}

// Addresses returns the address of every subwallet in registration order.
func (s *SubWallets) Addresses() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	addresses := make([]string, 0, len(s.publicSpendKeys))
	for _, key := range s.publicSpendKeys {
		addresses = append(addresses, s.subWallets[key].Address)
	}
	return addresses
}

// GetBalance returns the balance of a single subwallet.
func (s *SubWallets) GetBalance(
	publicSpendKey cncrypto.PublicKey,
) (uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	subWallet, ok := s.subWallets[publicSpendKey]
	if !ok {
		return 0, ErrSubWalletNotFound
	}
	return subWallet.Balance, nil
}

// GetTotalBalance returns the sum of all subwallet balances.
func (s *SubWallets) GetTotalBalance() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var total uint64
	for _, subWallet := range s.subWallets {
		total += subWallet.Balance
	}
	return total
}

// GetTransactions returns the whole history ordered by block height.
func (s *SubWallets) GetTransactions() []Transaction {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.filterTransactions(func(Transaction) bool { return true })
}

// GetTransactionsForSubWallet returns the history subset that moves funds
// of the given subwallet.
func (s *SubWallets) GetTransactionsForSubWallet(
	publicSpendKey cncrypto.PublicKey,
) ([]Transaction, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.subWallets[publicSpendKey]; !ok {
		return nil, ErrSubWalletNotFound
	}
	return s.filterTransactions(func(tx Transaction) bool {
		return tx.Involves(publicSpendKey)
	}), nil
}

// Snapshot returns deep copies of the subwallets, in registration order,
// and of the transaction history.
func (s *SubWallets) Snapshot() ([]SubWallet, []Transaction) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	subWallets := make([]SubWallet, 0, len(s.publicSpendKeys))
	for _, key := range s.publicSpendKeys {
		subWallets = append(subWallets, s.subWallets[key].clone())
	}
	return subWallets, s.filterTransactions(
		func(Transaction) bool { return true },
	)
}

func (s *SubWallets) addTransaction(tx Transaction) {
	for key, amount := range tx.Transfers {
		if subWallet, ok := s.subWallets[key]; ok {
			subWallet.addTransfer(amount)
		}
	}
	s.transactions = append(s.transactions, tx)
}

func (s *SubWallets) filterTransactions(
	filter func(Transaction) bool,
) []Transaction {
	txs := make([]Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if filter(tx) {
			txs = append(txs, tx.clone())
		}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].BlockHeight < txs[j].BlockHeight
	})
	return txs
}
