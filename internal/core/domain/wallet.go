package domain

import (
	"context"

	"github.com/cnwallet/walletd/pkg/cncrypto"
)

// WalletState is everything needed to resume a wallet except its private
// keys, which are kept in the encrypted keystore.
type WalletState struct {
	IsViewWallet  bool
	PublicViewKey cncrypto.PublicKey
	// SubWallets never carry private spend keys once persisted.
	SubWallets   []SubWallet
	Transactions []Transaction
	// DownloaderStatus can be ahead of ScannerStatus after an unclean
	// shutdown.
	DownloaderStatus SynchronizationStatus
	ScannerStatus    SynchronizationStatus
}

// WithoutPrivateKeys returns a copy of the state with every private spend
// key zeroed.
func (w WalletState) WithoutPrivateKeys() WalletState {
	subWallets := make([]SubWallet, 0, len(w.SubWallets))
	for i := range w.SubWallets {
		sw := w.SubWallets[i].clone()
		sw.PrivateSpendKey = cncrypto.SecretKey{}
		subWallets = append(subWallets, sw)
	}
	w.SubWallets = subWallets
	return w
}

// Clone returns a deep copy of the state.
func (w WalletState) Clone() WalletState {
	subWallets := make([]SubWallet, 0, len(w.SubWallets))
	for i := range w.SubWallets {
		subWallets = append(subWallets, w.SubWallets[i].clone())
	}
	txs := make([]Transaction, 0, len(w.Transactions))
	for _, tx := range w.Transactions {
		txs = append(txs, tx.clone())
	}
	w.SubWallets = subWallets
	w.Transactions = txs
	w.DownloaderStatus = *w.DownloaderStatus.Clone()
	w.ScannerStatus = *w.ScannerStatus.Clone()
	return w
}

// WalletRepository persists the state of the single wallet served by the
// daemon.
type WalletRepository interface {
	// GetWallet returns ErrWalletNotFound if nothing was saved yet.
	GetWallet(ctx context.Context) (*WalletState, error)
	SaveWallet(ctx context.Context, state *WalletState) error
	DeleteWallet(ctx context.Context) error
	Close()
}
