package dbbadger

import (
	"context"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	walletKey = "wallet"
)

type walletRepository struct {
	store *badgerhold.Store
}

func newWalletRepository(store *badgerhold.Store) domain.WalletRepository {
	return &walletRepository{store}
}

func (r *walletRepository) GetWallet(
	ctx context.Context,
) (*domain.WalletState, error) {
	var state domain.WalletState
	if err := r.store.Get(walletKey, &state); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &state, nil
}

// SaveWallet stores the state stripped of private spend keys.
func (r *walletRepository) SaveWallet(
	ctx context.Context, state *domain.WalletState,
) error {
	if state == nil {
		return domain.ErrNullWalletState
	}
	stripped := state.WithoutPrivateKeys()
	return r.store.Upsert(walletKey, &stripped)
}

func (r *walletRepository) DeleteWallet(ctx context.Context) error {
	if err := r.store.Delete(walletKey, domain.WalletState{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (r *walletRepository) Close() {}
