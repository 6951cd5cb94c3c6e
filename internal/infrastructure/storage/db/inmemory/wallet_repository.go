package inmemory

import (
	"context"
	"sync"

	"github.com/cnwallet/walletd/internal/core/domain"
)

// WalletRepository keeps a copy of the last saved state in memory.
type WalletRepository struct {
	locker *sync.RWMutex
	state  *domain.WalletState
}

// NewWalletRepository returns an empty WalletRepository.
func NewWalletRepository() domain.WalletRepository {
	return &WalletRepository{locker: &sync.RWMutex{}}
}

func (r *WalletRepository) GetWallet(
	ctx context.Context,
) (*domain.WalletState, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	if r.state == nil {
		return nil, domain.ErrWalletNotFound
	}
	state := r.state.Clone()
	return &state, nil
}

func (r *WalletRepository) SaveWallet(
	ctx context.Context, state *domain.WalletState,
) error {
	if state == nil {
		return domain.ErrNullWalletState
	}

	r.locker.Lock()
	defer r.locker.Unlock()

	stripped := state.WithoutPrivateKeys().Clone()
	r.state = &stripped
	return nil
}

func (r *WalletRepository) DeleteWallet(ctx context.Context) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.state = nil
	return nil
}

func (r *WalletRepository) Close() {}
