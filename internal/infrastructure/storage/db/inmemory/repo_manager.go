package inmemory

import (
	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/internal/core/ports"
)

type repoManager struct {
	walletRepo domain.WalletRepository
}

func NewRepoManager() ports.RepoManager {
	return &repoManager{
		walletRepo: NewWalletRepository(),
	}
}

func (r *repoManager) WalletRepository() domain.WalletRepository {
	return r.walletRepo
}

func (r *repoManager) Close() {}
