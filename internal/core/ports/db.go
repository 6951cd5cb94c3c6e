package ports

import "github.com/cnwallet/walletd/internal/core/domain"

// RepoManager gives access to the repositories of the wallet daemon.
type RepoManager interface {
	WalletRepository() domain.WalletRepository
	Close()
}
