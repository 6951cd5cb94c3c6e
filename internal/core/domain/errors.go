package domain

import "errors"

var (
	// ErrSubWalletAlreadyExists is returned when registering a spend key twice.
	ErrSubWalletAlreadyExists = errors.New("subwallet already exists")
	// ErrSubWalletNotFound ...
	ErrSubWalletNotFound = errors.New("subwallet not found")
	// ErrViewWalletSpendKey is returned when adding a spendable subwallet to a
	// view only wallet.
	ErrViewWalletSpendKey = errors.New("view wallet can not hold private spend keys")
	// ErrWalletNotFound is returned by repositories when no wallet is stored.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletAlreadyExists ...
	ErrWalletAlreadyExists = errors.New("wallet already exists")
	// ErrNullWalletState ...
	ErrNullWalletState = errors.New("wallet state must not be null")
)
