package application

import "errors"

var (
	// ErrWalletAlreadyExists is returned when creating or importing a wallet
	// over an existing one.
	ErrWalletAlreadyExists = errors.New("wallet already exists")
	// ErrWalletNotFound is returned when opening a wallet that was never
	// created.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWrongPassword ...
	ErrWrongPassword = errors.New("wrong wallet password")
	// ErrWalletNotOpen is returned by every operation requiring an open wallet.
	ErrWalletNotOpen = errors.New("wallet is not open")
	// ErrWalletAlreadyOpen ...
	ErrWalletAlreadyOpen = errors.New("wallet is already open")
	// ErrNullPassword ...
	ErrNullPassword = errors.New("password must not be null")
	// ErrKeyMismatch is returned when importing keys that do not match the
	// given address.
	ErrKeyMismatch = errors.New("keys do not match the address")
	// ErrMissingPrivateKey is returned when the keystore lacks a key listed
	// in the wallet state.
	ErrMissingPrivateKey = errors.New("private key missing from keystore")
	// ErrNullDaemon is returned when building a synchronizer without daemon.
	ErrNullDaemon = errors.New("daemon must not be null")
)
