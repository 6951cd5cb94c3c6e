package address

import "errors"

var (
	// ErrInvalidEncoding ...
	ErrInvalidEncoding = errors.New("address is not valid base58")
	// ErrInvalidLength ...
	ErrInvalidLength = errors.New("address has invalid length")
	// ErrInvalidPrefix ...
	ErrInvalidPrefix = errors.New("address prefix is malformed")
	// ErrPrefixMismatch ...
	ErrPrefixMismatch = errors.New("address belongs to another network")
	// ErrInvalidChecksum ...
	ErrInvalidChecksum = errors.New("address checksum mismatch")
	// ErrInvalidKey ...
	ErrInvalidKey = errors.New("address contains an invalid public key")
)
