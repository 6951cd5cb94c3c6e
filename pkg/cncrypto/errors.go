package cncrypto

import "errors"

var (
	// ErrMalformedKey is returned when a key is not valid hex.
	ErrMalformedKey = errors.New("malformed key")
	// ErrInvalidKeyLength is returned when a decoded key is not 32 bytes long.
	ErrInvalidKeyLength = errors.New("key must be 32 bytes long")
	// ErrInvalidPublicKey is returned when a public key is not a valid point.
	ErrInvalidPublicKey = errors.New("public key is not a valid curve point")
	// ErrInvalidSecretKey is returned when a secret key is not a reduced scalar.
	ErrInvalidSecretKey = errors.New("secret key is not a reduced scalar")
	// ErrInvalidDerivation is returned when a key derivation does not decode
	// to a point.
	ErrInvalidDerivation = errors.New("key derivation is not a valid curve point")
)
