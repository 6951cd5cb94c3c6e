package cncrypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"
)

const (
	// KeySize is the byte length of every key, hash, derivation and key image.
	KeySize = 32
)

// Hash is a CryptoNote fast hash (Keccak-256).
type Hash [KeySize]byte

// PublicKey is a compressed ed25519 point.
type PublicKey [KeySize]byte

// SecretKey is a scalar reduced modulo the group order.
type SecretKey [KeySize]byte

// KeyDerivation is the shared secret 8·v·R between a transaction key and a
// wallet view key.
type KeyDerivation [KeySize]byte

// KeyImage is the per-output value that identifies when an owned output is
// spent.
type KeyImage [KeySize]byte

func (h Hash) String() string          { return hex.EncodeToString(h[:]) }
func (k PublicKey) String() string     { return hex.EncodeToString(k[:]) }
func (k KeyImage) String() string      { return hex.EncodeToString(k[:]) }
func (k KeyDerivation) String() string { return hex.EncodeToString(k[:]) }

// IsZero returns whether the key has never been set.
func (k SecretKey) IsZero() bool { return k == SecretKey{} }

// FastHash returns the Keccak-256 digest of data.
func FastHash(data ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// HashToScalar hashes data and reduces the digest modulo the group order.
func HashToScalar(data ...[]byte) *edwards25519.Scalar {
	digest := FastHash(data...)
	wide := make([]byte, 64)
	copy(wide, digest[:])
	s, _ := edwards25519.NewScalar().SetUniformBytes(wide)
	return s
}

// GenerateKeys returns a random keypair.
func GenerateKeys() (PublicKey, SecretKey, error) {
	seed := make([]byte, 64)
	if _, err := rand.Read(seed); err != nil {
		return PublicKey{}, SecretKey{}, fmt.Errorf("reading entropy: %w", err)
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(seed)
	if err != nil {
		return PublicKey{}, SecretKey{}, err
	}

	var sec SecretKey
	copy(sec[:], s.Bytes())
	pub, err := SecretKeyToPublicKey(sec)
	if err != nil {
		return PublicKey{}, SecretKey{}, err
	}
	return pub, sec, nil
}

// ViewKeyFromSpendKey deterministically derives the private view key of a
// wallet from its private spend key.
func ViewKeyFromSpendKey(spend SecretKey) (PublicKey, SecretKey, error) {
	var view SecretKey
	copy(view[:], HashToScalar(spend[:]).Bytes())
	pub, err := SecretKeyToPublicKey(view)
	if err != nil {
		return PublicKey{}, SecretKey{}, err
	}
	return pub, view, nil
}

// SecretKeyToPublicKey returns s·G.
func SecretKeyToPublicKey(sec SecretKey) (PublicKey, error) {
	s, err := scalarFromSecretKey(sec)
	if err != nil {
		return PublicKey{}, err
	}
	var pub PublicKey
	copy(pub[:], edwards25519.NewIdentityPoint().ScalarBaseMult(s).Bytes())
	return pub, nil
}

// CheckKey returns whether the public key is a valid point encoding.
func CheckKey(pub PublicKey) bool {
	_, err := edwards25519.NewIdentityPoint().SetBytes(pub[:])
	return err == nil
}

// ParsePublicKey decodes a hex encoded public key.
func ParsePublicKey(str string) (PublicKey, error) {
	var pub PublicKey
	if err := decodeKey(str, pub[:]); err != nil {
		return PublicKey{}, err
	}
	if !CheckKey(pub) {
		return PublicKey{}, ErrInvalidPublicKey
	}
	return pub, nil
}

// ParseSecretKey decodes a hex encoded secret key.
func ParseSecretKey(str string) (SecretKey, error) {
	var sec SecretKey
	if err := decodeKey(str, sec[:]); err != nil {
		return SecretKey{}, err
	}
	if _, err := scalarFromSecretKey(sec); err != nil {
		return SecretKey{}, err
	}
	return sec, nil
}

// ParseHash decodes a hex encoded hash.
func ParseHash(str string) (Hash, error) {
	var h Hash
	if err := decodeKey(str, h[:]); err != nil {
		return Hash{}, err
	}
	return h, nil
}

// ParseKeyImage decodes a hex encoded key image.
func ParseKeyImage(str string) (KeyImage, error) {
	var k KeyImage
	if err := decodeKey(str, k[:]); err != nil {
		return KeyImage{}, err
	}
	return k, nil
}

func decodeKey(str string, out []byte) error {
	buf, err := hex.DecodeString(str)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedKey, err)
	}
	if len(buf) != KeySize {
		return ErrInvalidKeyLength
	}
	copy(out, buf)
	return nil
}

func scalarFromSecretKey(sec SecretKey) (*edwards25519.Scalar, error) {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(sec[:])
	if err != nil {
		return nil, ErrInvalidSecretKey
	}
	return s, nil
}
