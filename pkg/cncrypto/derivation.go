package cncrypto

import (
	"encoding/binary"

	"filippo.io/edwards25519"
)

// GenerateKeyDerivation computes 8·v·R from a transaction public key R and
// a private view key v.
func GenerateKeyDerivation(
	txPublicKey PublicKey, viewKey SecretKey,
) (KeyDerivation, error) {
	point, err := edwards25519.NewIdentityPoint().SetBytes(txPublicKey[:])
	if err != nil {
		return KeyDerivation{}, ErrInvalidPublicKey
	}
	v, err := scalarFromSecretKey(viewKey)
	if err != nil {
		return KeyDerivation{}, err
	}

	shared := edwards25519.NewIdentityPoint().ScalarMult(v, point)
	shared.MultByCofactor(shared)

	var derivation KeyDerivation
	copy(derivation[:], shared.Bytes())
	return derivation, nil
}

// DerivationToScalar returns Hs(derivation || varint(outputIndex)).
func DerivationToScalar(
	derivation KeyDerivation, outputIndex uint64,
) *edwards25519.Scalar {
	index := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(index, outputIndex)
	return HashToScalar(derivation[:], index[:n])
}

// DerivePublicKey returns the one-time output key Hs(D, i)·G + S.
func DerivePublicKey(
	derivation KeyDerivation, outputIndex uint64, spendKey PublicKey,
) (PublicKey, error) {
	base, err := edwards25519.NewIdentityPoint().SetBytes(spendKey[:])
	if err != nil {
		return PublicKey{}, ErrInvalidPublicKey
	}

	s := DerivationToScalar(derivation, outputIndex)
	point := edwards25519.NewIdentityPoint().ScalarBaseMult(s)
	point.Add(point, base)

	var out PublicKey
	copy(out[:], point.Bytes())
	return out, nil
}

// UnderivePublicKey recovers the spend key S = P - Hs(D, i)·G that a one-time
// output key P was derived from.
func UnderivePublicKey(
	derivation KeyDerivation, outputIndex uint64, outputKey PublicKey,
) (PublicKey, error) {
	point, err := edwards25519.NewIdentityPoint().SetBytes(outputKey[:])
	if err != nil {
		return PublicKey{}, ErrInvalidPublicKey
	}

	s := DerivationToScalar(derivation, outputIndex)
	point.Subtract(point, edwards25519.NewIdentityPoint().ScalarBaseMult(s))

	var out PublicKey
	copy(out[:], point.Bytes())
	return out, nil
}

// DeriveSecretKey returns the one-time output secret Hs(D, i) + s.
func DeriveSecretKey(
	derivation KeyDerivation, outputIndex uint64, spendKey SecretKey,
) (SecretKey, error) {
	base, err := scalarFromSecretKey(spendKey)
	if err != nil {
		return SecretKey{}, err
	}

	s := DerivationToScalar(derivation, outputIndex)
	s.Add(s, base)

	var out SecretKey
	copy(out[:], s.Bytes())
	return out, nil
}

// GenerateKeyImage returns x·Hp(P) for the one-time keypair (P, x).
func GenerateKeyImage(pub PublicKey, sec SecretKey) (KeyImage, error) {
	x, err := scalarFromSecretKey(sec)
	if err != nil {
		return KeyImage{}, err
	}
	hp, err := HashToPoint(pub)
	if err != nil {
		return KeyImage{}, err
	}

	image := edwards25519.NewIdentityPoint().ScalarMult(x, hp)

	var out KeyImage
	copy(out[:], image.Bytes())
	return out, nil
}

// DeriveKeyImage derives the one-time keypair of an owned output and
// returns its key image.
func DeriveKeyImage(
	derivation KeyDerivation, outputIndex uint64,
	publicSpendKey PublicKey, privateSpendKey SecretKey,
) (KeyImage, error) {
	pub, err := DerivePublicKey(derivation, outputIndex, publicSpendKey)
	if err != nil {
		return KeyImage{}, err
	}
	sec, err := DeriveSecretKey(derivation, outputIndex, privateSpendKey)
	if err != nil {
		return KeyImage{}, err
	}
	return GenerateKeyImage(pub, sec)
}
