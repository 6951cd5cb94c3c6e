package cncrypto

import (
	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
)

// Montgomery curve coefficient of curve25519.
const montgomeryA = 486662

var (
	feOne    = new(field.Element).One()
	feA      = new(field.Element).Mult32(feOne, montgomeryA)
	feMinusA = new(field.Element).Negate(feA)
	// -A²
	feMinusA2 = new(field.Element).Negate(new(field.Element).Square(feA))
	feSqrtM1  = sqrtOf(new(field.Element).Negate(feOne))

	feFFFB1 = sqrtOf(scaledAAplus2(-2, nil))
	feFFFB2 = sqrtOf(scaledAAplus2(2, nil))
	feFFFB3 = sqrtOf(scaledAAplus2(-1, feSqrtM1))
	feFFFB4 = sqrtOf(scaledAAplus2(1, feSqrtM1))
)

// scaledAAplus2 returns k·m·A·(A+2), m defaulting to one.
func scaledAAplus2(k int32, m *field.Element) *field.Element {
	aPlus2 := new(field.Element).Add(feA, new(field.Element).Mult32(feOne, 2))
	out := new(field.Element).Multiply(feA, aPlus2)
	if m != nil {
		out.Multiply(out, m)
	}
	abs := k
	if abs < 0 {
		abs = -abs
	}
	out.Mult32(out, uint32(abs))
	if k < 0 {
		out.Negate(out)
	}
	return out
}

// The sign of these roots is irrelevant because the sign of the resulting
// x coordinate is forced afterwards.
func sqrtOf(u *field.Element) *field.Element {
	r, _ := new(field.Element).SqrtRatio(u, feOne)
	return r
}

// HashToPoint maps a public key to a curve point in the prime order
// subgroup: 8·map(Keccak(P)).
func HashToPoint(pub PublicKey) (*edwards25519.Point, error) {
	digest := FastHash(pub[:])
	point, err := pointFromFieldBytes(digest)
	if err != nil {
		return nil, err
	}
	return point.MultByCofactor(point), nil
}

// pointFromFieldBytes interprets 32 bytes as a field element (reduced, all
// 256 bits included) and maps it onto the curve with the Elligator-like map
// used by CryptoNote for key images.
func pointFromFieldBytes(digest Hash) (*edwards25519.Point, error) {
	buf := digest
	highBit := buf[31] >> 7
	u, err := new(field.Element).SetBytes(buf[:])
	if err != nil {
		return nil, err
	}
	if highBit == 1 {
		// 2^255 = 19 mod p
		u.Add(u, new(field.Element).Mult32(feOne, 19))
	}

	v := new(field.Element).Square(u)
	v.Add(v, v)
	w := new(field.Element).Add(v, feOne)
	x := new(field.Element).Square(w)
	y := new(field.Element).Multiply(feMinusA2, v)
	x.Add(x, y)

	rX := divPowM1(w, x)
	y.Square(rX)
	x.Multiply(y, x)
	y.Subtract(w, x)
	z := new(field.Element).Set(feMinusA)

	var sign int
	if y.Equal(new(field.Element).Zero()) == 0 {
		y.Add(w, x)
		if y.Equal(new(field.Element).Zero()) == 0 {
			x.Multiply(x, feSqrtM1)
			y.Subtract(w, x)
			if y.Equal(new(field.Element).Zero()) == 0 {
				rX.Multiply(rX, feFFFB3)
			} else {
				rX.Multiply(rX, feFFFB4)
			}
			sign = 1
		} else {
			rX.Multiply(rX, feFFFB1)
		}
	} else {
		rX.Multiply(rX, feFFFB2)
	}
	if sign == 0 {
		rX.Multiply(rX, u)
		z.Multiply(z, v)
	}

	if rX.IsNegative() != sign {
		rX.Negate(rX)
	}

	rZ := new(field.Element).Add(z, w)
	rY := new(field.Element).Subtract(z, w)
	rX.Multiply(rX, rZ)

	// Projective (X:Y:Z) to compressed affine encoding.
	zInv := new(field.Element).Invert(rZ)
	affineX := new(field.Element).Multiply(rX, zInv)
	affineY := new(field.Element).Multiply(rY, zInv)
	enc := affineY.Bytes()
	enc[31] |= byte(affineX.IsNegative() << 7)

	return edwards25519.NewIdentityPoint().SetBytes(enc)
}

// divPowM1 returns (u/v)^((p+3)/8) as u·v³·(u·v⁷)^((p-5)/8).
func divPowM1(u, v *field.Element) *field.Element {
	v3 := new(field.Element).Square(v)
	v3.Multiply(v3, v)
	uv7 := new(field.Element).Square(v3)
	uv7.Multiply(uv7, v)
	uv7.Multiply(uv7, u)

	out := new(field.Element).Pow22523(uv7)
	out.Multiply(out, v3)
	out.Multiply(out, u)
	return out
}
