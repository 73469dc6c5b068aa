package crypto

import (
	"errors"

	"filippo.io/edwards25519"
)

// RingSignatureElement is one (c, r) scalar pair of a ring signature,
// one per ring member.
type RingSignatureElement struct {
	C [32]byte
	R [32]byte
}

// RingSignature is a traceable ring signature over a prefix hash and a set
// of candidate one-time public keys, produced by generate_ring_signature
// and checked by check_ring_signature.
type RingSignature []RingSignatureElement

var (
	// ErrRingTooSmall is returned when a ring signature is requested or
	// checked over fewer than one member.
	ErrRingTooSmall = errors.New("ring must contain at least one member")

	// ErrRealIndexOutOfRange is returned when the signer's claimed position
	// in the ring does not index into the provided public key set.
	ErrRealIndexOutOfRange = errors.New("real index out of range of ring members")
)

// GenerateRingSignature produces a traceable ring signature proving
// knowledge of the secret key behind ring[realIndex] and behind the given
// key image, without revealing which index is real.
func GenerateRingSignature(prefixHash Hash, image KeyImage, ring []PublicKey, secret SecretKey, realIndex int) (RingSignature, error) {
	n := len(ring)
	if n == 0 {
		return nil, ErrRingTooSmall
	}
	if realIndex < 0 || realIndex >= n {
		return nil, ErrRealIndexOutOfRange
	}

	points := make([]*edwards25519.Point, n)
	for i, pk := range ring {
		p, err := pointFromPublicKey(pk)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	imagePoint, err := edwards25519.NewIdentityPoint().SetBytes(image[:])
	if err != nil {
		return nil, errors.New("invalid key image")
	}
	secretScalar, err := scalarFromSecretKey(secret)
	if err != nil {
		return nil, err
	}

	c := make([]*edwards25519.Scalar, n)
	r := make([]*edwards25519.Scalar, n)
	L := make([]*edwards25519.Point, n)
	R := make([]*edwards25519.Point, n)

	sumOfOthers := edwards25519.NewScalar()
	for i := 0; i < n; i++ {
		if i == realIndex {
			continue
		}
		c[i] = randomScalar()
		r[i] = randomScalar()

		rG := edwards25519.NewIdentityPoint().ScalarBaseMult(r[i])
		cP := edwards25519.NewIdentityPoint().ScalarMult(c[i], points[i])
		L[i] = edwards25519.NewIdentityPoint().Add(rG, cP)

		hp := hashToPoint(ring[i][:])
		rHp := edwards25519.NewIdentityPoint().ScalarMult(r[i], hp)
		cImg := edwards25519.NewIdentityPoint().ScalarMult(c[i], imagePoint)
		R[i] = edwards25519.NewIdentityPoint().Add(rHp, cImg)

		sumOfOthers.Add(sumOfOthers, c[i])
	}

	k := randomScalar()
	L[realIndex] = edwards25519.NewIdentityPoint().ScalarBaseMult(k)
	hpReal := hashToPoint(ring[realIndex][:])
	R[realIndex] = edwards25519.NewIdentityPoint().ScalarMult(k, hpReal)

	h := ringChallenge(prefixHash, L, R)
	c[realIndex] = edwards25519.NewScalar().Subtract(h, sumOfOthers)
	cs := edwards25519.NewScalar().Multiply(c[realIndex], secretScalar)
	r[realIndex] = edwards25519.NewScalar().Subtract(k, cs)

	sig := make(RingSignature, n)
	for i := 0; i < n; i++ {
		copy(sig[i].C[:], c[i].Bytes())
		copy(sig[i].R[:], r[i].Bytes())
	}
	return sig, nil
}

// CheckRingSignature verifies a ring signature produced by
// GenerateRingSignature over the given prefix hash, key image and candidate
// ring member public keys.
func CheckRingSignature(prefixHash Hash, image KeyImage, ring []PublicKey, sig RingSignature) bool {
	n := len(ring)
	if n == 0 || len(sig) != n {
		return false
	}

	imagePoint, err := edwards25519.NewIdentityPoint().SetBytes(image[:])
	if err != nil {
		return false
	}

	L := make([]*edwards25519.Point, n)
	R := make([]*edwards25519.Point, n)
	sum := edwards25519.NewScalar()

	for i := 0; i < n; i++ {
		p, err := pointFromPublicKey(ring[i])
		if err != nil {
			return false
		}
		c, err := edwards25519.NewScalar().SetCanonicalBytes(sig[i].C[:])
		if err != nil {
			return false
		}
		r, err := edwards25519.NewScalar().SetCanonicalBytes(sig[i].R[:])
		if err != nil {
			return false
		}

		rG := edwards25519.NewIdentityPoint().ScalarBaseMult(r)
		cP := edwards25519.NewIdentityPoint().ScalarMult(c, p)
		L[i] = edwards25519.NewIdentityPoint().Add(rG, cP)

		hp := hashToPoint(ring[i][:])
		rHp := edwards25519.NewIdentityPoint().ScalarMult(r, hp)
		cImg := edwards25519.NewIdentityPoint().ScalarMult(c, imagePoint)
		R[i] = edwards25519.NewIdentityPoint().Add(rHp, cImg)

		sum.Add(sum, c)
	}

	h := ringChallenge(prefixHash, L, R)
	return h.Equal(sum) == 1
}

// ringChallenge computes H_s(prefixHash || L_0 || R_0 || ... || L_{n-1} || R_{n-1}).
func ringChallenge(prefixHash Hash, L, R []*edwards25519.Point) *edwards25519.Scalar {
	parts := make([][]byte, 0, 1+2*len(L))
	parts = append(parts, prefixHash[:])
	for i := range L {
		parts = append(parts, L[i].Bytes(), R[i].Bytes())
	}
	return hashToScalar(parts...)
}
