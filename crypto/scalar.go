package crypto

import (
	"bytes"
	"crypto/sha512"

	"github.com/NebulousLabs/fastrand"
	"golang.org/x/crypto/sha3"

	"filippo.io/edwards25519"
)

// keccak hashes data into dst, which must have room for 32 bytes.
func keccak(dst []byte, data ...[]byte) {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	h.Sum(dst[:0])
}

// hashToScalar hashes data to a uniformly distributed scalar modulo the
// curve's group order, by taking two chained Keccak-256 passes (64 bytes
// total) and reducing them via the library's wide-reduction constructor.
// H_s in the design documentation.
func hashToScalar(data ...[]byte) *edwards25519.Scalar {
	var h1, h2 [32]byte
	keccak(h1[:], data...)
	keccak(h2[:], h1[:])

	buf := make([]byte, 64)
	copy(buf[:32], h1[:])
	copy(buf[32:], h2[:])

	s, err := edwards25519.NewScalar().SetUniformBytes(buf)
	if err != nil {
		// SetUniformBytes only fails when len(buf) != 64, which cannot
		// happen here.
		panic(err)
	}
	return s
}

// hashToPoint maps arbitrary data onto a curve point. H_p in the design
// documentation. This is a simplified hash-to-curve: it hashes to a scalar
// and multiplies the base point by it, rather than the Elligator-based
// construction CryptoNote forks use internally; it is documented as a
// deliberate simplification (see DESIGN.md) since the field-arithmetic
// Elligator map is not something this package has a vetted dependency for.
func hashToPoint(data []byte) *edwards25519.Point {
	s := hashToScalar(data)
	return edwards25519.NewIdentityPoint().ScalarBaseMult(s)
}

// randomScalar returns a uniformly random scalar modulo the group order,
// sourced from the package's secure RNG.
func randomScalar() *edwards25519.Scalar {
	buf := fastrand.Bytes(64)
	s, err := edwards25519.NewScalar().SetUniformBytes(buf)
	if err != nil {
		panic(err)
	}
	return s
}

// pointFromPublicKey decodes a PublicKey as a curve point.
func pointFromPublicKey(pk PublicKey) (*edwards25519.Point, error) {
	p, err := edwards25519.NewIdentityPoint().SetBytes(pk[:])
	if err != nil {
		return nil, ErrPublicNilKey
	}
	return p, nil
}

// publicKeyFromPoint encodes a curve point as a PublicKey.
func publicKeyFromPoint(p *edwards25519.Point) (pk PublicKey) {
	copy(pk[:], p.Bytes())
	return
}

// scalarFromSecretKey returns the scalar s for which s*G is the public key
// held in the second half of the SecretKey. Keys made by DeriveSecretKey
// store that scalar directly in their first 32 bytes; keys made by ed25519
// key generation store a seed there, which is expanded and clamped the way
// ed25519 does it.
func scalarFromSecretKey(sk SecretKey) (*edwards25519.Scalar, error) {
	pk := sk.PublicKey()
	if s, err := edwards25519.NewScalar().SetCanonicalBytes(sk[:32]); err == nil &&
		bytes.Equal(edwards25519.NewIdentityPoint().ScalarBaseMult(s).Bytes(), pk[:]) {
		return s, nil
	}
	h := sha512.Sum512(sk[:32])
	return edwards25519.NewScalar().SetBytesWithClamping(h[:32])
}

// expand64 deterministically stretches a 32-byte secret into the 64 bytes
// SetUniformBytes requires, by hashing it alongside itself. This keeps the
// resulting scalar a deterministic function of the 32-byte secret.
func expand64(b []byte) []byte {
	var h [32]byte
	keccak(h[:], b)
	out := make([]byte, 64)
	copy(out[:32], b)
	copy(out[32:], h[:])
	return out
}
