package crypto

import (
	"errors"

	"filippo.io/edwards25519"
)

// KeyDerivation is D = v*R, the shared secret between a transaction's
// ephemeral public key R and a subwallet's private view key v.
type KeyDerivation [32]byte

// ErrInvalidDerivation is returned when a key derivation cannot be decoded
// as a valid curve point.
var ErrInvalidDerivation = errors.New("invalid key derivation")

// GenerateKeyDerivation computes D = v*R for transaction public key R and
// view secret key v.
func GenerateKeyDerivation(txPublicKey PublicKey, viewSecretKey SecretKey) (KeyDerivation, error) {
	r, err := pointFromPublicKey(txPublicKey)
	if err != nil {
		return KeyDerivation{}, ErrInvalidDerivation
	}
	v, err := scalarFromSecretKey(viewSecretKey)
	if err != nil {
		return KeyDerivation{}, err
	}
	d := edwards25519.NewIdentityPoint().ScalarMult(v, r)
	var out KeyDerivation
	copy(out[:], d.Bytes())
	return out, nil
}

// derivationScalar computes H_s(D || i), the per-output scalar used by both
// DerivePublicKey and DeriveSecretKey.
func derivationScalar(d KeyDerivation, outputIndex uint64) *edwards25519.Scalar {
	return hashToScalar(d[:], varUint(outputIndex))
}

func varUint(v uint64) []byte {
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = byte(v)
		v >>= 8
	}
	return buf
}

// DerivePublicKey computes B' = B + H_s(D||i)*G for the one-time output
// public key belonging to spend public key B at output index i under
// derivation D.
func DerivePublicKey(d KeyDerivation, outputIndex uint64, spendPublicKey PublicKey) (PublicKey, error) {
	b, err := pointFromPublicKey(spendPublicKey)
	if err != nil {
		return PublicKey{}, ErrPublicNilKey
	}
	hs := derivationScalar(d, outputIndex)
	hsG := edwards25519.NewIdentityPoint().ScalarBaseMult(hs)
	bPrime := edwards25519.NewIdentityPoint().Add(b, hsG)
	return publicKeyFromPoint(bPrime), nil
}

// DeriveSecretKey computes b' = b + H_s(D||i) mod l for the one-time output
// secret key belonging to spend secret key b at output index i under
// derivation D.
func DeriveSecretKey(d KeyDerivation, outputIndex uint64, spendSecretKey SecretKey) (SecretKey, error) {
	b, err := scalarFromSecretKey(spendSecretKey)
	if err != nil {
		return SecretKey{}, err
	}
	hs := derivationScalar(d, outputIndex)
	bPrime := edwards25519.NewScalar().Add(b, hs)

	var out SecretKey
	copy(out[:32], bPrime.Bytes())
	pk := edwards25519.NewIdentityPoint().ScalarBaseMult(bPrime)
	copy(out[32:], pk.Bytes())
	return out, nil
}

// RecoverCandidateSpendPublicKey computes B' = P - H_s(D||i)*G, the inverse
// of DerivePublicKey: given an output's key P and derivation D, this yields
// the spend public key that would have produced P, which the transfers
// consumer compares against every subscribed subwallet's spend key.
func RecoverCandidateSpendPublicKey(d KeyDerivation, outputIndex uint64, outputKey PublicKey) (PublicKey, error) {
	p, err := pointFromPublicKey(outputKey)
	if err != nil {
		return PublicKey{}, ErrPublicNilKey
	}
	hs := derivationScalar(d, outputIndex)
	hsG := edwards25519.NewIdentityPoint().ScalarBaseMult(hs)
	bPrime := edwards25519.NewIdentityPoint().Subtract(p, hsG)
	return publicKeyFromPoint(bPrime), nil
}
