package crypto

import "filippo.io/edwards25519"

// KeyImage is I = s*H_p(P), the value that uniquely identifies a spent
// output's one-time key regardless of which ring it is later signed in.
type KeyImage [32]byte

// GenerateKeyImage computes the key image for a one-time public key P and
// its corresponding one-time secret key s.
func GenerateKeyImage(oneTimePublicKey PublicKey, oneTimeSecretKey SecretKey) (KeyImage, error) {
	s, err := scalarFromSecretKey(oneTimeSecretKey)
	if err != nil {
		return KeyImage{}, err
	}
	hp := hashToPoint(oneTimePublicKey[:])
	img := edwards25519.NewIdentityPoint().ScalarMult(s, hp)

	var out KeyImage
	copy(out[:], img.Bytes())
	return out, nil
}
