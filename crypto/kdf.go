package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// KDFIterations is the fixed PBKDF2 iteration count used to derive a
// container encryption key from a password. It must never change silently:
// bumping it would make every previously encrypted container
// undecryptable, which is exactly what the design's "refuse to upgrade
// iteration counts silently" rule guards against.
const KDFIterations = 500000

// KDFSaltSize is the size, in bytes, of the salt stored alongside an
// encrypted container.
const KDFSaltSize = 16

// KDFKeySize is the size, in bytes, of the derived AES-128 key.
const KDFKeySize = 16

// DeriveContainerKey derives a 16-byte AES-128 key from a password and salt
// using PBKDF2-HMAC-SHA256 at the fixed iteration count.
func DeriveContainerKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, KDFIterations, KDFKeySize, sha256.New)
}
