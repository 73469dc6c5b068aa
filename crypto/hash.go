package crypto

import (
	"github.com/kryptokrona/walletcore-go/pkg/encoding/wirebin"
	"golang.org/x/crypto/sha3"
)

// HashSize is the length, in bytes, of a Hash.
const HashSize = 32

// Hash is the CN-hash of some data: a single Keccak-256 pass, which is what
// the original CryptoNote cn_fast_hash reduces to in most modern forks.
type Hash [HashSize]byte

// HashBytes returns the CN-hash of the input data.
func HashBytes(data []byte) (h Hash) {
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	d.Sum(h[:0])
	return
}

// HashObject encodes obj using the wire codec and hashes the result.
func HashObject(obj interface{}) Hash {
	b, err := wirebin.Marshal(obj)
	if err != nil {
		panic(err)
	}
	return HashBytes(b)
}

// HashAll encodes and concatenates all of its arguments and hashes the
// result.
func HashAll(objs ...interface{}) Hash {
	b, err := wirebin.MarshalAll(objs...)
	if err != nil {
		panic(err)
	}
	return HashBytes(b)
}

// String returns the hex representation of the hash.
func (h Hash) String() string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(h)*2)
	for i, b := range h {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0f]
	}
	return string(out)
}
