package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/NebulousLabs/fastrand"
)

// ErrWrongPassword is returned by DecryptCBC whenever the ciphertext fails
// to decode, whatever the underlying reason (bad padding, corrupted data, or
// truly a wrong key). Padding errors are never distinguished from any other
// decoding failure, so a caller cannot use response timing or error type as
// a padding oracle.
var ErrWrongPassword = errors.New("wrong password")

// EncryptCBC encrypts plaintext under key using AES-128-CBC with PKCS#7
// padding, with a freshly generated random IV prepended to the returned
// ciphertext.
func EncryptCBC(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	iv := fastrand.Bytes(block.BlockSize())

	ciphertext := make([]byte, len(iv)+len(padded))
	copy(ciphertext, iv)
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext[len(iv):], padded)
	return ciphertext, nil
}

// DecryptCBC reverses EncryptCBC. Any failure, whether a malformed length,
// invalid PKCS#7 padding, or (most commonly) a wrong key, is reported
// uniformly as ErrWrongPassword.
func DecryptCBC(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrWrongPassword
	}
	bs := block.BlockSize()
	if len(ciphertext) < bs || (len(ciphertext)-bs)%bs != 0 {
		return nil, ErrWrongPassword
	}

	iv := ciphertext[:bs]
	body := ciphertext[bs:]
	out := make([]byte, len(body))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(out, body)

	unpadded, ok := pkcs7Unpad(out, bs)
	if !ok {
		return nil, ErrWrongPassword
	}
	return unpadded, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, false
		}
	}
	return data[:len(data)-padLen], true
}
