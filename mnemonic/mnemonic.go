// Package mnemonic implements the CryptoNote/Electrum-style mnemonic seed
// encoding: a 32-byte secret key is packed into 24 words plus a trailing
// checksum word, three words per 4-byte chunk. This is not the BIP39
// algorithm; the two are not interchangeable.
package mnemonic

import (
	"hash/crc32"
	"strings"

	"github.com/kryptokrona/walletcore-go/types"
)

const (
	// WordCount is the number of words a full mnemonic (24 data words plus
	// one checksum word) is composed of.
	WordCount = 25

	chunkSize = 4 // bytes per 3-word chunk
)

var wordIndex = buildWordIndex()

func buildWordIndex() map[string]uint32 {
	m := make(map[string]uint32, len(english))
	for i, w := range english {
		m[w] = uint32(i)
	}
	return m
}

// ToMnemonic encodes a 32-byte secret key as a 25-word mnemonic phrase.
func ToMnemonic(secret [32]byte) string {
	wlLen := uint32(len(english))
	words := make([]string, 0, WordCount)

	for i := 0; i+chunkSize <= len(secret); i += chunkSize {
		val := uint32(secret[i]) | uint32(secret[i+1])<<8 | uint32(secret[i+2])<<16 | uint32(secret[i+3])<<24

		w1 := val % wlLen
		w2 := (val/wlLen + w1) % wlLen
		w3 := (val/wlLen/wlLen + w2) % wlLen

		words = append(words, english[w1], english[w2], english[w3])
	}

	words = append(words, checksumWord(words))
	return strings.Join(words, " ")
}

// FromMnemonic decodes a 25-word mnemonic phrase back into its 32-byte
// secret key, validating word membership and the trailing checksum word.
func FromMnemonic(phrase string) ([32]byte, error) {
	var secret [32]byte
	words := strings.Fields(phrase)
	if len(words) != WordCount {
		return secret, types.NewError(types.ErrInvalidMnemonic)
	}

	indexes := make([]uint32, len(words))
	for i, w := range words {
		idx, ok := wordIndex[w]
		if !ok {
			return secret, types.NewError(types.ErrInvalidMnemonic)
		}
		indexes[i] = idx
	}

	if checksumWord(words[:len(words)-1]) != words[len(words)-1] {
		return secret, types.NewError(types.ErrInvalidMnemonic)
	}

	wlLen := uint32(len(english))
	data := make([]byte, 0, 32)
	for i := 0; i+3 <= len(words)-1; i += 3 {
		w1, w2, w3 := indexes[i], indexes[i+1], indexes[i+2]

		val := w1 + wlLen*((wlLen-w1+w2)%wlLen) + wlLen*wlLen*((wlLen-w2+w3)%wlLen)
		if val%wlLen != w1 {
			return secret, types.NewError(types.ErrInvalidMnemonic)
		}

		data = append(data, byte(val), byte(val>>8), byte(val>>16), byte(val>>24))
	}

	copy(secret[:], data)
	return secret, nil
}

// checksumWord derives the trailing checksum word from the leading data
// words: the first 3 characters of every word are concatenated and CRC32'd,
// and the checksum selects which of the data words is repeated as the
// checksum word.
func checksumWord(words []string) string {
	var trimmed strings.Builder
	for _, w := range words {
		if len(w) >= 3 {
			trimmed.WriteString(w[:3])
		} else {
			trimmed.WriteString(w)
		}
	}
	sum := crc32.ChecksumIEEE([]byte(trimmed.String()))
	return words[int(sum)%len(words)]
}
