package mnemonic

import (
	"strings"
	"testing"

	"github.com/kryptokrona/walletcore-go/types"
)

func TestMnemonicRoundTrip(t *testing.T) {
	var secret [32]byte
	for i := range secret {
		secret[i] = byte(i * 7)
	}

	phrase := ToMnemonic(secret)
	words := strings.Fields(phrase)
	if len(words) != WordCount {
		t.Fatalf("got %d words, want %d", len(words), WordCount)
	}

	got, err := FromMnemonic(phrase)
	if err != nil {
		t.Fatalf("FromMnemonic: %v", err)
	}
	if got != secret {
		t.Fatalf("round trip mismatch: got %x, want %x", got, secret)
	}
}

func TestMnemonicZeroSecret(t *testing.T) {
	var secret [32]byte
	phrase := ToMnemonic(secret)
	got, err := FromMnemonic(phrase)
	if err != nil {
		t.Fatalf("FromMnemonic: %v", err)
	}
	if got != secret {
		t.Fatalf("round trip mismatch for zero secret: got %x", got)
	}
}

func TestFromMnemonicRejectsWrongWordCount(t *testing.T) {
	_, err := FromMnemonic("abandon ability absorb")
	if !isInvalidMnemonic(err) {
		t.Fatalf("got %v, want ErrInvalidMnemonic", err)
	}
}

func TestFromMnemonicRejectsUnknownWord(t *testing.T) {
	var secret [32]byte
	words := strings.Fields(ToMnemonic(secret))
	words[0] = "notarealword"
	_, err := FromMnemonic(strings.Join(words, " "))
	if !isInvalidMnemonic(err) {
		t.Fatalf("got %v, want ErrInvalidMnemonic", err)
	}
}

func TestFromMnemonicRejectsBadChecksum(t *testing.T) {
	var secret [32]byte
	secret[0] = 1
	words := strings.Fields(ToMnemonic(secret))

	// Replace the checksum word with a different valid word from the list,
	// which will not match the recomputed checksum for the leading words.
	if words[len(words)-1] == english[0] {
		words[len(words)-1] = english[1]
	} else {
		words[len(words)-1] = english[0]
	}

	_, err := FromMnemonic(strings.Join(words, " "))
	if !isInvalidMnemonic(err) {
		t.Fatalf("got %v, want ErrInvalidMnemonic", err)
	}
}

func isInvalidMnemonic(err error) bool {
	ce, ok := err.(*types.CoreError)
	return ok && ce.Code == types.ErrInvalidMnemonic
}
