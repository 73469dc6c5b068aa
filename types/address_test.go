package types

import (
	"testing"

	"github.com/kryptokrona/walletcore-go/crypto"
)

func randomPublicKey(seed byte) crypto.PublicKey {
	var entropy [crypto.EntropySize]byte
	entropy[0] = seed
	_, pk := crypto.GenerateKeyPairDeterministic(entropy)
	return pk
}

func TestAddressRoundTrip(t *testing.T) {
	addr := Address{SpendPublicKey: randomPublicKey(1), ViewPublicKey: randomPublicKey(2)}

	encoded := addr.String()
	decoded, err := ParseAddress(encoded)
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if decoded != addr {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, addr)
	}
}

func TestIntegratedAddressRoundTrip(t *testing.T) {
	ia := IntegratedAddress{Address: Address{SpendPublicKey: randomPublicKey(3), ViewPublicKey: randomPublicKey(4)}}
	ia.PaymentID[0] = 0xab

	encoded := ia.String()
	decoded, err := ParseIntegratedAddress(encoded)
	if err != nil {
		t.Fatalf("ParseIntegratedAddress: %v", err)
	}
	if decoded != ia {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, ia)
	}
}

func TestParseAddressRejectsIntegrated(t *testing.T) {
	ia := IntegratedAddress{Address: Address{SpendPublicKey: randomPublicKey(5), ViewPublicKey: randomPublicKey(6)}}
	if _, err := ParseAddress(ia.String()); err == nil {
		t.Fatal("expected ParseAddress to reject an integrated address string")
	}
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	if _, err := ParseAddress("not a valid address"); err == nil {
		t.Fatal("expected an error for a non-base58 string")
	}
}

func TestParseAddressRejectsTamperedChecksum(t *testing.T) {
	addr := Address{SpendPublicKey: randomPublicKey(7), ViewPublicKey: randomPublicKey(8)}
	encoded := addr.String()

	// Flip the last character, which falls within the checksum's encoded
	// block, so decode should fail the checksum comparison.
	tampered := []byte(encoded)
	if tampered[len(tampered)-1] == 'a' {
		tampered[len(tampered)-1] = 'b'
	} else {
		tampered[len(tampered)-1] = 'a'
	}

	if _, err := ParseAddress(string(tampered)); err == nil {
		t.Fatal("expected a tampered address to fail checksum validation")
	}
}

func TestPaymentIDFromHex(t *testing.T) {
	var want [PaymentIDSize]byte
	want[0] = 0x11
	want[PaymentIDSize-1] = 0x22

	hexStr := ""
	for _, b := range want {
		hexStr += string("0123456789abcdef"[b>>4]) + string("0123456789abcdef"[b&0xf])
	}

	got, err := PaymentIDFromHex(hexStr)
	if err != nil {
		t.Fatalf("PaymentIDFromHex: %v", err)
	}
	if got != want {
		t.Fatalf("got %x, want %x", got, want)
	}

	if _, err := PaymentIDFromHex("not hex"); err == nil {
		t.Fatal("expected an error for a non-hex payment id")
	}
	if _, err := PaymentIDFromHex("aabb"); err == nil {
		t.Fatal("expected an error for a payment id of the wrong length")
	}
}
