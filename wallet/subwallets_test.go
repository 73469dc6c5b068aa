package wallet

import (
	"testing"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

func TestSubwalletRegistryAddAndLookup(t *testing.T) {
	viewSecret, _ := crypto.GenerateKeyPair()
	registry := NewSubwalletRegistry(viewSecret)

	sw, err := registry.AddSubwallet(nil, 100, "primary")
	if err != nil {
		t.Fatalf("AddSubwallet: %v", err)
	}
	if sw.Index != 0 {
		t.Fatalf("got index %d, want 0", sw.Index)
	}
	if sw.ViewOnly() {
		t.Fatal("a generated spend key should not be view-only")
	}

	found, ok := registry.FindBySpendPublicKey(sw.SpendPublicKey)
	if !ok || found.Index != sw.Index {
		t.Fatalf("FindBySpendPublicKey: got %+v, %v", found, ok)
	}

	addr, err := registry.Address(sw.Index)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if addr.SpendPublicKey != sw.SpendPublicKey || addr.ViewPublicKey != registry.ViewPublicKey {
		t.Fatalf("unexpected address: %+v", addr)
	}
}

func TestSubwalletRegistryRejectsDuplicateKey(t *testing.T) {
	viewSecret, _ := crypto.GenerateKeyPair()
	registry := NewSubwalletRegistry(viewSecret)

	spendSecret, _ := crypto.GenerateKeyPair()
	if _, err := registry.AddSubwallet(&spendSecret, 0, "a"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := registry.AddSubwallet(&spendSecret, 0, "b"); err == nil {
		t.Fatal("expected an error adding the same spend key twice")
	}
}

func TestSubwalletRegistryViewOnly(t *testing.T) {
	viewSecret, _ := crypto.GenerateKeyPair()
	registry := NewSubwalletRegistry(viewSecret)

	_, spendPublic := crypto.GenerateKeyPair()
	sw, err := registry.AddViewOnlySubwallet(spendPublic, 0, "watch")
	if err != nil {
		t.Fatalf("AddViewOnlySubwallet: %v", err)
	}
	if !sw.ViewOnly() {
		t.Fatal("expected the subwallet to be view-only")
	}
	if !registry.IsViewWallet() {
		t.Fatal("expected the whole registry to report as view-only")
	}

	spendSecret, _ := crypto.GenerateKeyPair()
	if _, err := registry.AddSubwallet(&spendSecret, 0, "spendable"); err != nil {
		t.Fatalf("AddSubwallet: %v", err)
	}
	if registry.IsViewWallet() {
		t.Fatal("expected the registry to no longer be view-only once a spendable subwallet exists")
	}
}

func TestSubwalletRegistryGetOutOfRange(t *testing.T) {
	viewSecret, _ := crypto.GenerateKeyPair()
	registry := NewSubwalletRegistry(viewSecret)
	if _, ok := registry.Get(0); ok {
		t.Fatal("expected Get to fail on an empty registry")
	}
	if _, err := registry.Address(0); err == nil {
		t.Fatal("expected Address to fail on an empty registry")
	} else if ce, ok := err.(*types.CoreError); !ok || ce.Code != types.ErrAddressNotFound {
		t.Fatalf("got %v, want ErrAddressNotFound", err)
	}
}
