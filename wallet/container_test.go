package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kryptokrona/walletcore-go/build"
	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

func testContainerPath(t *testing.T) string {
	t.Helper()
	dir := build.TempDir("wallet", "container", t.Name())
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("creating temp dir: %v", err)
	}
	return filepath.Join(dir, "test.keys")
}

func TestContainerSaveLoadRoundTrip(t *testing.T) {
	path := testContainerPath(t)

	viewSecret, _ := crypto.GenerateKeyPair()
	registry := NewSubwalletRegistry(viewSecret)
	spendSecret, _ := crypto.GenerateKeyPair()
	sw, err := registry.AddSubwallet(&spendSecret, 42, "primary")
	if err != nil {
		t.Fatalf("AddSubwallet: %v", err)
	}

	var checkpoint crypto.Hash
	checkpoint[0] = 7
	sync := SyncState{Height: 100, CheckpointHashes: []crypto.Hash{checkpoint}}

	if err := SaveContainer(path, "hunter2", registry, sync); err != nil {
		t.Fatalf("SaveContainer: %v", err)
	}

	loaded, loadedSync, err := LoadContainer(path, "hunter2")
	if err != nil {
		t.Fatalf("LoadContainer: %v", err)
	}
	if loaded.ViewSecretKey != viewSecret {
		t.Fatal("view secret key did not survive the round trip")
	}
	if loadedSync.Height != 100 || len(loadedSync.CheckpointHashes) != 1 || loadedSync.CheckpointHashes[0] != checkpoint {
		t.Fatalf("got sync state %+v", loadedSync)
	}

	got, ok := loaded.Get(0)
	if !ok || got.SpendPublicKey != sw.SpendPublicKey || got.CreationHeight != 42 || got.Label != "primary" {
		t.Fatalf("got subwallet %+v", got)
	}
}

func TestContainerWrongPassword(t *testing.T) {
	path := testContainerPath(t)

	viewSecret, _ := crypto.GenerateKeyPair()
	registry := NewSubwalletRegistry(viewSecret)
	if err := SaveContainer(path, "correct", registry, SyncState{}); err != nil {
		t.Fatalf("SaveContainer: %v", err)
	}

	_, _, err := LoadContainer(path, "wrong")
	if err == nil {
		t.Fatal("expected an error loading with the wrong password")
	}
	ce, ok := err.(*types.CoreError)
	if !ok || ce.Code != types.ErrWrongPassword {
		t.Fatalf("got %v, want ErrWrongPassword", err)
	}
}

func TestContainerMissingFile(t *testing.T) {
	path := testContainerPath(t)
	_, _, err := LoadContainer(path, "anything")
	ce, ok := err.(*types.CoreError)
	if !ok || ce.Code != types.ErrFilenameNonExistent {
		t.Fatalf("got %v, want ErrFilenameNonExistent", err)
	}
}

func TestContainerNotAWalletFile(t *testing.T) {
	path := testContainerPath(t)
	if err := os.WriteFile(path, []byte("not a wallet file at all"), 0600); err != nil {
		t.Fatalf("writing garbage file: %v", err)
	}

	_, _, err := LoadContainer(path, "anything")
	ce, ok := err.(*types.CoreError)
	if !ok || ce.Code != types.ErrNotAWalletFile {
		t.Fatalf("got %v, want ErrNotAWalletFile", err)
	}
}

func TestContainerViewOnlySubwalletPersists(t *testing.T) {
	path := testContainerPath(t)

	viewSecret, _ := crypto.GenerateKeyPair()
	registry := NewSubwalletRegistry(viewSecret)
	_, spendPublic := crypto.GenerateKeyPair()
	if _, err := registry.AddViewOnlySubwallet(spendPublic, 0, "watch"); err != nil {
		t.Fatalf("AddViewOnlySubwallet: %v", err)
	}

	if err := SaveContainer(path, "pw", registry, SyncState{}); err != nil {
		t.Fatalf("SaveContainer: %v", err)
	}

	loaded, _, err := LoadContainer(path, "pw")
	if err != nil {
		t.Fatalf("LoadContainer: %v", err)
	}
	if !loaded.IsViewWallet() {
		t.Fatal("expected the loaded registry to report as view-only")
	}
}
