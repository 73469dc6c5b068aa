package wallet

import (
	"testing"
	"time"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/node"
	"github.com/kryptokrona/walletcore-go/types"
)

func newTestSynchronizer(t *testing.T) (*Synchronizer, *node.Mock, *TransfersConsumer, *SubwalletRegistry) {
	t.Helper()
	consumer, registry, _ := newTestConsumer(t)
	mock := node.NewMock()
	sync := NewSynchronizer(mock, consumer, SyncState{}, []crypto.PublicKey{registry.ViewPublicKey}, time.Hour, nil)
	return sync, mock, consumer, registry
}

func TestSynchronizerPollProcessesNewBlocks(t *testing.T) {
	sync, mock, _, registry := newTestSynchronizer(t)

	spendSecret, _ := crypto.GenerateKeyPair()
	sw, err := registry.AddSubwallet(&spendSecret, 0, "primary")
	if err != nil {
		t.Fatalf("AddSubwallet: %v", err)
	}
	txPublic, out := buildOwnedOutput(t, registry.ViewPublicKey, sw, 0, 777)

	var blockHash, txHash crypto.Hash
	blockHash[0] = 1
	txHash[0] = 2
	mock.Blocks = []types.WalletBlockInfo{
		{
			Header:       types.BlockHeader{Height: 1, Hash: blockHash},
			Transactions: []types.RawWalletTransaction{{Hash: txHash, PublicKey: txPublic, Outputs: []types.TransactionOutput{out}}},
		},
	}

	if err := syncPollForTest(sync); err != nil {
		t.Fatalf("poll: %v", err)
	}

	state := sync.State()
	if state.Height != 1 || len(state.CheckpointHashes) != 1 || state.CheckpointHashes[0] != blockHash {
		t.Fatalf("got state %+v", state)
	}
}

func TestSynchronizerDetectsReorg(t *testing.T) {
	sync, mock, _, _ := newTestSynchronizer(t)

	var checkpoint crypto.Hash
	checkpoint[0] = 9
	sync.state = SyncState{Height: 5, CheckpointHashes: []crypto.Hash{checkpoint}}

	var divergentPrev, newHash crypto.Hash
	divergentPrev[0] = 0xff // does not match checkpoint
	newHash[0] = 10
	mock.Blocks = []types.WalletBlockInfo{
		{Header: types.BlockHeader{Height: 6, Hash: newHash, PrevHash: divergentPrev}},
	}

	if got := sync.detectReorg(mock.Blocks[0:1], []crypto.Hash{checkpoint}); !got {
		t.Fatal("expected detectReorg to report true for a non-chaining block")
	}
}

func TestSynchronizerIgnoresBusyNode(t *testing.T) {
	sync, mock, _, _ := newTestSynchronizer(t)
	mock.BusyCalls = 1

	if err := syncPollForTest(sync); err != nil {
		t.Fatalf("expected a busy response to be swallowed as a retryable condition, got %v", err)
	}
}

// syncPollForTest exercises the unexported poll method from within the
// package's own test binary.
func syncPollForTest(s *Synchronizer) error {
	return s.poll()
}
