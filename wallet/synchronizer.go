package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/NebulousLabs/threadgroup"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/node"
	"github.com/kryptokrona/walletcore-go/persist"
	"github.com/kryptokrona/walletcore-go/types"
)

// maxCheckpoints bounds how many recent block hashes the synchronizer keeps
// as reorg-detection checkpoints.
const maxCheckpoints = 100

// SyncState is the synchronizer's persisted position: the height it has
// fully processed and the trailing checkpoint hashes used to detect a
// reorg on the next poll. It is part of the encrypted container body.
type SyncState struct {
	Height           uint64
	CheckpointHashes []crypto.Hash
}

// Synchronizer is a pull-based polling state machine that repeatedly
// asks the remote node for wallet-relevant sync data, feeds newly arrived
// blocks to the transfers consumer, and detects and recovers from chain
// reorganizations. It replaces the push-based consensus-set subscription a
// full node's wallet would use with polling, since a lightweight wallet
// core has no direct access to a local consensus set to subscribe to.
type Synchronizer struct {
	mu sync.Mutex
	tg threadgroup.ThreadGroup

	client   node.Client
	consumer *TransfersConsumer
	state    SyncState
	viewKeys []crypto.PublicKey

	pollInterval time.Duration
	log          *persist.Logger
}

// NewSynchronizer builds a synchronizer starting from state, polling client
// at pollInterval and feeding recognized blocks to consumer.
func NewSynchronizer(client node.Client, consumer *TransfersConsumer, state SyncState, viewKeys []crypto.PublicKey, pollInterval time.Duration, log *persist.Logger) *Synchronizer {
	return &Synchronizer{
		client:       client,
		consumer:     consumer,
		state:        state,
		viewKeys:     viewKeys,
		pollInterval: pollInterval,
		log:          log,
	}
}

// State returns a snapshot of the current sync position, for the container
// to persist.
func (s *Synchronizer) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.CheckpointHashes = append([]crypto.Hash(nil), s.state.CheckpointHashes...)
	return out
}

// Run polls the node until the thread group is stopped. It is meant to be
// launched with `go s.Run()`, guarded the same way the rest of the wallet
// core's background work is: the caller owns Stop.
func (s *Synchronizer) Run() error {
	if err := s.tg.Add(); err != nil {
		return err
	}
	defer s.tg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.tg.StopChan():
			return nil
		case <-ticker.C:
			if err := s.poll(); err != nil && s.log != nil {
				s.log.Debugln("sync poll failed:", err)
			}
		}
	}
}

// Stop signals the synchronizer's goroutine to exit and waits for it.
func (s *Synchronizer) Stop() error {
	return s.tg.Stop()
}

// poll performs one round of the FSM: fetch sync data since the last known
// position, detect a reorg if the new blocks don't chain from the trailing
// checkpoints, roll back if so, then hand off every new block to the
// consumer in order.
func (s *Synchronizer) poll() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.mu.Lock()
	knownHashes := append([]crypto.Hash(nil), s.state.CheckpointHashes...)
	startHeight := s.state.Height + 1 // blocks up to Height are already processed
	s.mu.Unlock()

	result, err := s.client.GetWalletSyncData(ctx, knownHashes, startHeight, s.viewKeys)
	if err != nil {
		if coreErr, ok := err.(*types.CoreError); ok && coreErr.Code == types.ErrNodeBusy {
			return nil // expected transient condition, retry next tick
		}
		return err
	}

	if reorged := s.detectReorg(result.Blocks, knownHashes); reorged {
		return s.handleReorg(ctx)
	}

	for _, block := range result.Blocks {
		if err := s.consumer.ProcessBlock(block); err != nil {
			return err
		}
		s.recordProcessed(block.Header)
	}
	return nil
}

// detectReorg reports whether the first of the newly fetched blocks fails
// to chain from the most recent known checkpoint, indicating the node's
// view of the chain has diverged from ours.
func (s *Synchronizer) detectReorg(blocks []types.BlockHeader, knownHashes []crypto.Hash) bool {
	if len(blocks) == 0 || len(knownHashes) == 0 {
		return false
	}
	return blocks[0].PrevHash != knownHashes[len(knownHashes)-1]
}

// handleReorg walks the checkpoint list backwards via QueryBlocksLite until
// it finds a height both the wallet and the node agree on, then reverts the
// transfers container to that height so the next poll re-derives it.
func (s *Synchronizer) handleReorg(ctx context.Context) error {
	s.mu.Lock()
	checkpoints := append([]crypto.Hash(nil), s.state.CheckpointHashes...)
	s.mu.Unlock()

	if len(checkpoints) == 0 {
		return nil
	}

	result, err := s.client.QueryBlocksLite(ctx, checkpoints, 0)
	if err != nil {
		return err
	}
	if len(result.Blocks) == 0 {
		return nil
	}
	commonHeight := result.Blocks[0].Height
	if commonHeight > 0 {
		commonHeight--
	}

	if err := s.consumer.RevertToHeight(commonHeight); err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Height = commonHeight
	s.state.CheckpointHashes = nil
	s.mu.Unlock()
	return nil
}

func (s *Synchronizer) recordProcessed(header types.BlockHeader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Height = header.Height
	s.state.CheckpointHashes = append(s.state.CheckpointHashes, header.Hash)
	if len(s.state.CheckpointHashes) > maxCheckpoints {
		s.state.CheckpointHashes = s.state.CheckpointHashes[len(s.state.CheckpointHashes)-maxCheckpoints:]
	}
}
