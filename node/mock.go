package node

import (
	"context"
	"sync"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

// Mock is an in-memory Client double for tests: a synchronizer or builder
// under test reads and mutates its exported fields directly instead of
// driving a real daemon over HTTP.
type Mock struct {
	mu sync.Mutex

	Blocks        []types.WalletBlockInfo
	Pool          []types.RawWalletTransaction
	DeletedPool   []crypto.Hash
	Fee           FeeInfo
	RandomOuts    map[uint64][]RandomOut
	GlobalIndexes map[crypto.Hash][]uint64
	Sent          [][]byte

	BusyCalls int // when > 0, the next N calls return types.ErrNodeBusy and decrement
}

// NewMock returns an empty Mock ready for a test to populate.
func NewMock() *Mock {
	return &Mock{
		RandomOuts:    make(map[uint64][]RandomOut),
		GlobalIndexes: make(map[crypto.Hash][]uint64),
	}
}

func (m *Mock) takeBusy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BusyCalls > 0 {
		m.BusyCalls--
		return true
	}
	return false
}

func (m *Mock) GetLastBlockHeader(ctx context.Context) (types.BlockHeader, error) {
	if m.takeBusy() {
		return types.BlockHeader{}, types.NewError(types.ErrNodeBusy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Blocks) == 0 {
		return types.BlockHeader{}, nil
	}
	return m.Blocks[len(m.Blocks)-1].Header, nil
}

func (m *Mock) GetInfo(ctx context.Context) (Info, error) {
	if m.takeBusy() {
		return Info{}, types.NewError(types.ErrNodeBusy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	height := uint64(0)
	if len(m.Blocks) > 0 {
		height = m.Blocks[len(m.Blocks)-1].Header.Height
	}
	return Info{Height: height, NetworkHeight: height, Synced: true}, nil
}

func (m *Mock) QueryBlocksLite(ctx context.Context, knownBlockHashes []crypto.Hash, startHeight uint64) (QueryBlocksLiteResult, error) {
	if m.takeBusy() {
		return QueryBlocksLiteResult{}, types.NewError(types.ErrNodeBusy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	headers := make([]types.BlockHeader, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		if b.Header.Height >= startHeight {
			headers = append(headers, b.Header)
		}
	}
	return QueryBlocksLiteResult{StartHeight: startHeight, Blocks: headers}, nil
}

func (m *Mock) GetWalletSyncData(ctx context.Context, knownBlockHashes []crypto.Hash, startHeight uint64, viewKeys []crypto.PublicKey) (WalletSyncDataResult, error) {
	if m.takeBusy() {
		return WalletSyncDataResult{}, types.NewError(types.ErrNodeBusy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	blocks := make([]types.WalletBlockInfo, 0, len(m.Blocks))
	currentHeight := startHeight
	for _, b := range m.Blocks {
		if b.Header.Height >= startHeight {
			blocks = append(blocks, b)
			currentHeight = b.Header.Height
		}
	}
	return WalletSyncDataResult{StartHeight: startHeight, CurrentHeight: currentHeight, Blocks: blocks}, nil
}

func (m *Mock) GetPoolChangesLite(ctx context.Context, knownTxHashes []crypto.Hash) (PoolChangesResult, error) {
	if m.takeBusy() {
		return PoolChangesResult{}, types.NewError(types.ErrNodeBusy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return PoolChangesResult{Added: m.Pool, DeletedHash: m.DeletedPool, IsTailBlockActual: true}, nil
}

func (m *Mock) GetRandomOutsForAmounts(ctx context.Context, amounts []uint64, mixin int) ([]RandomOutsForAmount, error) {
	if m.takeBusy() {
		return nil, types.NewError(types.ErrNodeBusy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RandomOutsForAmount, 0, len(amounts))
	for _, amount := range amounts {
		out = append(out, RandomOutsForAmount{Amount: amount, Outs: m.RandomOuts[amount]})
	}
	return out, nil
}

func (m *Mock) GetGlobalIndexesForRange(ctx context.Context, startHeight, endHeight uint64) (map[crypto.Hash][]uint64, error) {
	if m.takeBusy() {
		return nil, types.NewError(types.ErrNodeBusy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GlobalIndexes, nil
}

func (m *Mock) SendRawTransaction(ctx context.Context, raw []byte) error {
	if m.takeBusy() {
		return types.NewError(types.ErrNodeBusy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, raw)
	return nil
}

func (m *Mock) GetFeeInfo(ctx context.Context) (FeeInfo, error) {
	if m.takeBusy() {
		return FeeInfo{}, types.NewError(types.ErrNodeBusy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Fee, nil
}
