// Package node abstracts the remote daemon the wallet synchronizes against
// and broadcasts transactions through, so the synchronizer, transaction
// builder and mempool cleaner never talk HTTP directly.
package node

import (
	"context"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

// Client is the set of remote-node operations the wallet core depends on.
// A BUSY response from the node is surfaced as types.ErrNodeBusy; any other
// transport/protocol failure is surfaced as types.ErrInternalNodeError,
// types.ErrConnectError, types.ErrNetworkError or types.ErrTimeout as
// appropriate.
type Client interface {
	// GetLastBlockHeader returns the header of the chain tip.
	GetLastBlockHeader(ctx context.Context) (types.BlockHeader, error)

	// GetInfo returns general node/network status.
	GetInfo(ctx context.Context) (Info, error)

	// QueryBlocksLite finds the common ancestor with the given block hash
	// checkpoints and returns the blocks (without transaction bodies) after
	// it, used by the synchronizer to detect and recover from reorgs.
	QueryBlocksLite(ctx context.Context, knownBlockHashes []crypto.Hash, startHeight uint64) (QueryBlocksLiteResult, error)

	// GetWalletSyncData returns, for each block at or above startHeight, the
	// transactions whose outputs might belong to one of the given view
	// keys' subscriptions.
	GetWalletSyncData(ctx context.Context, knownBlockHashes []crypto.Hash, startHeight uint64, viewKeys []crypto.PublicKey) (WalletSyncDataResult, error)

	// GetPoolChangesLite returns mempool additions/removals relative to a
	// known set of transaction hashes.
	GetPoolChangesLite(ctx context.Context, knownTxHashes []crypto.Hash) (PoolChangesResult, error)

	// GetRandomOutsForAmounts returns decoy output candidates for each
	// requested amount, for ring construction.
	GetRandomOutsForAmounts(ctx context.Context, amounts []uint64, mixin int) ([]RandomOutsForAmount, error)

	// GetGlobalIndexesForRange returns the global output index of every
	// output in the given height range, used to backfill ring membership
	// for outputs the wallet already owns.
	GetGlobalIndexesForRange(ctx context.Context, startHeight, endHeight uint64) (map[crypto.Hash][]uint64, error)

	// SendRawTransaction broadcasts a signed transaction.
	SendRawTransaction(ctx context.Context, raw []byte) error

	// GetFeeInfo returns the node's advertised minimum fee and fee address,
	// if it requires one.
	GetFeeInfo(ctx context.Context) (FeeInfo, error)
}

// Info is the node status summary returned by GetInfo.
type Info struct {
	Height        uint64
	NetworkHeight uint64
	Version       string
	Synced        bool
}

// QueryBlocksLiteResult is the response to QueryBlocksLite.
type QueryBlocksLiteResult struct {
	StartHeight uint64
	Blocks      []types.BlockHeader
}

// WalletSyncDataResult is the response to GetWalletSyncData.
type WalletSyncDataResult struct {
	StartHeight   uint64
	CurrentHeight uint64
	Blocks        []types.WalletBlockInfo
}

// PoolChangesResult is the response to GetPoolChangesLite.
type PoolChangesResult struct {
	Added             []types.RawWalletTransaction
	DeletedHash       []crypto.Hash
	IsTailBlockActual bool
}

// RandomOutsForAmount is one amount's worth of decoy candidates.
type RandomOutsForAmount struct {
	Amount uint64
	Outs   []RandomOut
}

// RandomOut is a single decoy candidate: its global index and one-time key.
type RandomOut struct {
	GlobalIndex uint64
	Key         crypto.PublicKey
}

// FeeInfo is the node's advertised transaction fee requirement.
type FeeInfo struct {
	Address string
	Amount  uint64
}
