package types

import "github.com/kryptokrona/walletcore-go/crypto"

// BlockHeader is the subset of a block's header fields the synchronizer
// needs to track chain position and detect reorganizations, as returned by
// the node's getLastBlockHeader and queryBlocksLite operations.
type BlockHeader struct {
	Height    uint64
	Hash      crypto.Hash
	PrevHash  crypto.Hash
	Timestamp uint64
}

// WalletBlockInfo is one block's worth of transactions as delivered by the
// node's getWalletSyncData operation: every output-bearing transaction in
// the block, pre-filtered by the node to those whose outputs might belong
// to one of the view keys the wallet subscribed with.
type WalletBlockInfo struct {
	Header       BlockHeader
	Transactions []RawWalletTransaction
}

// RawWalletTransaction is a transaction as seen from chain scan data: its
// hash, public key, outputs and global output indexes, enough for the
// transfers consumer to test ownership without re-fetching the full
// transaction body.
type RawWalletTransaction struct {
	Hash                crypto.Hash
	PublicKey           crypto.PublicKey
	Outputs             []TransactionOutput
	GlobalOutputIndexes []uint64
	UnlockTime          uint64
	PaymentID           []byte
	KeyImages           []crypto.KeyImage
	Timestamp           uint64
	BlockHeight         uint64
}
