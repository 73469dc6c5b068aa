package wallet

import (
	"encoding/hex"
	"sync"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

// storedTransaction is the msgpack/storm-indexed record of a
// types.WalletTransaction, keyed by its hex-encoded hash so it can be
// looked up directly or range-scanned by height.
type storedTransaction struct {
	Hash        string                 `storm:"id"`
	BlockHeight uint64                 `storm:"index"`
	Timestamp   uint64                 `storm:"index"`
	PaymentID   string                 `storm:"index"`
	Fee         uint64
	UnlockTime  uint64
	IsCoinbase  bool
	Transfers   []types.WalletTransfer
	TotalInput  uint64
	TotalOutput uint64
}

// storedOutput is one owned one-time output, indexed by the subwallet that
// owns it, its key image (for spend detection) and its spent state (for
// balance/fund-selection queries).
type storedOutput struct {
	ID             string `storm:"id"` // txHash:outputIndex
	TxHash         string `storm:"index"`
	OutputIndex    int
	SubwalletIndex int `storm:"index"`
	Amount         uint64
	GlobalIndex    uint64
	TxPublicKey    string
	OneTimeKey     string
	KeyImage       string `storm:"unique"`
	Spent          bool   `storm:"index"`
	UnlockTime     uint64
	BlockHeight    uint64 `storm:"index"`
}

// TransfersContainer is the storage layer: every transaction and owned
// output the transfers consumer has recognized, indexed so the
// transaction builder can select spendable outputs and the public API
// can list transaction history, without scanning the whole chain on every
// query.
type TransfersContainer struct {
	mu sync.Mutex
	db *storm.DB
}

// OpenTransfersContainer opens (creating if absent) the transfers database
// at path.
func OpenTransfersContainer(path string) (*TransfersContainer, error) {
	db, err := storm.Open(path, storm.Codec(msgpack.Codec))
	if err != nil {
		return nil, err
	}
	return &TransfersContainer{db: db}, nil
}

// Close closes the underlying database.
func (c *TransfersContainer) Close() error {
	return c.db.Close()
}

// AddTransaction records or overwrites a wallet transaction.
func (c *TransfersContainer) AddTransaction(tx types.WalletTransaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := storedTransaction{
		Hash:        hex.EncodeToString(tx.Hash[:]),
		BlockHeight: tx.BlockHeight,
		Timestamp:   tx.Timestamp,
		PaymentID:   hex.EncodeToString(tx.PaymentID),
		Fee:         tx.Fee,
		UnlockTime:  tx.UnlockTime,
		IsCoinbase:  tx.IsCoinbase,
		Transfers:   tx.Transfers,
		TotalInput:  tx.TotalInput,
		TotalOutput: tx.TotalOutput,
	}
	return c.db.Save(&rec)
}

// GetTransaction looks up a transaction by hash.
func (c *TransfersContainer) GetTransaction(hash crypto.Hash) (types.WalletTransaction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rec storedTransaction
	err := c.db.One("Hash", hex.EncodeToString(hash[:]), &rec)
	if err == storm.ErrNotFound {
		return types.WalletTransaction{}, false, nil
	}
	if err != nil {
		return types.WalletTransaction{}, false, err
	}
	return transactionFromRecord(rec)
}

// ListTransactions returns every recorded transaction, most recent first.
func (c *TransfersContainer) ListTransactions() ([]types.WalletTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var recs []storedTransaction
	if err := c.db.AllByIndex("BlockHeight", &recs, storm.Reverse()); err != nil && err != storm.ErrNotFound {
		return nil, err
	}
	out := make([]types.WalletTransaction, 0, len(recs))
	for _, rec := range recs {
		tx, _, err := transactionFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func transactionFromRecord(rec storedTransaction) (types.WalletTransaction, bool, error) {
	var hash crypto.Hash
	hb, err := hex.DecodeString(rec.Hash)
	if err != nil {
		return types.WalletTransaction{}, false, err
	}
	copy(hash[:], hb)

	paymentID, err := hex.DecodeString(rec.PaymentID)
	if err != nil {
		return types.WalletTransaction{}, false, err
	}

	return types.WalletTransaction{
		Hash:        hash,
		BlockHeight: rec.BlockHeight,
		Timestamp:   rec.Timestamp,
		PaymentID:   paymentID,
		Fee:         rec.Fee,
		UnlockTime:  rec.UnlockTime,
		IsCoinbase:  rec.IsCoinbase,
		Transfers:   rec.Transfers,
		TotalInput:  rec.TotalInput,
		TotalOutput: rec.TotalOutput,
	}, true, nil
}

// AddOwnedOutput records a newly recognized output as belonging to one of
// the wallet's subwallets. txPublicKey is the transaction's ephemeral
// public key R, stored so the one-time secret key can be re-derived later
// when the output is spent.
func (c *TransfersContainer) AddOwnedOutput(txHash crypto.Hash, outputIndex int, subwalletIndex int, amount, globalIndex uint64, txPublicKey, oneTimeKey crypto.PublicKey, image crypto.KeyImage, unlockTime, blockHeight uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := storedOutput{
		ID:             outputID(txHash, outputIndex),
		TxHash:         hex.EncodeToString(txHash[:]),
		OutputIndex:    outputIndex,
		SubwalletIndex: subwalletIndex,
		Amount:         amount,
		GlobalIndex:    globalIndex,
		TxPublicKey:    hex.EncodeToString(txPublicKey[:]),
		OneTimeKey:     hex.EncodeToString(oneTimeKey[:]),
		KeyImage:       hex.EncodeToString(image[:]),
		UnlockTime:     unlockTime,
		BlockHeight:    blockHeight,
	}
	return c.db.Save(&rec)
}

func outputID(txHash crypto.Hash, outputIndex int) string {
	return hex.EncodeToString(txHash[:]) + ":" + itoa(outputIndex)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// MarkSpent flags an owned output (identified by its key image) as spent
// and reports which subwallet owned it and for how much, so the caller can
// attribute the spend to a transfer. found is false if the key image does
// not belong to any output this wallet owns.
func (c *TransfersContainer) MarkSpent(image crypto.KeyImage) (subwalletIndex int, amount uint64, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rec storedOutput
	if err := c.db.One("KeyImage", hex.EncodeToString(image[:]), &rec); err != nil {
		if err == storm.ErrNotFound {
			return 0, 0, false, nil // a foreign key image spending an output we never owned
		}
		return 0, 0, false, err
	}
	rec.Spent = true
	if err := c.db.Save(&rec); err != nil {
		return 0, 0, false, err
	}
	return rec.SubwalletIndex, rec.Amount, true, nil
}

// UnspentOutputs returns every unspent output owned by one of the given
// subwallet indexes (nil means every subwallet), unlocked as of
// currentHeight.
func (c *TransfersContainer) UnspentOutputs(subwalletIndexes []int, currentHeight uint64) ([]storedOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	matchers := []q.Matcher{q.Eq("Spent", false)}
	if len(subwalletIndexes) > 0 {
		matchers = append(matchers, q.In("SubwalletIndex", subwalletIndexes))
	}

	var recs []storedOutput
	if err := c.db.Select(matchers...).Find(&recs); err != nil && err != storm.ErrNotFound {
		return nil, err
	}

	out := recs[:0]
	for _, rec := range recs {
		if rec.BlockHeight+types.TransactionSpendableAge <= currentHeight {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Balance sums unspent outputs owned by the given subwallets into an
// unlocked and a locked (not yet spendable) total.
func (c *TransfersContainer) Balance(subwalletIndexes []int, currentHeight uint64) (unlocked, locked uint64, err error) {
	c.mu.Lock()
	matchers := []q.Matcher{q.Eq("Spent", false)}
	if len(subwalletIndexes) > 0 {
		matchers = append(matchers, q.In("SubwalletIndex", subwalletIndexes))
	}
	var recs []storedOutput
	err = c.db.Select(matchers...).Find(&recs)
	c.mu.Unlock()
	if err != nil && err != storm.ErrNotFound {
		return 0, 0, err
	}

	for _, rec := range recs {
		if rec.BlockHeight+types.TransactionSpendableAge <= currentHeight {
			unlocked += rec.Amount
		} else {
			locked += rec.Amount
		}
	}
	return unlocked, locked, nil
}

// RevertAboveHeight deletes every transaction and owned output recorded at
// a height greater than keepHeight, and un-marks as spent any output whose
// spending transaction is being reverted. Used by the synchronizer to
// recover from a detected chain reorganization.
func (c *TransfersContainer) RevertAboveHeight(keepHeight uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var txs []storedTransaction
	if err := c.db.Select(q.Gt("BlockHeight", keepHeight)).Find(&txs); err != nil && err != storm.ErrNotFound {
		return err
	}
	for _, tx := range txs {
		if err := c.db.DeleteStruct(&tx); err != nil && err != storm.ErrNotFound {
			return err
		}
	}

	var outs []storedOutput
	if err := c.db.Select(q.Gt("BlockHeight", keepHeight)).Find(&outs); err != nil && err != storm.ErrNotFound {
		return err
	}
	for _, out := range outs {
		if err := c.db.DeleteStruct(&out); err != nil && err != storm.ErrNotFound {
			return err
		}
	}
	return nil
}
