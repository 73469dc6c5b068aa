package wallet

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

// boxedAgePrefixShort and boxedAgePrefixLong are how many hex characters of a transaction's extra
// field are skipped before attempting to parse a boxed timestamp out of the
// remainder. The original wallet tries 66 first and falls back to 78 since
// the leading tx-public-key tag can be followed by an optional payment id
// nonce of varying length.
const (
	boxedAgePrefixShort = 66
	boxedAgePrefixLong  = 78
)

// PendingTransaction is one transaction this wallet has pushed to (or
// observed in) the node's pool and is tracking for eviction.
type PendingTransaction struct {
	Hash        crypto.Hash
	Extra       []byte
	ReceiveTime uint64
}

// PoolCleaner evicts pool-tracked transactions that have aged out,
// grown an oversized extra field, carry a boxed timestamp indicating they're
// stale or from the future, or no longer satisfy the current mixin policy,
// remembering each eviction for a timeout window so a racing re-push of the
// same transaction is rejected rather than silently re-admitted.
type PoolCleaner struct {
	mu      sync.Mutex
	pending map[crypto.Hash]PendingTransaction
	deleted map[crypto.Hash]uint64 // hash -> deletion time

	timeout uint64 // seconds a hash stays in the recently-deleted set
	now     func() uint64
}

// NewPoolCleaner builds a cleaner with the given recently-deleted suppression
// timeout. now is injectable for deterministic tests; production callers
// should pass a wall-clock source.
func NewPoolCleaner(timeout uint64, now func() uint64) *PoolCleaner {
	return &PoolCleaner{
		pending: make(map[crypto.Hash]PendingTransaction),
		deleted: make(map[crypto.Hash]uint64),
		timeout: timeout,
		now:     now,
	}
}

// Track begins tracking a transaction observed in (or pushed to) the pool.
// It refuses transactions that were recently deleted and not yet past the
// suppression timeout, mirroring pushTransaction's recently-deleted check.
func (c *PoolCleaner) Track(hash crypto.Hash, extra []byte, receiveTime uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRecentlyDeletedLocked(hash) {
		return false
	}
	c.pending[hash] = PendingTransaction{Hash: hash, Extra: extra, ReceiveTime: receiveTime}
	return true
}

// Untrack stops tracking a transaction, e.g. once it confirms in a block.
func (c *PoolCleaner) Untrack(hash crypto.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, hash)
}

// Clean evaluates every tracked pending transaction against the eviction
// policy and returns the hashes removed. height is used to validate each
// transaction's ring size against the current mixin policy.
func (c *PoolCleaner) Clean(height uint64, ringSizes map[crypto.Hash]int) []crypto.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var evicted []crypto.Hash

	for hash, tx := range c.pending {
		age := now - tx.ReceiveTime
		boxedAge := boxedTransactionAge(tx.Extra, now)

		mixinOK := true
		if mixin, ok := ringSizes[hash]; ok {
			mixinOK = types.ValidateMixin(mixin-1, height) == nil
		}

		if age >= types.PoolTxLifetime ||
			uint64(len(tx.Extra)) > types.MaxExtraSize ||
			boxedAge >= int64(types.PoolTxLifetime) ||
			boxedAge < 0 ||
			!mixinOK {
			delete(c.pending, hash)
			c.deleted[hash] = now
			evicted = append(evicted, hash)
		}
	}

	c.cleanRecentlyDeletedLocked(now)
	return evicted
}

func (c *PoolCleaner) isRecentlyDeletedLocked(hash crypto.Hash) bool {
	deletedAt, ok := c.deleted[hash]
	if !ok {
		return false
	}
	return c.now()-deletedAt < c.timeout
}

func (c *PoolCleaner) cleanRecentlyDeletedLocked(now uint64) {
	for hash, deletedAt := range c.deleted {
		if now-deletedAt >= c.timeout {
			delete(c.deleted, hash)
		}
	}
}

// boxedTransactionAge best-effort extracts a JSON `{"t": <unix-seconds>}`
// payload embedded in extra after a fixed-length prefix (covering the
// mandatory tx-public-key tag and an optional payment-id nonce), and returns
// now minus that timestamp. It returns 0 if no such payload can be parsed;
// this mirrors the original's behavior of swallowing the parse failure
// rather than treating it as an eviction signal by itself. Note this means a
// malformed boxed timestamp is indistinguishable from one that's simply
// absent: an open question left unresolved the same way upstream leaves it.
func boxedTransactionAge(extra []byte, now uint64) int64 {
	hexified := hexEncode(extra)
	if t, ok := parseBoxedTimestamp(hexified, boxedAgePrefixShort); ok {
		return int64(now) - t
	}
	if t, ok := parseBoxedTimestamp(hexified, boxedAgePrefixLong); ok {
		return int64(now) - t
	}
	return 0
}

func parseBoxedTimestamp(hexified string, skip int) (int64, bool) {
	if len(hexified) <= skip {
		return 0, false
	}
	payload := hexToASCII(hexified[skip:])

	var body struct {
		T int64 `json:"t"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return 0, false
	}
	return body.T, true
}

func hexEncode(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = digits[v>>4]
		out[i*2+1] = digits[v&0xf]
	}
	return string(out)
}

func hexToASCII(hexified string) string {
	if len(hexified)%2 != 0 {
		hexified = hexified[:len(hexified)-1]
	}
	out := make([]byte, 0, len(hexified)/2)
	for i := 0; i+1 < len(hexified); i += 2 {
		v, err := strconv.ParseUint(hexified[i:i+2], 16, 8)
		if err != nil {
			return ""
		}
		out = append(out, byte(v))
	}
	return string(out)
}

// WallClockNow is the production time source for NewPoolCleaner.
func WallClockNow() uint64 {
	return uint64(time.Now().Unix())
}
