package wallet

import (
	"testing"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

func clockFrom(seconds *uint64) func() uint64 {
	return func() uint64 { return *seconds }
}

func TestPoolCleanerEvictsAgedTransaction(t *testing.T) {
	now := uint64(1000)
	cleaner := NewPoolCleaner(types.RecentlyDeletedSuppressTimeout, clockFrom(&now))

	var hash crypto.Hash
	hash[0] = 1
	cleaner.Track(hash, nil, now)

	now += types.PoolTxLifetime + 1
	evicted := cleaner.Clean(0, nil)
	if len(evicted) != 1 || evicted[0] != hash {
		t.Fatalf("got %v, want [hash]", evicted)
	}
}

func TestPoolCleanerKeepsFreshTransaction(t *testing.T) {
	now := uint64(1000)
	cleaner := NewPoolCleaner(types.RecentlyDeletedSuppressTimeout, clockFrom(&now))

	var hash crypto.Hash
	hash[0] = 1
	cleaner.Track(hash, nil, now)

	now += 10
	evicted := cleaner.Clean(0, nil)
	if len(evicted) != 0 {
		t.Fatalf("got %v, want no evictions", evicted)
	}
}

func TestPoolCleanerEvictsOversizedExtra(t *testing.T) {
	now := uint64(1000)
	cleaner := NewPoolCleaner(types.RecentlyDeletedSuppressTimeout, clockFrom(&now))

	var hash crypto.Hash
	hash[0] = 1
	bigExtra := make([]byte, types.MaxExtraSize+1)
	cleaner.Track(hash, bigExtra, now)

	evicted := cleaner.Clean(0, nil)
	if len(evicted) != 1 || evicted[0] != hash {
		t.Fatalf("got %v, want the oversized transaction evicted", evicted)
	}
}

func TestPoolCleanerEvictsMixinViolation(t *testing.T) {
	now := uint64(1000)
	cleaner := NewPoolCleaner(types.RecentlyDeletedSuppressTimeout, clockFrom(&now))

	var hash crypto.Hash
	hash[0] = 1
	cleaner.Track(hash, nil, now)

	// A ring size of 1 (mixin 0) is below the V3 mixin floor of 3, so the
	// cleaner should evict it once that policy tier is active.
	evicted := cleaner.Clean(types.HeightV3, map[crypto.Hash]int{hash: 1})
	if len(evicted) != 1 || evicted[0] != hash {
		t.Fatalf("got %v, want the mixin-violating transaction evicted", evicted)
	}
}

func TestPoolCleanerSuppressesRecentlyDeletedReTrack(t *testing.T) {
	now := uint64(1000)
	cleaner := NewPoolCleaner(100, clockFrom(&now))

	var hash crypto.Hash
	hash[0] = 1
	cleaner.Track(hash, nil, now)
	now += types.PoolTxLifetime + 1
	cleaner.Clean(0, nil)

	now += 1 // still inside the suppression window
	if cleaner.Track(hash, nil, now) {
		t.Fatal("expected re-tracking a recently evicted hash to be refused")
	}

	now += 200 // past the suppression timeout
	if !cleaner.Track(hash, nil, now) {
		t.Fatal("expected tracking to succeed once the suppression window has passed")
	}
}

func TestPoolCleanerUntrack(t *testing.T) {
	now := uint64(1000)
	cleaner := NewPoolCleaner(types.RecentlyDeletedSuppressTimeout, clockFrom(&now))

	var hash crypto.Hash
	hash[0] = 1
	cleaner.Track(hash, nil, now)
	cleaner.Untrack(hash)

	now += types.PoolTxLifetime + 1
	evicted := cleaner.Clean(0, nil)
	if len(evicted) != 0 {
		t.Fatalf("got %v, want no evictions for an untracked transaction", evicted)
	}
}

func TestBoxedTransactionAgeNoTimestamp(t *testing.T) {
	if age := boxedTransactionAge([]byte{0x01, 0x02, 0x03}, 1000); age != 0 {
		t.Fatalf("got %d, want 0 for extra with no boxed timestamp", age)
	}
}
