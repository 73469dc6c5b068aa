package types

// Network-wide constants governing mixin policy, pool lifetime and output
// decomposition. These mirror the abstract mixin-by-height table and pool
// policy of the design documentation; values are chosen to be internally
// consistent rather than matched against any specific deployed network.
const (
	// AddressPrefix is the CryptoNote base58 address tag prepended before
	// encoding the spend/view public keys and checksum.
	AddressPrefix = 0x3564c // arbitrary wallet-core network tag

	// PaymentIDSize is the length, in bytes, of a payment id.
	PaymentIDSize = 32

	// KeySize is the curve point/scalar size used throughout the wire
	// formats in this package;
	// kept here (rather than re-imported from crypto) to avoid a cyclic
	// package dependency, since crypto never needs to import types.
	KeySize = 32

	// HeightV1, HeightV2 and HeightV3 are the activation heights of the
	// three historical mixin policy tiers.
	HeightV1 = 100000
	HeightV2 = 250000
	HeightV3 = 500000

	MinMixinV0, MaxMixinV0, DefaultMixinV0 = 0, 1<<31 - 1, 0
	MinMixinV1, MaxMixinV1, DefaultMixinV1 = 0, 100, 3
	MinMixinV2, MaxMixinV2, DefaultMixinV2 = 2, 100, 4
	MinMixinV3, MaxMixinV3, DefaultMixinV3 = 3, 7, 5

	// FusionMinInputCount and FusionMaxOutputCount bound the number of
	// inputs a fusion transaction must consume and the number of outputs it
	// may produce as a result of denomination bucketing.
	FusionMinInputCount  = 12
	FusionMaxOutputCount = 4

	// PoolTxLifetime is the default duration, in seconds, a transaction may
	// remain in the local pool view before the cleaner evicts it.
	PoolTxLifetime = 24 * 60 * 60

	// RecentlyDeletedSuppressTimeout is how long, in seconds, a deleted
	// transaction hash is rejected from being re-pushed into the pool.
	RecentlyDeletedSuppressTimeout = 7 * 60 * 60

	// MaxExtraSize bounds the size, in bytes, of a transaction's extra
	// field before the cleaner considers it abusive and evicts it.
	MaxExtraSize = 1060

	// TransactionSpendableAge is the number of confirmations an output must
	// accrue before it is considered unlocked/spendable.
	TransactionSpendableAge = 10
)

// MixinRange returns the inclusive [min, max] mixin bounds and the default
// mixin value in effect at the given blockchain height.
func MixinRange(height uint64) (min, max, def int) {
	switch {
	case height >= HeightV3:
		return MinMixinV3, MaxMixinV3, DefaultMixinV3
	case height >= HeightV2:
		return MinMixinV2, MaxMixinV2, DefaultMixinV2
	case height >= HeightV1:
		return MinMixinV1, MaxMixinV1, DefaultMixinV1
	default:
		return MinMixinV0, MaxMixinV0, DefaultMixinV0
	}
}

// ValidateMixin reports whether mixin is within the allowed range for the
// given height.
func ValidateMixin(mixin int, height uint64) error {
	min, max, _ := MixinRange(height)
	if mixin < min {
		return NewError(ErrMixinBelowThreshold)
	}
	if mixin > max {
		return NewError(ErrMixinAboveThreshold)
	}
	return nil
}
