package types

import "github.com/kryptokrona/walletcore-go/crypto"

// TransferDestination names a transfer's counterparty side for the purpose
// of building or reporting on a transaction: the address funds move to or
// from, and the amount attributed to it. PaymentID is set when Address was
// resolved from an integrated address, and must agree with every other
// destination's PaymentID (and any explicit TransactionParameters.PaymentID)
// in the same transaction.
type TransferDestination struct {
	Address   Address
	Amount    uint64
	PaymentID []byte
}

// NewIntegratedDestination builds a TransferDestination from an integrated
// address, carrying its embedded payment id along for conflict checking.
func NewIntegratedDestination(ia IntegratedAddress, amount uint64) TransferDestination {
	return TransferDestination{
		Address:   ia.Address,
		Amount:    amount,
		PaymentID: append([]byte{}, ia.PaymentID[:]...),
	}
}

// TransferType classifies a WalletTransfer's role within its transaction.
type TransferType int

const (
	TransferUsual TransferType = iota
	TransferDonation
	TransferChange
)

// WalletTransfer is one destination-attributed movement of funds within a
// WalletTransaction, from the perspective of a single subwallet.
type WalletTransfer struct {
	SubwalletIndex int
	Amount         int64 // positive: received, negative: sent
	Type           TransferType
}

// WalletTransaction is the public, API-facing view of a transaction that
// touches one or more of the wallet's subwallets: the aggregate of the
// transfers container's internal bookkeeping, shaped for a caller to list or
// inspect.
type WalletTransaction struct {
	Hash        crypto.Hash
	BlockHeight uint64
	Timestamp   uint64
	PaymentID   []byte
	Fee         uint64
	UnlockTime  uint64
	IsCoinbase  bool
	Transfers   []WalletTransfer
	TotalInput  uint64
	TotalOutput uint64
}

// TransactionParameters is the caller-supplied input to the transaction
// builder: the destinations to pay, the mixin/ring size to use, and
// the optional extras a caller may attach.
type TransactionParameters struct {
	Destinations     []TransferDestination
	Mixin            int
	PaymentID        []byte
	Extra            []byte
	UnlockTime       uint64
	Fee              uint64
	ChangeAddress    *Address
	SubwalletIndexes []int // restrict fund selection to these subwallets; nil means all
}
