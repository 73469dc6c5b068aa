package types

import (
	"errors"
	"io"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/pkg/encoding/wirebin"
)

// Input tags distinguish which of the input variants follows in the wire
// encoding, matching the CryptoNote transaction prefix format.
const (
	inputTagBase byte = 0xff
	inputTagKey  byte = 0x02

	outputTagKey byte = 0x02
)

var (
	// ErrUnknownInputTag is returned when a transaction input's leading tag
	// byte does not match any known input variant.
	ErrUnknownInputTag = errors.New("transaction: unknown input tag")

	// ErrUnknownOutputTag is returned when a transaction output's leading tag
	// byte does not match any known output variant.
	ErrUnknownOutputTag = errors.New("transaction: unknown output tag")

	// ErrExtraTooLarge is returned when a transaction's extra field exceeds
	// MaxExtraSize.
	ErrExtraTooLarge = errors.New("transaction: extra field too large")
)

// TransactionInput is either a BaseInput (block reward) or a KeyInput
// (spending a ring of prior outputs).
type TransactionInput interface {
	wirebin.SelfMarshaler
	wirebin.SelfUnmarshaler
	isTransactionInput()
}

// BaseInput is the sole input of a coinbase (miner reward) transaction.
type BaseInput struct {
	BlockIndex uint64
}

func (BaseInput) isTransactionInput() {}

// MarshalWire writes the input's tag byte followed by its block index.
func (in BaseInput) MarshalWire(w io.Writer) error {
	if _, err := w.Write([]byte{inputTagBase}); err != nil {
		return err
	}
	return wirebin.MarshalVarInt(w, in.BlockIndex)
}

// UnmarshalWire reads a BaseInput's body; the caller has already consumed
// the tag byte.
func (in *BaseInput) UnmarshalWire(r io.Reader) error {
	v, err := wirebin.UnmarshalVarInt(r)
	if err != nil {
		return err
	}
	in.BlockIndex = v
	return nil
}

// KeyInput spends one output out of a ring of decoys. KeyOffsets holds the
// ring members' global indexes in absolute form in memory; the wire
// encoding stores the first offset absolute and every subsequent one as a
// positive delta from its predecessor, per the canonical CryptoNote input
// format. Offsets must be ascending for the deltas to stay non-negative.
type KeyInput struct {
	Amount     uint64
	KeyOffsets []uint64
	KeyImage   crypto.KeyImage
}

func (KeyInput) isTransactionInput() {}

// MarshalWire writes the input's tag byte followed by its body, delta-
// encoding KeyOffsets on the wire.
func (in KeyInput) MarshalWire(w io.Writer) error {
	if _, err := w.Write([]byte{inputTagKey}); err != nil {
		return err
	}
	if err := wirebin.MarshalVarInt(w, in.Amount); err != nil {
		return err
	}
	if err := wirebin.MarshalVarInt(w, uint64(len(in.KeyOffsets))); err != nil {
		return err
	}
	var prev uint64
	for i, off := range in.KeyOffsets {
		delta := off
		if i > 0 {
			delta = off - prev
		}
		if err := wirebin.MarshalVarInt(w, delta); err != nil {
			return err
		}
		prev = off
	}
	_, err := w.Write(in.KeyImage[:])
	return err
}

// UnmarshalWire reads a KeyInput's body; the caller has already consumed the
// tag byte. Deltas are accumulated back into absolute offsets.
func (in *KeyInput) UnmarshalWire(r io.Reader) error {
	amount, err := wirebin.UnmarshalVarInt(r)
	if err != nil {
		return err
	}
	in.Amount = amount

	count, err := wirebin.UnmarshalVarInt(r)
	if err != nil {
		return err
	}
	in.KeyOffsets = make([]uint64, count)
	var prev uint64
	for i := range in.KeyOffsets {
		delta, err := wirebin.UnmarshalVarInt(r)
		if err != nil {
			return err
		}
		off := delta
		if i > 0 {
			off = prev + delta
		}
		in.KeyOffsets[i] = off
		prev = off
	}

	_, err = io.ReadFull(r, in.KeyImage[:])
	return err
}

// decodeInput reads a tagged input from r.
func decodeInput(r io.Reader) (TransactionInput, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, err
	}
	switch tag[0] {
	case inputTagBase:
		in := new(BaseInput)
		if err := in.UnmarshalWire(r); err != nil {
			return nil, err
		}
		return in, nil
	case inputTagKey:
		in := new(KeyInput)
		if err := in.UnmarshalWire(r); err != nil {
			return nil, err
		}
		return in, nil
	default:
		return nil, ErrUnknownInputTag
	}
}

// TransactionOutput is a one-time destination key carrying an amount.
type TransactionOutput struct {
	Amount uint64
	Key    crypto.PublicKey
}

// MarshalWire writes the output's amount, then its tag byte and key.
func (out TransactionOutput) MarshalWire(w io.Writer) error {
	if err := wirebin.MarshalVarInt(w, out.Amount); err != nil {
		return err
	}
	if _, err := w.Write([]byte{outputTagKey}); err != nil {
		return err
	}
	_, err := w.Write(out.Key[:])
	return err
}

// UnmarshalWire reads an output written by MarshalWire.
func (out *TransactionOutput) UnmarshalWire(r io.Reader) error {
	amount, err := wirebin.UnmarshalVarInt(r)
	if err != nil {
		return err
	}
	out.Amount = amount

	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return err
	}
	if tag[0] != outputTagKey {
		return ErrUnknownOutputTag
	}
	_, err = io.ReadFull(r, out.Key[:])
	return err
}

// TransactionPrefix is the signature-independent body of a transaction: the
// part that is CN-hashed to produce the prefix hash ring signatures are
// computed over.
type TransactionPrefix struct {
	Version    uint64
	UnlockTime uint64
	Inputs     []TransactionInput
	Outputs    []TransactionOutput
	Extra      []byte
}

// MarshalWire writes the prefix in canonical CryptoNote wire order.
func (p TransactionPrefix) MarshalWire(w io.Writer) error {
	if err := wirebin.MarshalVarInt(w, p.Version); err != nil {
		return err
	}
	if err := wirebin.MarshalVarInt(w, p.UnlockTime); err != nil {
		return err
	}
	if err := wirebin.MarshalVarInt(w, uint64(len(p.Inputs))); err != nil {
		return err
	}
	for _, in := range p.Inputs {
		if err := in.MarshalWire(w); err != nil {
			return err
		}
	}
	if err := wirebin.MarshalVarInt(w, uint64(len(p.Outputs))); err != nil {
		return err
	}
	for _, out := range p.Outputs {
		if err := out.MarshalWire(w); err != nil {
			return err
		}
	}
	if err := wirebin.MarshalVarInt(w, uint64(len(p.Extra))); err != nil {
		return err
	}
	_, err := w.Write(p.Extra)
	return err
}

// UnmarshalWire reads a prefix written by MarshalWire.
func (p *TransactionPrefix) UnmarshalWire(r io.Reader) error {
	version, err := wirebin.UnmarshalVarInt(r)
	if err != nil {
		return err
	}
	p.Version = version

	unlockTime, err := wirebin.UnmarshalVarInt(r)
	if err != nil {
		return err
	}
	p.UnlockTime = unlockTime

	inCount, err := wirebin.UnmarshalVarInt(r)
	if err != nil {
		return err
	}
	p.Inputs = make([]TransactionInput, inCount)
	for i := range p.Inputs {
		in, err := decodeInput(r)
		if err != nil {
			return err
		}
		p.Inputs[i] = in
	}

	outCount, err := wirebin.UnmarshalVarInt(r)
	if err != nil {
		return err
	}
	p.Outputs = make([]TransactionOutput, outCount)
	for i := range p.Outputs {
		if err := p.Outputs[i].UnmarshalWire(r); err != nil {
			return err
		}
	}

	extraLen, err := wirebin.UnmarshalVarInt(r)
	if err != nil {
		return err
	}
	if extraLen > MaxExtraSize {
		return ErrExtraTooLarge
	}
	p.Extra = make([]byte, extraLen)
	_, err = io.ReadFull(r, p.Extra)
	return err
}

// Hash returns the CN-hash of the prefix's canonical encoding: the value
// ring signatures are computed and checked against.
func (p TransactionPrefix) Hash() (crypto.Hash, error) {
	b, err := wirebin.Marshal(p)
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.HashBytes(b), nil
}

// Transaction is a signed transaction: a prefix plus one ring signature per
// KeyInput, in input order. BaseInput transactions (coinbase) carry no
// signatures.
type Transaction struct {
	TransactionPrefix
	Signatures []crypto.RingSignature
}

// MarshalWire writes the transaction prefix followed by its signatures.
func (tx Transaction) MarshalWire(w io.Writer) error {
	if err := tx.TransactionPrefix.MarshalWire(w); err != nil {
		return err
	}
	for _, sig := range tx.Signatures {
		for _, el := range sig {
			if _, err := w.Write(el.C[:]); err != nil {
				return err
			}
			if _, err := w.Write(el.R[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

// UnmarshalWire reads a transaction written by MarshalWire. Per-input ring
// sizes must already be known from the prefix's KeyInput.KeyOffsets lengths.
func (tx *Transaction) UnmarshalWire(r io.Reader) error {
	if err := tx.TransactionPrefix.UnmarshalWire(r); err != nil {
		return err
	}
	tx.Signatures = make([]crypto.RingSignature, len(tx.Inputs))
	for i, in := range tx.Inputs {
		keyIn, ok := in.(*KeyInput)
		if !ok {
			continue // BaseInput carries no signature
		}
		ringSize := len(keyIn.KeyOffsets)
		sig := make(crypto.RingSignature, ringSize)
		for j := range sig {
			if _, err := io.ReadFull(r, sig[j].C[:]); err != nil {
				return err
			}
			if _, err := io.ReadFull(r, sig[j].R[:]); err != nil {
				return err
			}
		}
		tx.Signatures[i] = sig
	}
	return nil
}

// Hash returns the CN-hash identifying this transaction, computed over its
// full encoding including signatures.
func (tx Transaction) Hash() (crypto.Hash, error) {
	b, err := wirebin.Marshal(tx)
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.HashBytes(b), nil
}
