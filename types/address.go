package types

import (
	"bytes"
	"encoding/hex"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/pkg/encoding/wirebin"
)

const (
	// checksumSize is the number of bytes of the address checksum appended
	// before base58 encoding.
	checksumSize = 4

	// IntegratedAddressPrefix tags an address that also carries a payment
	// id, distinguishing it from a plain address at decode time.
	IntegratedAddressPrefix = AddressPrefix + 1
)

// Address is a CryptoNote wallet address: a public spend key and a public
// view key, base58-encoded together with a network prefix and checksum.
type Address struct {
	SpendPublicKey crypto.PublicKey
	ViewPublicKey  crypto.PublicKey
}

// IntegratedAddress is an Address bundled with a payment id, used to let a
// merchant identify which customer a payment came from without a separate
// out-of-band channel.
type IntegratedAddress struct {
	Address
	PaymentID [PaymentIDSize]byte
}

// String encodes the address as the CryptoNote base58 address string.
func (a Address) String() string {
	return encodeAddress(AddressPrefix, a.SpendPublicKey, a.ViewPublicKey, nil)
}

// ParseAddress decodes a base58 address string produced by String.
func ParseAddress(s string) (Address, error) {
	prefix, spend, view, paymentID, err := decodeAddress(s)
	if err != nil {
		return Address{}, err
	}
	if prefix != AddressPrefix || paymentID != nil {
		return Address{}, NewError(ErrAddressWrongPrefix)
	}
	return Address{SpendPublicKey: spend, ViewPublicKey: view}, nil
}

// String encodes the integrated address as the CryptoNote base58 address
// string, with the payment id folded into the prefix-tagged payload.
func (ia IntegratedAddress) String() string {
	return encodeAddress(IntegratedAddressPrefix, ia.SpendPublicKey, ia.ViewPublicKey, ia.PaymentID[:])
}

// ParseIntegratedAddress decodes a base58 integrated address string.
func ParseIntegratedAddress(s string) (IntegratedAddress, error) {
	prefix, spend, view, paymentID, err := decodeAddress(s)
	if err != nil {
		return IntegratedAddress{}, err
	}
	if prefix != IntegratedAddressPrefix || paymentID == nil {
		return IntegratedAddress{}, NewError(ErrAddressWrongPrefix)
	}
	ia := IntegratedAddress{Address: Address{SpendPublicKey: spend, ViewPublicKey: view}}
	copy(ia.PaymentID[:], paymentID)
	return ia, nil
}

func encodeAddress(prefix uint64, spend, view crypto.PublicKey, paymentID []byte) string {
	var buf bytes.Buffer
	wirebin.MarshalVarInt(&buf, prefix)
	buf.Write(spend[:])
	buf.Write(view[:])
	if paymentID != nil {
		buf.Write(paymentID)
	}
	payload := buf.Bytes()

	checksum := crypto.HashBytes(payload)
	full := append(append([]byte{}, payload...), checksum[:checksumSize]...)
	return wirebin.EncodeBase58(full)
}

func decodeAddress(s string) (prefix uint64, spend, view crypto.PublicKey, paymentID []byte, err error) {
	raw, decErr := wirebin.DecodeBase58(s)
	if decErr != nil {
		err = NewError(ErrAddressNotBase58)
		return
	}
	if len(raw) <= checksumSize {
		err = NewError(ErrAddressWrongLength)
		return
	}

	payload := raw[:len(raw)-checksumSize]
	wantChecksum := raw[len(raw)-checksumSize:]
	gotChecksum := crypto.HashBytes(payload)
	if !bytes.Equal(wantChecksum, gotChecksum[:checksumSize]) {
		err = NewError(ErrAddressNotValid)
		return
	}

	r := bytes.NewReader(payload)
	prefix, decErr = wirebin.UnmarshalVarInt(r)
	if decErr != nil {
		err = NewError(ErrAddressWrongLength)
		return
	}

	remaining := payload[len(payload)-r.Len():]
	switch {
	case prefix == AddressPrefix && len(remaining) == crypto.PublicKeySize*2:
		copy(spend[:], remaining[:crypto.PublicKeySize])
		copy(view[:], remaining[crypto.PublicKeySize:])
	case prefix == IntegratedAddressPrefix && len(remaining) == crypto.PublicKeySize*2+PaymentIDSize:
		copy(spend[:], remaining[:crypto.PublicKeySize])
		copy(view[:], remaining[crypto.PublicKeySize:crypto.PublicKeySize*2])
		paymentID = remaining[crypto.PublicKeySize*2:]
	default:
		err = NewError(ErrAddressWrongLength)
		return
	}
	return
}

// PaymentIDFromHex parses a hex-encoded 32-byte payment id.
func PaymentIDFromHex(s string) ([PaymentIDSize]byte, error) {
	var id [PaymentIDSize]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != PaymentIDSize {
		return id, NewError(ErrWrongPaymentIDFormat)
	}
	copy(id[:], b)
	return id, nil
}
