package wirebin

import (
	"bytes"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40, ^uint64(0)}
	for _, v := range cases {
		var buf bytes.Buffer
		if err := MarshalVarInt(&buf, v); err != nil {
			t.Fatalf("MarshalVarInt(%d): %v", v, err)
		}
		got, err := UnmarshalVarInt(&buf)
		if err != nil {
			t.Fatalf("UnmarshalVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("got %d, want %d", got, v)
		}
	}
}

func TestVarIntSmallValuesAreCompact(t *testing.T) {
	var buf bytes.Buffer
	if err := MarshalVarInt(&buf, 1); err != nil {
		t.Fatalf("MarshalVarInt: %v", err)
	}
	if buf.Len() != 1 {
		t.Fatalf("got %d encoded bytes for value 1, want 1", buf.Len())
	}
}

func TestBase58RoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x00, 0x00, 0x01},
		bytes.Repeat([]byte{0xff}, 32),
		[]byte("cryptonote one-time address bytes padded out"),
	}
	for _, data := range cases {
		encoded := EncodeBase58(data)
		decoded, err := DecodeBase58(encoded)
		if err != nil {
			t.Fatalf("DecodeBase58(%q): %v", encoded, err)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatalf("got %x, want %x", decoded, data)
		}
	}
}

func TestBase58RejectsInvalidCharacter(t *testing.T) {
	if _, err := DecodeBase58("0OIl"); err == nil {
		t.Fatal("expected decoding characters outside the alphabet to fail")
	}
}

func TestUint32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := MarshalUint32(&buf, 0xdeadbeef); err != nil {
		t.Fatalf("MarshalUint32: %v", err)
	}
	got, err := UnmarshalUint32(&buf)
	if err != nil {
		t.Fatalf("UnmarshalUint32: %v", err)
	}
	if got != 0xdeadbeef {
		t.Fatalf("got %x, want deadbeef", got)
	}
}

func TestUint24RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := MarshalUint24(&buf, 0x00abcdef); err != nil {
		t.Fatalf("MarshalUint24: %v", err)
	}
	got, err := UnmarshalUint24(&buf)
	if err != nil {
		t.Fatalf("UnmarshalUint24: %v", err)
	}
	if got != 0x00abcdef {
		t.Fatalf("got %x, want abcdef", got)
	}
}
