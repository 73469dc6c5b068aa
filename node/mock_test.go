package node

import (
	"context"
	"testing"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

func TestMockGetWalletSyncDataFiltersByHeight(t *testing.T) {
	m := NewMock()
	m.Blocks = []types.WalletBlockInfo{
		{Header: types.BlockHeader{Height: 1}},
		{Header: types.BlockHeader{Height: 2}},
		{Header: types.BlockHeader{Height: 3}},
	}

	result, err := m.GetWalletSyncData(context.Background(), nil, 2, nil)
	if err != nil {
		t.Fatalf("GetWalletSyncData: %v", err)
	}
	if len(result.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(result.Blocks))
	}
	if result.CurrentHeight != 3 {
		t.Fatalf("got CurrentHeight %d, want 3", result.CurrentHeight)
	}
}

func TestMockBusyCallsDecrement(t *testing.T) {
	m := NewMock()
	m.BusyCalls = 2

	ctx := context.Background()
	if _, err := m.GetInfo(ctx); !isNodeBusy(err) {
		t.Fatalf("call 1: got %v, want ErrNodeBusy", err)
	}
	if _, err := m.GetInfo(ctx); !isNodeBusy(err) {
		t.Fatalf("call 2: got %v, want ErrNodeBusy", err)
	}
	if _, err := m.GetInfo(ctx); err != nil {
		t.Fatalf("call 3: got %v, want nil", err)
	}
}

func TestMockSendRawTransactionRecords(t *testing.T) {
	m := NewMock()
	raw := []byte{1, 2, 3}
	if err := m.SendRawTransaction(context.Background(), raw); err != nil {
		t.Fatalf("SendRawTransaction: %v", err)
	}
	if len(m.Sent) != 1 || string(m.Sent[0]) != string(raw) {
		t.Fatalf("got Sent %v, want [%v]", m.Sent, raw)
	}
}

func TestMockGetRandomOutsForAmounts(t *testing.T) {
	m := NewMock()
	var key crypto.PublicKey
	key[0] = 0x42
	m.RandomOuts[100] = []RandomOut{{GlobalIndex: 1, Key: key}}

	out, err := m.GetRandomOutsForAmounts(context.Background(), []uint64{100, 200}, 3)
	if err != nil {
		t.Fatalf("GetRandomOutsForAmounts: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d amount groups, want 2", len(out))
	}
	if len(out[0].Outs) != 1 || len(out[1].Outs) != 0 {
		t.Fatalf("unexpected decoy counts: %+v", out)
	}
}

func isNodeBusy(err error) bool {
	ce, ok := err.(*types.CoreError)
	return ok && ce.Code == types.ErrNodeBusy
}
