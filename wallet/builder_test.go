package wallet

import (
	"context"
	"testing"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/node"
	"github.com/kryptokrona/walletcore-go/types"
)

// seedOwnedOutput registers subwallet sw as owning a recognizable output of
// the given amount, bypassing ProcessBlock so builder tests can set up
// spendable funds directly.
func seedOwnedOutput(t *testing.T, transfers *TransfersContainer, registry *SubwalletRegistry, sw Subwallet, amount, globalIndex, blockHeight uint64) {
	t.Helper()
	txSecret, txPublic := crypto.GenerateKeyPair()
	viewDerivation, err := crypto.GenerateKeyDerivation(registry.ViewPublicKey, txSecret)
	if err != nil {
		t.Fatalf("GenerateKeyDerivation: %v", err)
	}
	oneTimeKey, err := crypto.DerivePublicKey(viewDerivation, 0, sw.SpendPublicKey)
	if err != nil {
		t.Fatalf("DerivePublicKey: %v", err)
	}

	recvDerivation, err := crypto.GenerateKeyDerivation(txPublic, registry.ViewSecretKey)
	if err != nil {
		t.Fatalf("GenerateKeyDerivation: %v", err)
	}
	oneTimeSecret, err := crypto.DeriveSecretKey(recvDerivation, 0, sw.SpendSecretKey)
	if err != nil {
		t.Fatalf("DeriveSecretKey: %v", err)
	}
	image, err := crypto.GenerateKeyImage(oneTimeKey, oneTimeSecret)
	if err != nil {
		t.Fatalf("GenerateKeyImage: %v", err)
	}

	var txHash crypto.Hash
	txHash[0] = byte(globalIndex + 1)
	if err := transfers.AddOwnedOutput(txHash, 0, sw.Index, amount, globalIndex, txPublic, oneTimeKey, image, 0, blockHeight); err != nil {
		t.Fatalf("AddOwnedOutput: %v", err)
	}
}

func newTestBuilder(t *testing.T) (*TransactionBuilder, *node.Mock, *SubwalletRegistry, *TransfersContainer, Subwallet) {
	t.Helper()
	viewSecret, _ := crypto.GenerateKeyPair()
	registry := NewSubwalletRegistry(viewSecret)
	spendSecret, _ := crypto.GenerateKeyPair()
	sw, err := registry.AddSubwallet(&spendSecret, 0, "primary")
	if err != nil {
		t.Fatalf("AddSubwallet: %v", err)
	}
	transfers := openTestTransfers(t)
	mock := node.NewMock()
	builder := NewTransactionBuilder(registry, transfers, mock)
	return builder, mock, registry, transfers, sw
}

func TestBuilderBuildSpendsAndPaysChange(t *testing.T) {
	builder, mock, registry, transfers, sw := newTestBuilder(t)
	seedOwnedOutput(t, transfers, registry, sw, 1000, 1, 0)

	destSecret, _ := crypto.GenerateKeyPair()
	destRegistry := NewSubwalletRegistry(destSecret)
	destSpendSecret, _ := crypto.GenerateKeyPair()
	destSw, err := destRegistry.AddSubwallet(&destSpendSecret, 0, "dest")
	if err != nil {
		t.Fatalf("AddSubwallet: %v", err)
	}
	destAddr, err := destRegistry.Address(destSw.Index)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}

	params := types.TransactionParameters{
		Destinations: []types.TransferDestination{{Address: destAddr, Amount: 300}},
		Mixin:        0,
	}

	tx, err := builder.Build(context.Background(), params, types.TransactionSpendableAge)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tx.Inputs) != 1 {
		t.Fatalf("got %d inputs, want 1", len(tx.Inputs))
	}
	// 300 to the destination plus 700 change, each decomposed; every output
	// amount should sum back to the spent total.
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Amount
	}
	if total != 1000 {
		t.Fatalf("output amounts sum to %d, want 1000", total)
	}
	if len(tx.Signatures) != 1 {
		t.Fatalf("got %d signatures, want 1", len(tx.Signatures))
	}

	if err := builder.Broadcast(context.Background(), tx); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if len(mock.Sent) != 1 {
		t.Fatal("expected the transaction to be sent to the mock node")
	}
}

func TestBuilderBuildRejectsViewWallet(t *testing.T) {
	viewSecret, _ := crypto.GenerateKeyPair()
	registry := NewSubwalletRegistry(viewSecret)
	_, spendPublic := crypto.GenerateKeyPair()
	if _, err := registry.AddViewOnlySubwallet(spendPublic, 0, "watch"); err != nil {
		t.Fatalf("AddViewOnlySubwallet: %v", err)
	}
	transfers := openTestTransfers(t)
	builder := NewTransactionBuilder(registry, transfers, node.NewMock())

	_, err := builder.Build(context.Background(), types.TransactionParameters{}, 0)
	ce, ok := err.(*types.CoreError)
	if !ok || ce.Code != types.ErrViewWallet {
		t.Fatalf("got %v, want ErrViewWallet", err)
	}
}

func TestBuilderBuildInjectsNodeFee(t *testing.T) {
	builder, mock, registry, transfers, sw := newTestBuilder(t)
	seedOwnedOutput(t, transfers, registry, sw, 1000, 1, 0)

	feeSecret, _ := crypto.GenerateKeyPair()
	feeRegistry := NewSubwalletRegistry(feeSecret)
	feeSw, err := feeRegistry.AddSubwallet(&feeSecret, 0, "fee")
	if err != nil {
		t.Fatalf("AddSubwallet: %v", err)
	}
	feeAddr, err := feeRegistry.Address(feeSw.Index)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	mock.Fee = node.FeeInfo{Address: feeAddr.String(), Amount: 50}

	destSecret, _ := crypto.GenerateKeyPair()
	destAddr := types.Address{SpendPublicKey: destSecret.PublicKey(), ViewPublicKey: destSecret.PublicKey()}

	params := types.TransactionParameters{
		Destinations: []types.TransferDestination{{Address: destAddr, Amount: 100}},
		Mixin:        0,
	}
	tx, err := builder.Build(context.Background(), params, types.TransactionSpendableAge)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var total uint64
	for _, out := range tx.Outputs {
		total += out.Amount
	}
	// 100 to destination + 50 to the node fee + 850 change = 1000 spent.
	if total != 1000 {
		t.Fatalf("output amounts sum to %d, want 1000", total)
	}
}

func TestBuilderBuildNotEnoughFunds(t *testing.T) {
	builder, _, registry, transfers, sw := newTestBuilder(t)
	seedOwnedOutput(t, transfers, registry, sw, 10, 1, 0)

	destSecret, _ := crypto.GenerateKeyPair()
	destAddr := types.Address{SpendPublicKey: destSecret.PublicKey(), ViewPublicKey: destSecret.PublicKey()}
	params := types.TransactionParameters{
		Destinations: []types.TransferDestination{{Address: destAddr, Amount: 10000}},
		Mixin:        0,
	}

	_, err := builder.Build(context.Background(), params, types.TransactionSpendableAge)
	ce, ok := err.(*types.CoreError)
	if !ok || ce.Code != types.ErrNotEnoughFunds {
		t.Fatalf("got %v, want ErrNotEnoughFunds", err)
	}
}

func TestBuilderBuildRejectsConflictingPaymentIDs(t *testing.T) {
	builder, _, registry, transfers, sw := newTestBuilder(t)
	seedOwnedOutput(t, transfers, registry, sw, 1000, 1, 0)

	dest1Secret, _ := crypto.GenerateKeyPair()
	dest1Addr := types.Address{SpendPublicKey: dest1Secret.PublicKey(), ViewPublicKey: dest1Secret.PublicKey()}
	var paymentID1 [types.PaymentIDSize]byte
	paymentID1[0] = 1
	dest1 := types.NewIntegratedDestination(types.IntegratedAddress{Address: dest1Addr, PaymentID: paymentID1}, 100)

	dest2Secret, _ := crypto.GenerateKeyPair()
	dest2Addr := types.Address{SpendPublicKey: dest2Secret.PublicKey(), ViewPublicKey: dest2Secret.PublicKey()}
	var paymentID2 [types.PaymentIDSize]byte
	paymentID2[0] = 2
	dest2 := types.NewIntegratedDestination(types.IntegratedAddress{Address: dest2Addr, PaymentID: paymentID2}, 200)

	params := types.TransactionParameters{
		Destinations: []types.TransferDestination{dest1, dest2},
		Mixin:        0,
	}

	_, err := builder.Build(context.Background(), params, types.TransactionSpendableAge)
	ce, ok := err.(*types.CoreError)
	if !ok || ce.Code != types.ErrConflictingPaymentID {
		t.Fatalf("got %v, want ErrConflictingPaymentID", err)
	}
}

func TestBuilderBuildRejectsExplicitPaymentIDConflict(t *testing.T) {
	builder, _, registry, transfers, sw := newTestBuilder(t)
	seedOwnedOutput(t, transfers, registry, sw, 1000, 1, 0)

	destSecret, _ := crypto.GenerateKeyPair()
	destAddr := types.Address{SpendPublicKey: destSecret.PublicKey(), ViewPublicKey: destSecret.PublicKey()}
	var embeddedID [types.PaymentIDSize]byte
	embeddedID[0] = 1
	dest := types.NewIntegratedDestination(types.IntegratedAddress{Address: destAddr, PaymentID: embeddedID}, 100)

	explicitID := make([]byte, types.PaymentIDSize)
	explicitID[0] = 2 // different from embeddedID

	params := types.TransactionParameters{
		Destinations: []types.TransferDestination{dest},
		PaymentID:    explicitID,
		Mixin:        0,
	}

	_, err := builder.Build(context.Background(), params, types.TransactionSpendableAge)
	ce, ok := err.(*types.CoreError)
	if !ok || ce.Code != types.ErrConflictingPaymentID {
		t.Fatalf("got %v, want ErrConflictingPaymentID", err)
	}
}

func TestBuilderBuildAcceptsMatchingExplicitPaymentID(t *testing.T) {
	builder, _, registry, transfers, sw := newTestBuilder(t)
	seedOwnedOutput(t, transfers, registry, sw, 1000, 1, 0)

	destSecret, _ := crypto.GenerateKeyPair()
	destAddr := types.Address{SpendPublicKey: destSecret.PublicKey(), ViewPublicKey: destSecret.PublicKey()}
	var embeddedID [types.PaymentIDSize]byte
	embeddedID[0] = 7
	dest := types.NewIntegratedDestination(types.IntegratedAddress{Address: destAddr, PaymentID: embeddedID}, 100)

	params := types.TransactionParameters{
		Destinations: []types.TransferDestination{dest},
		PaymentID:    append([]byte{}, embeddedID[:]...),
		Mixin:        0,
	}

	if _, err := builder.Build(context.Background(), params, types.TransactionSpendableAge); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestBuilderBuildRejectsMixinCountTooBig(t *testing.T) {
	builder, mock, registry, transfers, sw := newTestBuilder(t)
	seedOwnedOutput(t, transfers, registry, sw, 1000, 1, 0)

	// Only one decoy is available from the node, but the caller asks for a
	// ring of 3 decoys: the node cannot satisfy the requested mixin.
	_, decoyKey := crypto.GenerateKeyPair()
	mock.RandomOuts[1000] = []node.RandomOut{{GlobalIndex: 999, Key: decoyKey}}

	destSecret, _ := crypto.GenerateKeyPair()
	destAddr := types.Address{SpendPublicKey: destSecret.PublicKey(), ViewPublicKey: destSecret.PublicKey()}
	params := types.TransactionParameters{
		Destinations: []types.TransferDestination{{Address: destAddr, Amount: 100}},
		Mixin:        3,
	}

	_, err := builder.Build(context.Background(), params, types.TransactionSpendableAge)
	ce, ok := err.(*types.CoreError)
	if !ok || ce.Code != types.ErrMixinCountTooBig {
		t.Fatalf("got %v, want ErrMixinCountTooBig", err)
	}
}

func TestBuilderFusionConsolidatesDustBuckets(t *testing.T) {
	builder, _, registry, transfers, sw := newTestBuilder(t)
	// Seed 12 outputs of amount 10 (one bucket, the fusion minimum) plus a
	// lone output of amount 7 that should not be swept in.
	for i := uint64(0); i < 12; i++ {
		seedOwnedOutput(t, transfers, registry, sw, 10, i+1, 0)
	}
	seedOwnedOutput(t, transfers, registry, sw, 7, 100, 0)

	tx, err := builder.BuildFusion(context.Background(), sw.Index, 0, types.TransactionSpendableAge)
	if err != nil {
		t.Fatalf("BuildFusion: %v", err)
	}
	if len(tx.Inputs) != 12 {
		t.Fatalf("got %d inputs, want 12", len(tx.Inputs))
	}
	if len(tx.Outputs) > types.FusionMaxOutputCount {
		t.Fatalf("got %d outputs, want at most %d", len(tx.Outputs), types.FusionMaxOutputCount)
	}
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Amount
	}
	if total != 120 {
		t.Fatalf("output amounts sum to %d, want 120", total)
	}
}

func TestBuilderFusionNotEnoughInputs(t *testing.T) {
	builder, _, registry, transfers, sw := newTestBuilder(t)
	seedOwnedOutput(t, transfers, registry, sw, 10, 1, 0)
	seedOwnedOutput(t, transfers, registry, sw, 20, 2, 0)

	_, err := builder.BuildFusion(context.Background(), sw.Index, 0, types.TransactionSpendableAge)
	ce, ok := err.(*types.CoreError)
	if !ok || ce.Code != types.ErrNotEnoughFunds {
		t.Fatalf("got %v, want ErrNotEnoughFunds", err)
	}
}
