package wallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"sort"

	"github.com/NebulousLabs/fastrand"
	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/node"
	"github.com/kryptokrona/walletcore-go/pkg/encoding/wirebin"
	"github.com/kryptokrona/walletcore-go/types"
)

const (
	extraTagPubkey    byte = 0x01
	extraTagNonce     byte = 0x02
	nonceTagPaymentID byte = 0x00
)

// TransactionBuilder selects spendable outputs to cover a set of requested
// destinations, fetches decoy candidates from the node to build each input's
// ring, and produces a fully signed transaction ready to broadcast. It
// generalizes the fund-then-sign pipeline a UTXO wallet would use into
// ring-member selection plus one-time-key signing.
type TransactionBuilder struct {
	subwallets *SubwalletRegistry
	transfers  *TransfersContainer
	client     node.Client
}

// NewTransactionBuilder builds a transaction builder over the given
// registry, storage layer and node client.
func NewTransactionBuilder(subwallets *SubwalletRegistry, transfers *TransfersContainer, client node.Client) *TransactionBuilder {
	return &TransactionBuilder{subwallets: subwallets, transfers: transfers, client: client}
}

// Build selects funds, constructs rings, and signs a transaction meeting
// params. currentHeight gates which owned outputs are considered unlocked.
func (b *TransactionBuilder) Build(ctx context.Context, params types.TransactionParameters, currentHeight uint64) (types.Transaction, error) {
	if b.subwallets.IsViewWallet() {
		return types.Transaction{}, types.NewError(types.ErrViewWallet)
	}
	if err := types.ValidateMixin(params.Mixin, currentHeight); err != nil {
		return types.Transaction{}, err
	}

	paymentID, err := reconcilePaymentIDs(params.Destinations, params.PaymentID)
	if err != nil {
		return types.Transaction{}, err
	}

	destinations := params.Destinations
	fee, err := b.client.GetFeeInfo(ctx)
	if err == nil && fee.Amount > 0 && fee.Address != "" {
		nodeAddr, err := types.ParseAddress(fee.Address)
		if err == nil {
			destinations = append(append([]types.TransferDestination{}, destinations...),
				types.TransferDestination{Address: nodeAddr, Amount: fee.Amount})
		}
	}

	needed := params.Fee
	for _, d := range destinations {
		needed += d.Amount
	}

	selected, total, err := b.selectFunds(params.SubwalletIndexes, needed, currentHeight)
	if err != nil {
		return types.Transaction{}, err
	}

	txSecret, txPublic := crypto.GenerateKeyPair()

	outputs, err := b.buildOutputs(destinations, txSecret)
	if err != nil {
		return types.Transaction{}, err
	}

	change := total - needed
	if change > 0 {
		changeAddr := params.ChangeAddress
		if changeAddr == nil {
			addr, err := b.subwallets.Address(selected[0].SubwalletIndex)
			if err != nil {
				return types.Transaction{}, err
			}
			changeAddr = &addr
		}
		for _, denom := range types.Amount(change).Decompose() {
			changeOut, err := buildOutput(*changeAddr, uint64(denom), txSecret, len(outputs))
			if err != nil {
				return types.Transaction{}, err
			}
			outputs = append(outputs, changeOut)
		}
	}

	inputs, ringSecrets, err := b.buildInputs(ctx, selected, params.Mixin, currentHeight)
	if err != nil {
		return types.Transaction{}, err
	}

	prefix := types.TransactionPrefix{
		Version:    1,
		UnlockTime: params.UnlockTime,
		Inputs:     inputs,
		Outputs:    outputs,
		Extra:      buildExtra(txPublic, paymentID, params.Extra),
	}

	prefixHash, err := prefix.Hash()
	if err != nil {
		return types.Transaction{}, err
	}

	tx := types.Transaction{TransactionPrefix: prefix}
	tx.Signatures = make([]crypto.RingSignature, len(inputs))
	for i, rs := range ringSecrets {
		sig, err := crypto.GenerateRingSignature(prefixHash, rs.keyImage, rs.ring, rs.secret, rs.realIndex)
		if err != nil {
			return types.Transaction{}, err
		}
		tx.Signatures[i] = sig
	}

	return tx, nil
}

// reconcilePaymentIDs checks every destination's embedded payment id (from
// an integrated address) against each other and against an explicit
// caller-supplied payment id, returning the single id to attach to the
// transaction's extra field. At most one distinct payment id may be in play;
// anything else is ErrConflictingPaymentID.
func reconcilePaymentIDs(destinations []types.TransferDestination, explicit []byte) ([]byte, error) {
	id := explicit
	for _, d := range destinations {
		if len(d.PaymentID) == 0 {
			continue
		}
		if len(id) == 0 {
			id = d.PaymentID
			continue
		}
		if !bytes.Equal(id, d.PaymentID) {
			return nil, types.NewError(types.ErrConflictingPaymentID)
		}
	}
	return id, nil
}

// Broadcast sends a built transaction to the node.
func (b *TransactionBuilder) Broadcast(ctx context.Context, tx types.Transaction) error {
	raw, err := wirebin.Marshal(tx)
	if err != nil {
		return err
	}
	return b.client.SendRawTransaction(ctx, raw)
}

// BuildFusion builds a zero-fee, zero-value-delta self-transfer that
// consolidates many small owned outputs into fewer, larger ones, following
// the same selection → ring → sign pipeline as Build. selectFusionInputs
// picks the input set; the outputs are the decomposition of their sum back
// into destination-address outputs. It returns ErrNotEnoughFunds when fewer
// than FusionMinInputCount inputs qualify or when their sum decomposes into
// more than FusionMaxOutputCount outputs.
func (b *TransactionBuilder) BuildFusion(ctx context.Context, subwalletIndex int, mixin int, currentHeight uint64) (types.Transaction, error) {
	if b.subwallets.IsViewWallet() {
		return types.Transaction{}, types.NewError(types.ErrViewWallet)
	}
	if err := types.ValidateMixin(mixin, currentHeight); err != nil {
		return types.Transaction{}, err
	}

	candidates, err := b.transfers.UnspentOutputs([]int{subwalletIndex}, currentHeight)
	if err != nil {
		return types.Transaction{}, err
	}
	selected, total := selectFusionInputs(candidates)
	if len(selected) < types.FusionMinInputCount {
		return types.Transaction{}, types.NewError(types.ErrNotEnoughFunds)
	}

	addr, err := b.subwallets.Address(subwalletIndex)
	if err != nil {
		return types.Transaction{}, err
	}

	txSecret, txPublic := crypto.GenerateKeyPair()

	denoms := types.Amount(total).Decompose()
	if len(denoms) > types.FusionMaxOutputCount {
		return types.Transaction{}, types.NewError(types.ErrNotEnoughFunds)
	}
	var outputs []types.TransactionOutput
	for _, denom := range denoms {
		out, err := buildOutput(addr, uint64(denom), txSecret, len(outputs))
		if err != nil {
			return types.Transaction{}, err
		}
		outputs = append(outputs, out)
	}

	inputs, ringSecrets, err := b.buildInputs(ctx, selected, mixin, currentHeight)
	if err != nil {
		return types.Transaction{}, err
	}

	prefix := types.TransactionPrefix{
		Version:    1,
		UnlockTime: 0,
		Inputs:     inputs,
		Outputs:    outputs,
		Extra:      buildExtra(txPublic, nil, nil),
	}
	prefixHash, err := prefix.Hash()
	if err != nil {
		return types.Transaction{}, err
	}

	tx := types.Transaction{TransactionPrefix: prefix}
	tx.Signatures = make([]crypto.RingSignature, len(inputs))
	for i, rs := range ringSecrets {
		sig, err := crypto.GenerateRingSignature(prefixHash, rs.keyImage, rs.ring, rs.secret, rs.realIndex)
		if err != nil {
			return types.Transaction{}, err
		}
		tx.Signatures[i] = sig
	}
	return tx, nil
}

// selectFusionInputs buckets candidates by amount (denomination) and
// greedily consumes the fullest buckets first, matching the "many small
// inputs collapse into few large outputs" requirement: a bucket only
// contributes to the fusion set once it has enough members that consuming
// it measurably reduces the wallet's output count.
func selectFusionInputs(candidates []storedOutput) ([]storedOutput, uint64) {
	amounts := make([]types.Amount, len(candidates))
	for i, c := range candidates {
		amounts[i] = types.Amount(c.Amount)
	}
	buckets := types.BucketByDenomination(amounts)

	var denoms []types.Amount
	for d, indexes := range buckets {
		if len(indexes) >= 2 {
			denoms = append(denoms, d)
		}
	}
	sort.Slice(denoms, func(i, j int) bool { return len(buckets[denoms[i]]) > len(buckets[denoms[j]]) })

	var selected []storedOutput
	var total uint64
	for _, d := range denoms {
		for _, idx := range buckets[d] {
			selected = append(selected, candidates[idx])
			total += candidates[idx].Amount
		}
	}
	return selected, total
}

// selectFunds greedily accumulates unspent outputs, largest first, until
// their total covers needed.
func (b *TransactionBuilder) selectFunds(subwalletIndexes []int, needed uint64, currentHeight uint64) ([]storedOutput, uint64, error) {
	candidates, err := b.transfers.UnspentOutputs(subwalletIndexes, currentHeight)
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Amount > candidates[j].Amount })

	var selected []storedOutput
	var total uint64
	for _, c := range candidates {
		if total >= needed {
			break
		}
		selected = append(selected, c)
		total += c.Amount
	}
	if total < needed {
		return nil, 0, types.NewError(types.ErrNotEnoughFunds)
	}
	return selected, total, nil
}

// buildOutputs decomposes each destination amount into "pretty" denomination
// outputs (a sum of single digits times a power of ten), so no output
// amount on the wire reveals more about the transferred total than its
// denomination does.
func (b *TransactionBuilder) buildOutputs(destinations []types.TransferDestination, txSecret crypto.SecretKey) ([]types.TransactionOutput, error) {
	var outputs []types.TransactionOutput
	for _, dest := range destinations {
		for _, denom := range types.Amount(dest.Amount).Decompose() {
			out, err := buildOutput(dest.Address, uint64(denom), txSecret, len(outputs))
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, out)
		}
	}
	return outputs, nil
}

// buildOutput derives the one-time output key for address at outputIndex
// under the transaction's ephemeral secret key.
func buildOutput(address types.Address, amount uint64, txSecret crypto.SecretKey, outputIndex int) (types.TransactionOutput, error) {
	derivation, err := crypto.GenerateKeyDerivation(address.ViewPublicKey, txSecret)
	if err != nil {
		return types.TransactionOutput{}, err
	}
	key, err := crypto.DerivePublicKey(derivation, uint64(outputIndex), address.SpendPublicKey)
	if err != nil {
		return types.TransactionOutput{}, err
	}
	return types.TransactionOutput{Amount: amount, Key: key}, nil
}

// ringSecret bundles what GenerateRingSignature needs for one input.
type ringSecret struct {
	ring      []crypto.PublicKey
	keyImage  crypto.KeyImage
	secret    crypto.SecretKey
	realIndex int
}

// buildInputs fetches decoys for each selected output's amount, assembles a
// ring (decoys plus the real one-time key at a random position), and
// re-derives the one-time secret key needed to sign it.
func (b *TransactionBuilder) buildInputs(ctx context.Context, selected []storedOutput, mixin int, currentHeight uint64) ([]types.TransactionInput, []ringSecret, error) {
	amounts := make([]uint64, len(selected))
	for i, s := range selected {
		amounts[i] = s.Amount
	}
	decoySets, err := b.client.GetRandomOutsForAmounts(ctx, amounts, mixin)
	if err != nil {
		return nil, nil, err
	}
	decoysByAmount := make(map[uint64][]node.RandomOut, len(decoySets))
	for _, set := range decoySets {
		decoysByAmount[set.Amount] = set.Outs
	}

	inputs := make([]types.TransactionInput, len(selected))
	secrets := make([]ringSecret, len(selected))

	for i, out := range selected {
		sw, ok := b.subwallets.Get(out.SubwalletIndex)
		if !ok {
			return nil, nil, types.NewError(types.ErrAddressNotFound)
		}

		oneTimeSecret, image, err := recoverSpendingKey(out, sw, b.subwallets.ViewSecretKey)
		if err != nil {
			return nil, nil, err
		}

		decoys := decoysByAmount[out.Amount]
		ring, offsets, realIndex, err := assembleRing(out, decoys, mixin)
		if err != nil {
			return nil, nil, err
		}

		inputs[i] = &types.KeyInput{Amount: out.Amount, KeyOffsets: offsets, KeyImage: image}
		secrets[i] = ringSecret{ring: ring, keyImage: image, secret: oneTimeSecret, realIndex: realIndex}
	}
	return inputs, secrets, nil
}

// recoverSpendingKey re-derives the one-time secret key and key image for a
// previously recorded owned output: the derivation is taken from the stored
// transaction public key and the wallet's view secret key, and the
// subwallet's spend secret key is then derived at the stored output index.
func recoverSpendingKey(out storedOutput, sw Subwallet, viewSecret crypto.SecretKey) (crypto.SecretKey, crypto.KeyImage, error) {
	var txPublic crypto.PublicKey
	if err := decodeHexKey(out.TxPublicKey, txPublic[:]); err != nil {
		return crypto.SecretKey{}, crypto.KeyImage{}, err
	}

	derivation, err := crypto.GenerateKeyDerivation(txPublic, viewSecret)
	if err != nil {
		return crypto.SecretKey{}, crypto.KeyImage{}, err
	}
	secret, err := crypto.DeriveSecretKey(derivation, uint64(out.OutputIndex), sw.SpendSecretKey)
	if err != nil {
		return crypto.SecretKey{}, crypto.KeyImage{}, err
	}

	var oneTimePublic crypto.PublicKey
	if err := decodeHexKey(out.OneTimeKey, oneTimePublic[:]); err != nil {
		return crypto.SecretKey{}, crypto.KeyImage{}, err
	}
	image, err := crypto.GenerateKeyImage(oneTimePublic, secret)
	if err != nil {
		return crypto.SecretKey{}, crypto.KeyImage{}, err
	}
	return secret, image, nil
}

// assembleRing places the real one-time key among mixin decoys at a
// uniformly random position, then sorts the ring by global index so the
// resulting offsets are ascending (required for delta encoding on the
// wire). Returns the ring, the corresponding absolute global-index offsets
// (in ring order), and the real key's post-sort index.
func assembleRing(out storedOutput, decoys []node.RandomOut, mixin int) ([]crypto.PublicKey, []uint64, int, error) {
	var realKey crypto.PublicKey
	if err := decodeHexKey(out.OneTimeKey, realKey[:]); err != nil {
		return nil, nil, 0, err
	}

	ring := make([]crypto.PublicKey, 0, mixin)
	offsets := make([]uint64, 0, mixin)
	for _, d := range decoys {
		if len(ring) >= mixin {
			break
		}
		if d.GlobalIndex == out.GlobalIndex {
			continue // never use the real output as its own decoy
		}
		ring = append(ring, d.Key)
		offsets = append(offsets, d.GlobalIndex)
	}
	if len(ring) < mixin {
		return nil, nil, 0, types.NewError(types.ErrMixinCountTooBig)
	}

	insertAt := 0
	if len(ring) > 0 {
		insertAt = fastrand.Intn(len(ring) + 1)
	}
	ring = append(ring[:insertAt], append([]crypto.PublicKey{realKey}, ring[insertAt:]...)...)
	offsets = append(offsets[:insertAt], append([]uint64{out.GlobalIndex}, offsets[insertAt:]...)...)

	sortRingByOffset(ring, offsets)
	realIndex := -1
	for i, off := range offsets {
		if off == out.GlobalIndex && ring[i] == realKey {
			realIndex = i
			break
		}
	}
	return ring, offsets, realIndex, nil
}

// sortRingByOffset sorts ring and offsets together, ascending by offset, so
// the offsets can be delta-encoded on the wire.
func sortRingByOffset(ring []crypto.PublicKey, offsets []uint64) {
	sort.Sort(&ringSort{ring: ring, offsets: offsets})
}

type ringSort struct {
	ring    []crypto.PublicKey
	offsets []uint64
}

func (s *ringSort) Len() int { return len(s.offsets) }
func (s *ringSort) Less(i, j int) bool {
	return s.offsets[i] < s.offsets[j]
}
func (s *ringSort) Swap(i, j int) {
	s.offsets[i], s.offsets[j] = s.offsets[j], s.offsets[i]
	s.ring[i], s.ring[j] = s.ring[j], s.ring[i]
}

// buildExtra assembles the transaction's extra field: the mandatory
// transaction public key tag, an optional payment id nonce, and any
// caller-supplied raw extra bytes appended after.
func buildExtra(txPublic crypto.PublicKey, paymentID, rawExtra []byte) []byte {
	extra := make([]byte, 0, 1+crypto.PublicKeySize+len(paymentID)+2+len(rawExtra))
	extra = append(extra, extraTagPubkey)
	extra = append(extra, txPublic[:]...)
	if len(paymentID) > 0 {
		extra = append(extra, extraTagNonce, byte(1+len(paymentID)), nonceTagPaymentID)
		extra = append(extra, paymentID...)
	}
	extra = append(extra, rawExtra...)
	return extra
}

func decodeHexKey(s string, dst []byte) error {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(dst) {
		return types.NewError(types.ErrWrongKeyFormat)
	}
	copy(dst, b)
	return nil
}
