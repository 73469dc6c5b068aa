package wallet

import (
	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

// TransfersConsumer scans each incoming block's transactions against the
// subwallet registry, recognizing outputs that belong to one of the
// registered spend keys and key images that spend one of the wallet's own
// owned outputs. It is the relevance-scan counterpart to the transfers
// container's storage, generalizing the "does this output's derived key
// match a subscribed spend key" test a simpler wallet would run against a
// single key pair.
type TransfersConsumer struct {
	subwallets *SubwalletRegistry
	transfers  *TransfersContainer
}

// NewTransfersConsumer builds a consumer over the given registry and
// storage layer.
func NewTransfersConsumer(subwallets *SubwalletRegistry, transfers *TransfersContainer) *TransfersConsumer {
	return &TransfersConsumer{subwallets: subwallets, transfers: transfers}
}

// ProcessBlock scans every transaction in block for relevance to the
// registered subwallets, recording any newly owned outputs and any inputs
// that spend previously owned outputs.
func (c *TransfersConsumer) ProcessBlock(block types.WalletBlockInfo) error {
	for _, tx := range block.Transactions {
		if err := c.processTransaction(tx, block.Header.Height); err != nil {
			return err
		}
	}
	return nil
}

func (c *TransfersConsumer) processTransaction(tx types.RawWalletTransaction, blockHeight uint64) error {
	transfers, totalOutput, err := c.scanOutputs(tx, blockHeight)
	if err != nil {
		return err
	}

	spentTransfers, totalInput, err := c.scanKeyImages(tx.KeyImages)
	if err != nil {
		return err
	}
	transfers = append(transfers, spentTransfers...)

	if len(transfers) == 0 {
		return nil // irrelevant to any registered subwallet
	}

	// TotalInput/TotalOutput only cover the portions of this transaction
	// that touch a registered subwallet; this is not the transaction's full
	// fee (decoy ring members and third-party change are invisible to us).
	// Wallet.Transfer records the fee directly for transactions this
	// wallet builds itself.
	wtx := types.WalletTransaction{
		Hash:        tx.Hash,
		BlockHeight: blockHeight,
		Timestamp:   tx.Timestamp,
		PaymentID:   tx.PaymentID,
		UnlockTime:  tx.UnlockTime,
		Transfers:   transfers,
		TotalInput:  totalInput,
		TotalOutput: totalOutput,
	}
	return c.transfers.AddTransaction(wtx)
}

// scanOutputs derives each output's candidate spend public key via the
// shared view key and tests it against every registered subwallet.
func (c *TransfersConsumer) scanOutputs(tx types.RawWalletTransaction, blockHeight uint64) ([]types.WalletTransfer, uint64, error) {
	derivation, err := crypto.GenerateKeyDerivation(tx.PublicKey, c.subwallets.ViewSecretKey)
	if err != nil {
		return nil, 0, err
	}

	var transfers []types.WalletTransfer
	var total uint64
	for i, out := range tx.Outputs {
		candidate, err := crypto.RecoverCandidateSpendPublicKey(derivation, uint64(i), out.Key)
		if err != nil {
			continue
		}
		sw, ok := c.subwallets.FindBySpendPublicKey(candidate)
		if !ok {
			continue
		}

		var image crypto.KeyImage
		if !sw.ViewOnly() {
			oneTimeSecret, err := crypto.DeriveSecretKey(derivation, uint64(i), sw.SpendSecretKey)
			if err != nil {
				return nil, 0, err
			}
			image, err = crypto.GenerateKeyImage(out.Key, oneTimeSecret)
			if err != nil {
				return nil, 0, err
			}
		}

		globalIndex := uint64(0)
		if i < len(tx.GlobalOutputIndexes) {
			globalIndex = tx.GlobalOutputIndexes[i]
		}
		if err := c.transfers.AddOwnedOutput(tx.Hash, i, sw.Index, out.Amount, globalIndex, tx.PublicKey, out.Key, image, tx.UnlockTime, blockHeight); err != nil {
			return nil, 0, err
		}

		transfers = append(transfers, types.WalletTransfer{SubwalletIndex: sw.Index, Amount: int64(out.Amount)})
		total += out.Amount
	}
	return transfers, total, nil
}

// scanKeyImages marks any of the wallet's owned outputs as spent if their
// key image appears among the transaction's inputs.
func (c *TransfersConsumer) scanKeyImages(images []crypto.KeyImage) ([]types.WalletTransfer, uint64, error) {
	var transfers []types.WalletTransfer
	var total uint64
	for _, image := range images {
		subwalletIndex, amount, found, err := c.transfers.MarkSpent(image)
		if err != nil {
			return nil, 0, err
		}
		if !found {
			continue
		}
		transfers = append(transfers, types.WalletTransfer{SubwalletIndex: subwalletIndex, Amount: -int64(amount)})
		total += amount
	}
	return transfers, total, nil
}

// RevertToHeight rolls back everything the consumer has recorded above
// keepHeight, used when the synchronizer detects a chain reorganization.
func (c *TransfersConsumer) RevertToHeight(keepHeight uint64) error {
	return c.transfers.RevertAboveHeight(keepHeight)
}
