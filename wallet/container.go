package wallet

import (
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/NebulousLabs/fastrand"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

// ContainerFormatVersion is the current wallet file format version. Bumping
// it (e.g. to move to an authenticated cipher mode) must go hand in hand
// with a version check on load, never a silent reinterpretation of old
// files.
const ContainerFormatVersion = 1

var (
	// outerMagic tags the start of every wallet file, checked before any
	// decryption is attempted.
	outerMagic = []byte("KRYPTOKRONA-WALLETCORE-V1\x00")

	// innerMagic is placed inside the encrypted plaintext so a wrong
	// password can be detected after decryption without the detection
	// itself acting as a padding oracle: DecryptCBC already collapses every
	// decoding failure to one error, and this check collapses the
	// "decoded fine but wrong key" case into the same outcome.
	innerMagic = []byte("KRYPTOKRONA-CONTAINER-OK\x00")
)

// containerBody is the JSON payload encrypted inside a wallet file: the
// subwallet registry and the synchronizer's sync position, enough to fully
// reinstall a running wallet on load.
type containerBody struct {
	FormatVersion uint64            `json:"formatVersion"`
	ViewSecretKey string            `json:"viewSecretKey"`
	Subwallets    []subwalletRecord `json:"subwallets"`
	SyncHeight    uint64            `json:"syncHeight"`
	Checkpoints   []string          `json:"checkpoints"`
}

// SaveContainer encrypts and atomically writes the wallet's current state
// to path under password. Per the design's "save must be pause-serialized
// with the synchronizer" rule, the caller is responsible for quiescing the
// synchronizer (e.g. via Stop) before calling this during a graceful
// shutdown; SaveContainer itself only guarantees the file write is atomic.
func SaveContainer(path, password string, subwallets *SubwalletRegistry, sync SyncState) error {
	body := containerBody{
		FormatVersion: ContainerFormatVersion,
		ViewSecretKey: hex.EncodeToString(subwallets.ViewSecretKey[:]),
		SyncHeight:    sync.Height,
	}
	for _, h := range sync.CheckpointHashes {
		body.Checkpoints = append(body.Checkpoints, hex.EncodeToString(h[:]))
	}
	for _, sw := range subwallets.List() {
		body.Subwallets = append(body.Subwallets, subwalletRecord{
			Index:          sw.Index,
			SpendPublicKey: hex.EncodeToString(sw.SpendPublicKey[:]),
			SpendSecretKey: hex.EncodeToString(sw.SpendSecretKey[:]),
			CreationHeight: sw.CreationHeight,
			Label:          sw.Label,
		})
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	salt := fastrand.Bytes(crypto.KDFSaltSize)
	key := crypto.DeriveContainerKey(password, salt)

	plaintext := append(append([]byte{}, innerMagic...), jsonBody...)
	ciphertext, err := crypto.EncryptCBC(key, plaintext)
	if err != nil {
		return err
	}

	out := make([]byte, 0, len(outerMagic)+len(salt)+len(ciphertext))
	out = append(out, outerMagic...)
	out = append(out, salt...)
	out = append(out, ciphertext...)

	tmpPath := path + "_tmp"
	if err := ioutil.WriteFile(tmpPath, out, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// LoadContainer decrypts the wallet file at path under password, returning
// a freshly built subwallet registry and sync state. Each step's failure
// mode is distinct, per the design's error taxonomy: a missing outer magic
// means this isn't a wallet file at all, a decrypt failure or a bad inner
// magic means the password is wrong, and an unparseable body behind a valid
// inner magic means the file is corrupted.
func LoadContainer(path, password string) (*SubwalletRegistry, SyncState, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, SyncState{}, types.NewError(types.ErrFilenameNonExistent)
		}
		return nil, SyncState{}, err
	}

	if len(raw) < len(outerMagic)+crypto.KDFSaltSize {
		return nil, SyncState{}, types.NewError(types.ErrNotAWalletFile)
	}
	for i, b := range outerMagic {
		if raw[i] != b {
			return nil, SyncState{}, types.NewError(types.ErrNotAWalletFile)
		}
	}

	salt := raw[len(outerMagic) : len(outerMagic)+crypto.KDFSaltSize]
	ciphertext := raw[len(outerMagic)+crypto.KDFSaltSize:]

	key := crypto.DeriveContainerKey(password, salt)
	plaintext, err := crypto.DecryptCBC(key, ciphertext)
	if err != nil {
		return nil, SyncState{}, types.NewError(types.ErrWrongPassword)
	}

	if len(plaintext) < len(innerMagic) {
		return nil, SyncState{}, types.NewError(types.ErrWrongPassword)
	}
	for i, b := range innerMagic {
		if plaintext[i] != b {
			return nil, SyncState{}, types.NewError(types.ErrWrongPassword)
		}
	}

	var body containerBody
	if err := json.Unmarshal(plaintext[len(innerMagic):], &body); err != nil {
		return nil, SyncState{}, types.NewError(types.ErrWalletFileCorrupted)
	}
	if body.FormatVersion != ContainerFormatVersion {
		return nil, SyncState{}, types.NewError(types.ErrUnsupportedFileVersion)
	}

	var viewSecret crypto.SecretKey
	viewSecretBytes, err := hex.DecodeString(body.ViewSecretKey)
	if err != nil || len(viewSecretBytes) != crypto.SecretKeySize {
		return nil, SyncState{}, types.NewError(types.ErrWalletFileCorrupted)
	}
	copy(viewSecret[:], viewSecretBytes)

	registry := NewSubwalletRegistry(viewSecret)
	for _, rec := range body.Subwallets {
		spendPub, err := hex.DecodeString(rec.SpendPublicKey)
		if err != nil || len(spendPub) != crypto.PublicKeySize {
			return nil, SyncState{}, types.NewError(types.ErrWalletFileCorrupted)
		}
		var pk crypto.PublicKey
		copy(pk[:], spendPub)

		var sk crypto.SecretKey
		if rec.SpendSecretKey != "" {
			spendSec, err := hex.DecodeString(rec.SpendSecretKey)
			if err != nil {
				return nil, SyncState{}, types.NewError(types.ErrWalletFileCorrupted)
			}
			copy(sk[:], spendSec)
		}

		if sk.IsNil() {
			if _, err := registry.AddViewOnlySubwallet(pk, rec.CreationHeight, rec.Label); err != nil {
				return nil, SyncState{}, err
			}
		} else {
			skCopy := sk
			if _, err := registry.AddSubwallet(&skCopy, rec.CreationHeight, rec.Label); err != nil {
				return nil, SyncState{}, err
			}
		}
	}

	sync := SyncState{Height: body.SyncHeight}
	for _, hs := range body.Checkpoints {
		b, err := hex.DecodeString(hs)
		if err != nil || len(b) != crypto.HashSize {
			return nil, SyncState{}, types.NewError(types.ErrWalletFileCorrupted)
		}
		var h crypto.Hash
		copy(h[:], b)
		sync.CheckpointHashes = append(sync.CheckpointHashes, h)
	}

	return registry, sync, nil
}
