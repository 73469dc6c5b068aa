package wallet

import (
	"sync"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/types"
)

// Subwallet is one spend keypair registered under a shared view key. A
// view-only subwallet has no spend secret key and can detect incoming
// transfers but never sign outgoing ones.
type Subwallet struct {
	Index          int
	SpendPublicKey crypto.PublicKey
	SpendSecretKey crypto.SecretKey // zero value means view-only
	CreationHeight uint64
	Label          string
}

// ViewOnly reports whether this subwallet can only observe, not spend.
func (s Subwallet) ViewOnly() bool {
	return s.SpendSecretKey.IsNil()
}

// SubwalletRegistry is the registry of subwallets sharing one view key:
// one view secret key fans out into any number of independently added spend
// keypairs, generalizing the single-seed/single-key bookkeeping a simpler
// wallet would do into a one-to-many relationship.
type SubwalletRegistry struct {
	mu sync.RWMutex

	ViewSecretKey crypto.SecretKey
	ViewPublicKey crypto.PublicKey

	subwallets []Subwallet
	byKey      map[crypto.PublicKey]int // spend public key -> index into subwallets
}

// NewSubwalletRegistry creates a registry around an existing view keypair.
func NewSubwalletRegistry(viewSecret crypto.SecretKey) *SubwalletRegistry {
	return &SubwalletRegistry{
		ViewSecretKey: viewSecret,
		ViewPublicKey: viewSecret.PublicKey(),
		byKey:         make(map[crypto.PublicKey]int),
	}
}

// AddSubwallet registers a new spending subwallet, generating a fresh spend
// keypair if the caller does not supply one.
func (r *SubwalletRegistry) AddSubwallet(spendSecret *crypto.SecretKey, creationHeight uint64, label string) (Subwallet, error) {
	var sk crypto.SecretKey
	var pk crypto.PublicKey
	if spendSecret != nil {
		sk = *spendSecret
		pk = sk.PublicKey()
	} else {
		sk, pk = crypto.GenerateKeyPair()
	}
	return r.add(pk, sk, creationHeight, label)
}

// AddViewOnlySubwallet registers a subwallet for which only the public spend
// key is known: it can detect funds but never sign for them.
func (r *SubwalletRegistry) AddViewOnlySubwallet(spendPublic crypto.PublicKey, creationHeight uint64, label string) (Subwallet, error) {
	return r.add(spendPublic, crypto.SecretKey{}, creationHeight, label)
}

func (r *SubwalletRegistry) add(pk crypto.PublicKey, sk crypto.SecretKey, creationHeight uint64, label string) (Subwallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[pk]; exists {
		return Subwallet{}, types.NewError(types.ErrKeyAlreadyExists)
	}

	sw := Subwallet{
		Index:          len(r.subwallets),
		SpendPublicKey: pk,
		SpendSecretKey: sk,
		CreationHeight: creationHeight,
		Label:          label,
	}
	r.subwallets = append(r.subwallets, sw)
	r.byKey[pk] = sw.Index
	return sw, nil
}

// Get returns the subwallet at index.
func (r *SubwalletRegistry) Get(index int) (Subwallet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.subwallets) {
		return Subwallet{}, false
	}
	return r.subwallets[index], true
}

// FindBySpendPublicKey returns the subwallet registered under the given
// spend public key, used by the transfers consumer once it has
// recovered a candidate key via crypto.RecoverCandidateSpendPublicKey.
func (r *SubwalletRegistry) FindBySpendPublicKey(pk crypto.PublicKey) (Subwallet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byKey[pk]
	if !ok {
		return Subwallet{}, false
	}
	return r.subwallets[idx], true
}

// List returns a snapshot of every registered subwallet.
func (r *SubwalletRegistry) List() []Subwallet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Subwallet, len(r.subwallets))
	copy(out, r.subwallets)
	return out
}

// Address returns the public address of the subwallet at index.
func (r *SubwalletRegistry) Address(index int) (types.Address, error) {
	sw, ok := r.Get(index)
	if !ok {
		return types.Address{}, types.NewError(types.ErrAddressNotFound)
	}
	return types.Address{SpendPublicKey: sw.SpendPublicKey, ViewPublicKey: r.ViewPublicKey}, nil
}

// IsViewWallet reports whether every registered subwallet is view-only,
// meaning this wallet can never build or sign a transaction.
func (r *SubwalletRegistry) IsViewWallet() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.subwallets) == 0 {
		return false
	}
	for _, sw := range r.subwallets {
		if !sw.ViewOnly() {
			return false
		}
	}
	return true
}

// subwalletRecord is the JSON-serializable form of a Subwallet persisted
// inside the encrypted container body.
type subwalletRecord struct {
	Index          int    `json:"index"`
	SpendPublicKey string `json:"spendPublicKey"`
	SpendSecretKey string `json:"spendSecretKey,omitempty"`
	CreationHeight uint64 `json:"creationHeight"`
	Label          string `json:"label"`
}
