package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/kryptokrona/walletcore-go/crypto"
	"github.com/kryptokrona/walletcore-go/node"
	"github.com/kryptokrona/walletcore-go/persist"
	"github.com/kryptokrona/walletcore-go/types"
)

// task is one unit of work enqueued on the dispatcher's single worker
// goroutine. Save, AddSubwallet and the query and transfer methods run their
// work as tasks, so no two of them run at the same time. The synchronizer's
// polling goroutine and Close work outside the queue; the registry,
// transfers container and sync state are guarded by their own locks.
type task struct {
	run  func()
	done chan struct{}
}

// Wallet is the single-threaded dispatcher that owns a subwallet registry,
// transfers container, consumer, synchronizer, transaction builder and pool
// cleaner, and serializes every call against them onto one worker goroutine.
// Mutation goes through an explicit task queue rather than a plain mutex so
// that long-running calls (building and broadcasting a transaction) can run
// asynchronously without blocking the synchronizer's background polling.
type Wallet struct {
	path     string
	password string

	subwallets *SubwalletRegistry
	transfers  *TransfersContainer
	consumer   *TransfersConsumer
	sync       *Synchronizer
	builder    *TransactionBuilder
	cleaner    *PoolCleaner
	client     node.Client
	log        *persist.Logger

	tasks  chan task
	quit   chan struct{}
	wg     sync.WaitGroup
	closed bool
	mu     sync.Mutex
}

// OpenWallet loads an existing wallet container at path under password,
// opens its transfers database alongside it, and wires up the consumer,
// synchronizer, builder and pool cleaner. The returned wallet's synchronizer
// is not yet running; call Start to begin polling.
func OpenWallet(path, password, transfersPath string, client node.Client, pollInterval time.Duration, log *persist.Logger) (*Wallet, error) {
	subwallets, syncState, err := LoadContainer(path, password)
	if err != nil {
		return nil, err
	}
	return newWallet(path, password, transfersPath, subwallets, syncState, client, pollInterval, log)
}

// CreateWallet generates a fresh view key pair, creates one spendable
// subwallet from it, and writes the encrypted container and an empty
// transfers database to disk.
func CreateWallet(path, password, transfersPath string, client node.Client, currentHeight uint64, pollInterval time.Duration, log *persist.Logger) (*Wallet, error) {
	viewSecret, _ := crypto.GenerateKeyPair()
	subwallets := NewSubwalletRegistry(viewSecret)
	spendSecret, _ := crypto.GenerateKeyPair()
	if _, err := subwallets.AddSubwallet(&spendSecret, currentHeight, "primary"); err != nil {
		return nil, err
	}

	syncState := SyncState{Height: currentHeight}
	if err := SaveContainer(path, password, subwallets, syncState); err != nil {
		return nil, err
	}
	return newWallet(path, password, transfersPath, subwallets, syncState, client, pollInterval, log)
}

func newWallet(path, password, transfersPath string, subwallets *SubwalletRegistry, syncState SyncState, client node.Client, pollInterval time.Duration, log *persist.Logger) (*Wallet, error) {
	transfers, err := OpenTransfersContainer(transfersPath)
	if err != nil {
		return nil, err
	}

	consumer := NewTransfersConsumer(subwallets, transfers)
	viewKeys := []crypto.PublicKey{subwallets.ViewPublicKey}
	sync := NewSynchronizer(client, consumer, syncState, viewKeys, pollInterval, log)
	builder := NewTransactionBuilder(subwallets, transfers, client)
	cleaner := NewPoolCleaner(types.RecentlyDeletedSuppressTimeout, WallClockNow)

	w := &Wallet{
		path:       path,
		password:   password,
		subwallets: subwallets,
		transfers:  transfers,
		consumer:   consumer,
		sync:       sync,
		builder:    builder,
		cleaner:    cleaner,
		client:     client,
		log:        log,
		tasks:      make(chan task),
		quit:       make(chan struct{}),
	}

	w.wg.Add(1)
	go w.dispatchLoop()

	return w, nil
}

// dispatchLoop is the single worker goroutine: every enqueued task runs here
// and nowhere else, so enqueued tasks never overlap one another.
func (w *Wallet) dispatchLoop() {
	defer w.wg.Done()
	for {
		select {
		case t := <-w.tasks:
			t.run()
			close(t.done)
		case <-w.quit:
			return
		}
	}
}

// dispatch enqueues fn on the worker goroutine and blocks until it runs.
// This is the "remote spawn" primitive generalized to a synchronous call;
// async callers use dispatchAsync instead.
func (w *Wallet) dispatch(fn func()) {
	t := task{run: fn, done: make(chan struct{})}
	select {
	case w.tasks <- t:
		<-t.done
	case <-w.quit:
	}
}

// dispatchAsync enqueues fn without waiting for it to run, returning a
// channel that closes once it has. Used for long-running operations (like
// building and broadcasting a transaction) that callers may want to await
// without blocking the calling goroutine.
func (w *Wallet) dispatchAsync(fn func()) <-chan struct{} {
	t := task{run: fn, done: make(chan struct{})}
	go func() {
		select {
		case w.tasks <- t:
		case <-w.quit:
			close(t.done)
		}
	}()
	return t.done
}

// Start launches the synchronizer's background polling loop.
func (w *Wallet) Start() {
	go w.sync.Run()
}

// withSynchronizerPaused stops the synchronizer, runs fn, and restarts
// polling on every exit path, including a panic from fn, by starting a fresh
// synchronizer from the stopped one's sync state. Once the wallet is closed,
// polling is not restarted. Per the design this guard wraps every call that
// mutates the registry or rewrites the container file, since the
// synchronizer must never observe a registry or sync-state mid-mutation.
func (w *Wallet) withSynchronizerPaused(fn func() error) error {
	if err := w.sync.Stop(); err != nil {
		return err
	}
	defer func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}
		old := w.sync
		w.sync = NewSynchronizer(w.client, w.consumer, old.State(), old.viewKeys, old.pollInterval, w.log)
		go w.sync.Run()
	}()
	return fn()
}

// Close stops the synchronizer, saves the container, closes the transfers
// database, and shuts down the dispatcher's worker goroutine.
func (w *Wallet) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	var saveErr error
	err := w.withSynchronizerPaused(func() error {
		saveErr = SaveContainer(w.path, w.password, w.subwallets, w.sync.State())
		return w.transfers.Close()
	})
	close(w.quit)
	w.wg.Wait()
	if err != nil {
		return err
	}
	return saveErr
}

// Save persists the current registry and sync position to the container
// file, pausing the synchronizer around the write.
func (w *Wallet) Save() error {
	var err error
	w.dispatch(func() {
		err = w.withSynchronizerPaused(func() error {
			return SaveContainer(w.path, w.password, w.subwallets, w.sync.State())
		})
	})
	return err
}

// AddSubwallet creates a new spendable subwallet (or, if spendSecret is nil,
// a view-only one tracking spendPublic) and persists the container.
func (w *Wallet) AddSubwallet(spendSecret *crypto.SecretKey, spendPublic crypto.PublicKey, creationHeight uint64, label string) (sw Subwallet, err error) {
	w.dispatch(func() {
		err = w.withSynchronizerPaused(func() error {
			var addErr error
			if spendSecret != nil {
				sw, addErr = w.subwallets.AddSubwallet(spendSecret, creationHeight, label)
			} else {
				sw, addErr = w.subwallets.AddViewOnlySubwallet(spendPublic, creationHeight, label)
			}
			if addErr != nil {
				return addErr
			}
			return SaveContainer(w.path, w.password, w.subwallets, w.sync.State())
		})
	})
	return sw, err
}

// GetBalance returns the unlocked and locked balance across the given
// subwallets (nil means every subwallet) as of the synchronizer's current
// height.
func (w *Wallet) GetBalance(subwalletIndexes []int) (unlocked, locked uint64, err error) {
	w.dispatch(func() {
		unlocked, locked, err = w.transfers.Balance(subwalletIndexes, w.sync.State().Height)
	})
	return unlocked, locked, err
}

// ListTransactions returns the wallet's recorded transaction history, most
// recent first.
func (w *Wallet) ListTransactions() (txs []types.WalletTransaction, err error) {
	w.dispatch(func() {
		txs, err = w.transfers.ListTransactions()
	})
	return txs, err
}

// GetAddress returns the address string for a given subwallet index.
func (w *Wallet) GetAddress(subwalletIndex int) (addr types.Address, err error) {
	w.dispatch(func() {
		addr, err = w.subwallets.Address(subwalletIndex)
	})
	return addr, err
}

// Transfer builds, signs and broadcasts a transaction for params, running
// asynchronously on the dispatcher's worker goroutine. The returned channel
// receives exactly one TransferResult once the task has run; callers that
// want a blocking call can simply receive from it immediately. If the wallet
// is closed before the task runs, nothing is sent.
func (w *Wallet) Transfer(ctx context.Context, params types.TransactionParameters) (result <-chan TransferResult) {
	out := make(chan TransferResult, 1)
	w.dispatchAsync(func() {
		height := w.sync.State().Height
		tx, err := w.builder.Build(ctx, params, height)
		if err != nil {
			out <- TransferResult{Err: err}
			return
		}
		if err := w.builder.Broadcast(ctx, tx); err != nil {
			out <- TransferResult{Err: err}
			return
		}
		hash, hashErr := tx.Hash()
		if hashErr != nil {
			out <- TransferResult{Err: hashErr}
			return
		}

		wtx := types.WalletTransaction{
			Hash:       hash,
			Fee:        params.Fee,
			UnlockTime: params.UnlockTime,
			PaymentID:  params.PaymentID,
		}
		for _, d := range params.Destinations {
			wtx.Transfers = append(wtx.Transfers, types.WalletTransfer{Amount: -int64(d.Amount)})
		}
		if err := w.transfers.AddTransaction(wtx); err != nil {
			out <- TransferResult{Err: err}
			return
		}

		w.cleaner.Track(hash, nil, WallClockNow())
		out <- TransferResult{Hash: hash}
	})
	return out
}

// TransferResult is the outcome of an asynchronous Transfer call.
type TransferResult struct {
	Hash crypto.Hash
	Err  error
}

// SendFusionTransaction consolidates dust outputs owned by subwalletIndex
// into fewer, larger ones and broadcasts the result, running asynchronously
// like Transfer.
func (w *Wallet) SendFusionTransaction(ctx context.Context, subwalletIndex int, mixin int) <-chan TransferResult {
	out := make(chan TransferResult, 1)
	w.dispatchAsync(func() {
		height := w.sync.State().Height
		tx, err := w.builder.BuildFusion(ctx, subwalletIndex, mixin, height)
		if err != nil {
			out <- TransferResult{Err: err}
			return
		}
		if err := w.builder.Broadcast(ctx, tx); err != nil {
			out <- TransferResult{Err: err}
			return
		}
		hash, err := tx.Hash()
		if err != nil {
			out <- TransferResult{Err: err}
			return
		}
		if err := w.transfers.AddTransaction(types.WalletTransaction{Hash: hash}); err != nil {
			out <- TransferResult{Err: err}
			return
		}
		w.cleaner.Track(hash, nil, WallClockNow())
		out <- TransferResult{Hash: hash}
	})
	return out
}

// CleanPool runs the pool cleaner's eviction pass against the synchronizer's
// current height, forgetting any locally tracked pool transactions it
// evicts.
func (w *Wallet) CleanPool() (evicted []crypto.Hash, err error) {
	w.dispatch(func() {
		evicted = w.cleaner.Clean(w.sync.State().Height, nil)
	})
	return evicted, nil
}
