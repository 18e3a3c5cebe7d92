package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"woofi/core/events"
	"woofi/core/state"
	"woofi/core/types"
	"woofi/crypto"
	nativecommon "woofi/native/common"
	"woofi/native/woofi"
	"woofi/observability"
	"woofi/storage"
	"woofi/storage/trie"
)

var (
	ErrNilTransaction  = errors.New("core: nil transaction")
	ErrChainIDMismatch = errors.New("core: chain id mismatch")
	ErrNonceMismatch   = errors.New("core: nonce mismatch")
	ErrUnknownTxType   = errors.New("core: unknown transaction type")
)

var headRootKey = []byte("woofi/head-root")

// Config carries the node settings that influence state transitions.
type Config struct {
	ChainID       uint64
	PausedModules []string
	Genesis       []GenesisAlloc
}

// Node owns the committed ledger state and applies transactions one at a
// time. Each transaction runs against a copy of the committed trie; the copy
// replaces the committed trie only when every step succeeded.
type Node struct {
	db      storage.Database
	trie    *trie.Trie
	chainID *big.Int
	pauses  nativecommon.PauseView
	emitter events.Emitter
	logger  *slog.Logger
	metrics *observability.LedgerMetricsRegistry
	mu      sync.Mutex
}

// NewNode opens the ledger stored in db. An empty database is initialised
// with the configured genesis allocations.
func NewNode(db storage.Database, cfg Config) (*Node, error) {
	if db == nil {
		return nil, fmt.Errorf("core: database must not be nil")
	}
	n := &Node{
		db:      db,
		chainID: new(big.Int).SetUint64(cfg.ChainID),
		pauses:  nativecommon.NewPausedModules(cfg.PausedModules),
		emitter: events.NoopEmitter{},
		logger:  slog.Default(),
		metrics: observability.LedgerMetrics(),
	}

	head, err := db.Get(headRootKey)
	switch {
	case err == nil:
		tr, err := trie.NewTrie(db, head)
		if err != nil {
			return nil, fmt.Errorf("core: open state at %x: %w", head, err)
		}
		n.trie = tr
		return n, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("core: read head root: %w", err)
	}

	tr, err := trie.NewTrie(db, nil)
	if err != nil {
		return nil, err
	}
	if err := applyGenesis(state.NewManager(tr), cfg.Genesis); err != nil {
		return nil, err
	}
	root, err := tr.Commit()
	if err != nil {
		return nil, fmt.Errorf("core: commit genesis: %w", err)
	}
	if err := db.Put(headRootKey, root.Bytes()); err != nil {
		return nil, fmt.Errorf("core: persist genesis root: %w", err)
	}
	n.trie = tr
	n.logger.Info("genesis committed", "root", root.Hex(), "allocations", len(cfg.Genesis))
	return n, nil
}

// SetEmitter configures where committed events are delivered.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if emitter == nil {
		n.emitter = events.NoopEmitter{}
		return
	}
	n.emitter = emitter
}

// SetLogger replaces the node logger.
func (n *Node) SetLogger(logger *slog.Logger) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if logger == nil {
		logger = slog.Default()
	}
	n.logger = logger
}

// ChainID returns the chain identifier transactions must be signed for.
func (n *Node) ChainID() uint64 { return n.chainID.Uint64() }

// ApplyTransaction verifies and executes tx. The returned receipt describes
// the outcome; a non-nil error means the committed state is unchanged.
func (n *Node) ApplyTransaction(tx *types.Transaction) (*types.Receipt, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}
	start := time.Now()

	n.mu.Lock()
	defer n.mu.Unlock()

	receipt := &types.Receipt{
		Type:      tx.Type.String(),
		Status:    types.ReceiptStatusFailed,
		StateRoot: n.trie.Root().Hex(),
	}
	if hash, err := tx.Hash(); err == nil {
		receipt.TxHash = "0x" + hex.EncodeToString(hash)
	}

	err := n.apply(tx, receipt)
	outcome := "success"
	if err != nil {
		outcome = "error"
		receipt.Error = err.Error()
		if domain, ok := woofi.AsError(err); ok {
			outcome = "rejected"
			receipt.Code = uint32(domain.Code)
		}
	}
	n.metrics.ObserveTx(receipt.Type, outcome, time.Since(start))
	n.logger.Info("transaction applied",
		"tx", receipt.TxHash,
		"type", receipt.Type,
		"signer", receipt.Signer,
		"status", outcome,
		"code", receipt.Code,
		"root", receipt.StateRoot,
	)
	return receipt, err
}

func (n *Node) apply(tx *types.Transaction, receipt *types.Receipt) error {
	if tx.ChainID == nil || tx.ChainID.Cmp(n.chainID) != 0 {
		return fmt.Errorf("%w: want %s, got %v", ErrChainIDMismatch, n.chainID, tx.ChainID)
	}
	from, err := tx.From()
	if err != nil {
		return err
	}
	var signer [20]byte
	copy(signer[:], from)
	receipt.Signer = crypto.AddressFromArray(signer).String()

	if err := nativecommon.Guard(n.pauses, moduleFor(tx.Type)); err != nil {
		return fmt.Errorf("%s: %w", moduleFor(tx.Type), err)
	}

	working := n.trie.Copy()
	manager := state.NewManager(working)
	account, err := manager.GetAccount(signer[:])
	if err != nil {
		return err
	}
	if account.Nonce != tx.Nonce {
		return fmt.Errorf("%w: want %d, got %d", ErrNonceMismatch, account.Nonce, tx.Nonce)
	}

	buffer := &events.Buffer{}
	if err := dispatch(manager, buffer, signer, tx); err != nil {
		return err
	}
	if err := manager.IncrementNonce(signer[:]); err != nil {
		return err
	}
	root, err := working.Commit()
	if err != nil {
		return fmt.Errorf("core: commit: %w", err)
	}
	if err := n.db.Put(headRootKey, root.Bytes()); err != nil {
		return fmt.Errorf("core: persist head root: %w", err)
	}
	n.trie = working

	receipt.Status = types.ReceiptStatusSuccess
	receipt.StateRoot = root.Hex()
	receipt.Events = buffer.Payloads()
	for _, evt := range receipt.Events {
		observability.Events().RecordEvent(evt)
	}
	buffer.Flush(n.emitter)
	return nil
}

func moduleFor(t types.TxType) string {
	if t == types.TxTypeTransfer {
		return "system"
	}
	return woofi.ModuleName
}

// StateRoot returns the committed state root.
func (n *Node) StateRoot() common.Hash {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.trie.Root()
}
