package trie

import (
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	gethtrie "github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/trie/trienode"
	"github.com/ethereum/go-ethereum/triedb"

	"woofi/storage"
)

// Trie wraps go-ethereum's trie implementation behind the small API the ledger
// state needs. Keys are stored under their keccak256 hash, so callers pass
// readable namespaced keys such as "account:<addr>".
//
// Every ledger operation runs against a Copy of the committed trie, so a failed
// operation is rolled back by dropping the copy.
//
// Trie is not safe for concurrent use.
type Trie struct {
	trieDB  *triedb.Database
	trie    *gethtrie.Trie
	root    common.Hash
	version uint64
}

// NewTrie creates a trie backed by the provided storage and optional root. A nil
// or empty root denotes the empty trie.
func NewTrie(store storage.Database, root []byte) (*Trie, error) {
	trieDB := store.TrieDB()
	rootHash := gethtypes.EmptyRootHash
	if len(root) > 0 {
		rootHash = common.BytesToHash(root)
	}
	underlying, err := gethtrie.New(gethtrie.TrieID(rootHash), trieDB)
	if err != nil {
		return nil, err
	}
	return &Trie{
		trieDB: trieDB,
		trie:   underlying,
		root:   rootHash,
	}, nil
}

// Get retrieves the value stored under key. Missing keys yield a nil slice and
// no error.
func (t *Trie) Get(key []byte) ([]byte, error) {
	return t.trie.Get(crypto.Keccak256(key))
}

// Update inserts or updates the value stored under key.
func (t *Trie) Update(key, value []byte) error {
	return t.trie.Update(crypto.Keccak256(key), value)
}

// Hash returns the root hash of the trie reflecting all in-memory mutations.
func (t *Trie) Hash() common.Hash {
	return t.trie.Hash()
}

// Root returns the last committed root hash.
func (t *Trie) Root() common.Hash {
	return t.root
}

// Copy returns an independent working copy sharing the same node database.
func (t *Trie) Copy() *Trie {
	return &Trie{
		trieDB:  t.trieDB,
		trie:    t.trie.Copy(),
		root:    t.root,
		version: t.version,
	}
}

// Commit persists the pending changes to the backing database and returns the
// new root hash. The wrapper is reloaded at the new root so it can keep
// accepting updates.
func (t *Trie) Commit() (common.Hash, error) {
	parent := t.root
	newRoot, nodes := t.trie.Commit(false)
	if nodes != nil {
		merged := trienode.NewMergedNodeSet()
		if err := merged.Merge(nodes); err != nil {
			return common.Hash{}, err
		}
		if err := t.trieDB.Update(newRoot, parent, t.version+1, merged, nil); err != nil {
			return common.Hash{}, err
		}
		if err := t.trieDB.Commit(newRoot, false); err != nil {
			return common.Hash{}, err
		}
	}
	underlying, err := gethtrie.New(gethtrie.TrieID(newRoot), t.trieDB)
	if err != nil {
		return common.Hash{}, err
	}
	t.trie = underlying
	t.root = newRoot
	t.version++
	return newRoot, nil
}
