package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"woofi/storage/trie"
)

// Manager reads and writes ledger state on top of a trie. Native balances live
// under "account:<addr>" and program data under "kv:<key>", so a program key
// can never alias an account. Callers that need all-or-nothing semantics hand
// the manager a working copy of the committed trie and only commit the copy
// once the whole operation succeeded.
type Manager struct {
	trie *trie.Trie
}

// NewManager creates a state manager operating on the provided trie.
func NewManager(tr *trie.Trie) *Manager {
	return &Manager{trie: tr}
}

// Root returns the root hash reflecting every pending write.
func (m *Manager) Root() common.Hash { return m.trie.Hash() }

var kvPrefix = []byte("kv:")

func kvKey(key []byte) []byte {
	buf := make([]byte, 0, len(kvPrefix)+len(key))
	buf = append(buf, kvPrefix...)
	return append(buf, key...)
}

// KVPut stores the rlp encoding of value under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.trie.Update(kvKey(key), encoded)
}

// KVGet decodes the value stored under key into out and reports whether the
// key exists. A nil out only checks presence.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.trie.Get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVHas reports whether any value is stored under key.
func (m *Manager) KVHas(key []byte) (bool, error) {
	return m.KVGet(key, nil)
}
