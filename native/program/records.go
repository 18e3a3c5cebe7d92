package program

import (
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Runtime errors raised while resolving or creating records. They carry no
// ledger error code.
var (
	ErrAccountInUse          = errors.New("runtime: account already in use")
	ErrAccountNotInitialized = errors.New("runtime: account not initialized")
	ErrAccountDiscriminator  = errors.New("runtime: account discriminator mismatch")
	ErrAccountOwner          = errors.New("runtime: account owned by a different program")
	ErrConstraintAddress     = errors.New("runtime: address constraint violated")
	ErrConstraintSeeds       = errors.New("runtime: seeds constraint violated")
	ErrAccountCount          = errors.New("runtime: unexpected number of account references")
	ErrAccountReference      = errors.New("runtime: account reference must be 20 bytes")
	ErrArithmeticOverflow    = errors.New("runtime: arithmetic overflow")
)

const discriminatorLength = 8

// Discriminator tags a record with its type so one record kind cannot be
// passed where another is expected.
type Discriminator [discriminatorLength]byte

// NewDiscriminator derives the tag for the named record type.
func NewDiscriminator(name string) Discriminator {
	var out Discriminator
	copy(out[:], ethcrypto.Keccak256([]byte("account:"+name)))
	return out
}

// KVStore is the subset of the state manager the record layer needs.
type KVStore interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

type storedRecord struct {
	Owner         [20]byte
	Discriminator Discriminator
	Data          []byte
}

var recordPrefix = []byte("record:")

func recordKey(addr [20]byte) []byte {
	buf := make([]byte, len(recordPrefix)+len(addr))
	copy(buf, recordPrefix)
	copy(buf[len(recordPrefix):], addr[:])
	return buf
}

// Records stores typed records owned by one program at derived addresses.
type Records struct {
	store KVStore
	owner [20]byte
}

// NewRecords binds the record layer to a store and an owning program.
func NewRecords(store KVStore, owner [20]byte) *Records {
	return &Records{store: store, owner: owner}
}

// Exists reports whether any record lives at addr.
func (r *Records) Exists(addr [20]byte) (bool, error) {
	if r == nil || r.store == nil {
		return false, errors.New("runtime: record store unavailable")
	}
	return r.store.KVGet(recordKey(addr), nil)
}

// Load decodes the record at addr into out. Missing records, records of a
// different type and records owned by another program are runtime errors.
func (r *Records) Load(addr [20]byte, kind Discriminator, out interface{}) error {
	if r == nil || r.store == nil {
		return errors.New("runtime: record store unavailable")
	}
	var stored storedRecord
	ok, err := r.store.KVGet(recordKey(addr), &stored)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccountNotInitialized
	}
	if stored.Owner != r.owner {
		return ErrAccountOwner
	}
	if stored.Discriminator != kind {
		return ErrAccountDiscriminator
	}
	if err := rlp.DecodeBytes(stored.Data, out); err != nil {
		return fmt.Errorf("runtime: decode record: %w", err)
	}
	return nil
}

// Init creates a record at addr. It fails when the address is occupied.
func (r *Records) Init(addr [20]byte, kind Discriminator, value interface{}) error {
	exists, err := r.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return ErrAccountInUse
	}
	return r.Save(addr, kind, value)
}

// Save overwrites the record at addr.
func (r *Records) Save(addr [20]byte, kind Discriminator, value interface{}) error {
	if r == nil || r.store == nil {
		return errors.New("runtime: record store unavailable")
	}
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("runtime: encode record: %w", err)
	}
	return r.store.KVPut(recordKey(addr), &storedRecord{Owner: r.owner, Discriminator: kind, Data: data})
}
