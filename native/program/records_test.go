package program

import (
	"errors"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
)

type memoryStore struct {
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.data[string(key)] = encoded
	return nil
}

func (m *memoryStore) KVGet(key []byte, out interface{}) (bool, error) {
	encoded, ok := m.data[string(key)]
	if !ok {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, err
	}
	return true, nil
}

type sample struct {
	Name  string
	Count uint32
}

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func TestRecordsInitLoad(t *testing.T) {
	records := NewRecords(newMemoryStore(), addr(0xaa))
	kind := NewDiscriminator("Sample")
	if err := records.Init(addr(1), kind, &sample{Name: "Rex", Count: 3}); err != nil {
		t.Fatalf("init: %v", err)
	}
	var got sample
	if err := records.Load(addr(1), kind, &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != "Rex" || got.Count != 3 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if err := records.Init(addr(1), kind, &sample{}); !errors.Is(err, ErrAccountInUse) {
		t.Fatalf("expected ErrAccountInUse, got %v", err)
	}
}

func TestRecordsLoadFailures(t *testing.T) {
	store := newMemoryStore()
	records := NewRecords(store, addr(0xaa))
	var got sample
	if err := records.Load(addr(2), NewDiscriminator("Sample"), &got); !errors.Is(err, ErrAccountNotInitialized) {
		t.Fatalf("expected ErrAccountNotInitialized, got %v", err)
	}
	if err := records.Save(addr(2), NewDiscriminator("Other"), &sample{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := records.Load(addr(2), NewDiscriminator("Sample"), &got); !errors.Is(err, ErrAccountDiscriminator) {
		t.Fatalf("expected ErrAccountDiscriminator, got %v", err)
	}
	foreign := NewRecords(store, addr(0xbb))
	if err := foreign.Load(addr(2), NewDiscriminator("Other"), &got); !errors.Is(err, ErrAccountOwner) {
		t.Fatalf("expected ErrAccountOwner, got %v", err)
	}
}

func TestCheckedArithmetic(t *testing.T) {
	if sum, err := CheckedAdd64(2, 3); err != nil || sum != 5 {
		t.Fatalf("expected 5, got %d (%v)", sum, err)
	}
	if _, err := CheckedAdd64(math.MaxUint64, 1); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if v, err := CheckedInc32(41); err != nil || v != 42 {
		t.Fatalf("expected 42, got %d (%v)", v, err)
	}
	if _, err := CheckedInc32(math.MaxUint32); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}
