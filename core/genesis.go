package core

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"woofi/core/state"
)

// GenesisAlloc funds one identity with native balance when the ledger is
// created.
type GenesisAlloc struct {
	Address [20]byte
	Balance *big.Int
}

// applyGenesis writes the allocations in address order so every node derives
// the same genesis root from the same configuration.
func applyGenesis(manager *state.Manager, allocs []GenesisAlloc) error {
	sorted := make([]GenesisAlloc, len(allocs))
	copy(sorted, allocs)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Address[:], sorted[j].Address[:]) < 0
	})
	for i, alloc := range sorted {
		if i > 0 && sorted[i-1].Address == alloc.Address {
			return fmt.Errorf("genesis: duplicate allocation for %x", alloc.Address)
		}
		if alloc.Balance == nil || alloc.Balance.Sign() < 0 {
			return fmt.Errorf("genesis: invalid balance for %x", alloc.Address)
		}
		account, err := manager.GetAccount(alloc.Address[:])
		if err != nil {
			return err
		}
		account.Balance = new(big.Int).Set(alloc.Balance)
		if err := manager.PutAccount(alloc.Address[:], account); err != nil {
			return fmt.Errorf("genesis: fund %x: %w", alloc.Address, err)
		}
	}
	return nil
}
