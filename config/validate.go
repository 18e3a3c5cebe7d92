package config

import (
	"fmt"
	"math/big"
	"strings"

	"woofi/crypto"
)

// Validate rejects configurations the node cannot start with.
func (c *Config) Validate() error {
	if c.ChainID == 0 {
		return fmt.Errorf("config: ChainID must be non-zero")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must be set")
	}
	if c.RPC.TxPerMinute < 0 {
		return fmt.Errorf("config: rpc.TxPerMinute must not be negative")
	}
	if c.RPC.Burst < 0 {
		return fmt.Errorf("config: rpc.Burst must not be negative")
	}
	if c.RPC.MaxRequestBodySize < 0 {
		return fmt.Errorf("config: rpc.MaxRequestBodySize must not be negative")
	}
	seen := make(map[[20]byte]struct{}, len(c.Genesis.Alloc))
	for i, alloc := range c.Genesis.Alloc {
		addr, _, err := alloc.Parse()
		if err != nil {
			return fmt.Errorf("config: genesis.alloc[%d]: %w", i, err)
		}
		if _, dup := seen[addr]; dup {
			return fmt.Errorf("config: genesis.alloc[%d]: duplicate address %s", i, alloc.Address)
		}
		seen[addr] = struct{}{}
	}
	return nil
}

// Parse decodes the allocation address and balance.
func (a GenesisAlloc) Parse() ([20]byte, *big.Int, error) {
	addr, err := crypto.ParseAddress(strings.TrimSpace(a.Address))
	if err != nil {
		return [20]byte{}, nil, fmt.Errorf("address %q: %w", a.Address, err)
	}
	balance, ok := new(big.Int).SetString(strings.TrimSpace(a.Balance), 10)
	if !ok || balance.Sign() < 0 {
		return [20]byte{}, nil, fmt.Errorf("balance %q must be a non-negative integer", a.Balance)
	}
	return addr.Array(), balance, nil
}
