package crypto

import (
	"errors"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	// MaxSeedLength bounds a single derivation seed.
	MaxSeedLength = 32
	// MaxSeeds bounds the number of seeds accepted by DeriveAddress.
	MaxSeeds = 16
)

var (
	ErrMaxSeedLength = errors.New("crypto: derivation seed exceeds 32 bytes")
	ErrMaxSeeds      = errors.New("crypto: too many derivation seeds")

	derivationMarker = []byte("ProgramDerivedAddress")
	programMarker    = []byte("woofi/program/")
)

// ProgramAddress returns the well-known identity of a built-in program.
func ProgramAddress(name string) [AddressLength]byte {
	digest := ethcrypto.Keccak256(programMarker, []byte(name))
	var out [AddressLength]byte
	copy(out[:], digest[len(digest)-AddressLength:])
	return out
}

// DeriveAddress computes the record address owned by program for the supplied
// seeds. Seeds are length prefixed so ("ab","c") and ("a","bc") never collide.
func DeriveAddress(program [AddressLength]byte, seeds ...[]byte) ([AddressLength]byte, error) {
	var out [AddressLength]byte
	if len(seeds) > MaxSeeds {
		return out, ErrMaxSeeds
	}
	parts := make([][]byte, 0, len(seeds)*2+2)
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return out, ErrMaxSeedLength
		}
		parts = append(parts, []byte{byte(len(seed))}, seed)
	}
	parts = append(parts, program[:], derivationMarker)
	digest := ethcrypto.Keccak256(parts...)
	copy(out[:], digest[len(digest)-AddressLength:])
	return out, nil
}
