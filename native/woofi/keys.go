package woofi

import (
	"encoding/binary"

	"woofi/crypto"
)

// ModuleName identifies the ledger in pause lists, logs and metrics.
const ModuleName = "woofi"

var (
	// ProgramID is the identity of the ledger program.
	ProgramID = crypto.ProgramAddress(ModuleName)
	// SystemProgramID is the identity of the host's system program.
	SystemProgramID = crypto.ProgramAddress("system")

	platformSeed = []byte("platform")
	dogSeed      = []byte("dog")
	donationSeed = []byte("donation")
)

// PlatformAddress returns the address of the platform singleton.
func PlatformAddress() [20]byte {
	addr, err := crypto.DeriveAddress(ProgramID, platformSeed)
	if err != nil {
		// A fixed seed cannot exceed the derivation limits.
		panic(err)
	}
	return addr
}

// DogAddress returns the address of the dog record registered under name.
// Names longer than the derivation seed limit have no address.
func DogAddress(name string) ([20]byte, error) {
	return crypto.DeriveAddress(ProgramID, dogSeed, []byte(name))
}

// DonationAddress returns the address of the donation made by donor at
// timestamp.
func DonationAddress(donor [20]byte, timestamp int64) ([20]byte, error) {
	return crypto.DeriveAddress(ProgramID, donationSeed, donor[:], timestampSeed(timestamp))
}

func timestampSeed(ts int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(ts))
	return buf
}
