package woofi

import (
	"fmt"

	"woofi/native/program"
)

// InitializePlatformAccounts are the records touched by InitializePlatform.
type InitializePlatformAccounts struct {
	Admin    [20]byte
	Platform [20]byte
}

// AddDogAccounts are the records touched by AddDog.
type AddDogAccounts struct {
	Admin    [20]byte
	Platform [20]byte
	Dog      [20]byte
}

// UpdateDogAccounts are the records touched by UpdateDog.
type UpdateDogAccounts struct {
	Admin [20]byte
	Dog   [20]byte
}

// DonateAccounts are the records touched by Donate.
type DonateAccounts struct {
	Donor    [20]byte
	Platform [20]byte
	Dog      [20]byte
	Donation [20]byte
	Treasury [20]byte
}

// WithdrawFundsAccounts are the records touched by WithdrawFunds.
type WithdrawFundsAccounts struct {
	Admin     [20]byte
	Platform  [20]byte
	Treasury  [20]byte
	Recipient [20]byte
}

func refsToAddresses(refs [][]byte, want int) ([][20]byte, error) {
	if len(refs) != want {
		return nil, fmt.Errorf("%w: want %d, got %d", program.ErrAccountCount, want, len(refs))
	}
	out := make([][20]byte, len(refs))
	for i, ref := range refs {
		if len(ref) != 20 {
			return nil, program.ErrAccountReference
		}
		copy(out[i][:], ref)
	}
	return out, nil
}

func requireSeeds(got [20]byte, derive func() ([20]byte, error)) error {
	want, err := derive()
	if err != nil {
		return fmt.Errorf("%w: %v", program.ErrConstraintSeeds, err)
	}
	if got != want {
		return program.ErrConstraintSeeds
	}
	return nil
}

func platformSeeds() ([20]byte, error) { return PlatformAddress(), nil }

// ResolveInitializePlatform maps references [platform].
func ResolveInitializePlatform(signer [20]byte, refs [][]byte) (InitializePlatformAccounts, error) {
	addrs, err := refsToAddresses(refs, 1)
	if err != nil {
		return InitializePlatformAccounts{}, err
	}
	if err := requireSeeds(addrs[0], platformSeeds); err != nil {
		return InitializePlatformAccounts{}, err
	}
	return InitializePlatformAccounts{Admin: signer, Platform: addrs[0]}, nil
}

// ResolveAddDog maps references [platform, dog]; the dog must sit at the
// address derived from the dog's name.
func ResolveAddDog(signer [20]byte, refs [][]byte, args AddDogArgs) (AddDogAccounts, error) {
	addrs, err := refsToAddresses(refs, 2)
	if err != nil {
		return AddDogAccounts{}, err
	}
	if err := requireSeeds(addrs[0], platformSeeds); err != nil {
		return AddDogAccounts{}, err
	}
	if err := requireSeeds(addrs[1], func() ([20]byte, error) { return DogAddress(args.Name) }); err != nil {
		return AddDogAccounts{}, err
	}
	return AddDogAccounts{Admin: signer, Platform: addrs[0], Dog: addrs[1]}, nil
}

// ResolveUpdateDog maps references [dog].
func ResolveUpdateDog(signer [20]byte, refs [][]byte) (UpdateDogAccounts, error) {
	addrs, err := refsToAddresses(refs, 1)
	if err != nil {
		return UpdateDogAccounts{}, err
	}
	return UpdateDogAccounts{Admin: signer, Dog: addrs[0]}, nil
}

// ResolveDonate maps references [platform, dog, donation, treasury]; the
// donation must sit at the address derived from the donor and timestamp.
func ResolveDonate(signer [20]byte, refs [][]byte, args DonateArgs) (DonateAccounts, error) {
	addrs, err := refsToAddresses(refs, 4)
	if err != nil {
		return DonateAccounts{}, err
	}
	if err := requireSeeds(addrs[0], platformSeeds); err != nil {
		return DonateAccounts{}, err
	}
	if err := requireSeeds(addrs[2], func() ([20]byte, error) { return DonationAddress(signer, args.Timestamp) }); err != nil {
		return DonateAccounts{}, err
	}
	return DonateAccounts{
		Donor:    signer,
		Platform: addrs[0],
		Dog:      addrs[1],
		Donation: addrs[2],
		Treasury: addrs[3],
	}, nil
}

// ResolveWithdrawFunds maps references [platform, treasury, recipient].
func ResolveWithdrawFunds(signer [20]byte, refs [][]byte) (WithdrawFundsAccounts, error) {
	addrs, err := refsToAddresses(refs, 3)
	if err != nil {
		return WithdrawFundsAccounts{}, err
	}
	if err := requireSeeds(addrs[0], platformSeeds); err != nil {
		return WithdrawFundsAccounts{}, err
	}
	return WithdrawFundsAccounts{Admin: signer, Platform: addrs[0], Treasury: addrs[1], Recipient: addrs[2]}, nil
}

// --- client-side reference builders ---

func refs(addrs ...[20]byte) [][]byte {
	out := make([][]byte, len(addrs))
	for i := range addrs {
		out[i] = append([]byte(nil), addrs[i][:]...)
	}
	return out
}

// InitializePlatformRefs builds the references for InitializePlatform.
func InitializePlatformRefs() [][]byte {
	return refs(PlatformAddress())
}

// AddDogRefs builds the references for AddDog.
func AddDogRefs(name string) ([][]byte, error) {
	dog, err := DogAddress(name)
	if err != nil {
		return nil, err
	}
	return refs(PlatformAddress(), dog), nil
}

// UpdateDogRefs builds the references for UpdateDog.
func UpdateDogRefs(dog [20]byte) [][]byte {
	return refs(dog)
}

// DonateRefs builds the references for Donate.
func DonateRefs(donor, dog, treasury [20]byte, timestamp int64) ([][]byte, error) {
	donation, err := DonationAddress(donor, timestamp)
	if err != nil {
		return nil, err
	}
	return refs(PlatformAddress(), dog, donation, treasury), nil
}

// WithdrawFundsRefs builds the references for WithdrawFunds.
func WithdrawFundsRefs(treasury, recipient [20]byte) [][]byte {
	return refs(PlatformAddress(), treasury, recipient)
}
