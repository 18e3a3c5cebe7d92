package woofi

import (
	"errors"
	"testing"

	"woofi/native/program"
)

func TestResolveAddDogChecksSeeds(t *testing.T) {
	signer := addr(0xA0)
	args := AddDogArgs{Name: "Rex"}
	refs, err := AddDogRefs("Rex")
	if err != nil {
		t.Fatalf("refs: %v", err)
	}
	accts, err := ResolveAddDog(signer, refs, args)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if accts.Admin != signer || accts.Platform != PlatformAddress() {
		t.Fatalf("unexpected accounts: %+v", accts)
	}

	other, _ := AddDogRefs("Bella")
	if _, err := ResolveAddDog(signer, other, args); !errors.Is(err, program.ErrConstraintSeeds) {
		t.Fatalf("expected ErrConstraintSeeds, got %v", err)
	}
}

func TestResolveRejectsWrongCountAndWidth(t *testing.T) {
	if _, err := ResolveInitializePlatform(addr(1), nil); !errors.Is(err, program.ErrAccountCount) {
		t.Fatalf("expected ErrAccountCount, got %v", err)
	}
	if _, err := ResolveUpdateDog(addr(1), [][]byte{{0x01, 0x02}}); !errors.Is(err, program.ErrAccountReference) {
		t.Fatalf("expected ErrAccountReference, got %v", err)
	}
	bogus := refs(addr(9))
	if _, err := ResolveInitializePlatform(addr(1), bogus); !errors.Is(err, program.ErrConstraintSeeds) {
		t.Fatalf("expected ErrConstraintSeeds, got %v", err)
	}
}

func TestResolveDonateBindsDonationToSigner(t *testing.T) {
	donor := addr(0xD0)
	dog, _ := DogAddress("Rex")
	treasury := addr(0x7E)
	refs, err := DonateRefs(donor, dog, treasury, 1000)
	if err != nil {
		t.Fatalf("refs: %v", err)
	}
	accts, err := ResolveDonate(donor, refs, DonateArgs{Amount: 1, Timestamp: 1000})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if accts.Donor != donor || accts.Dog != dog || accts.Treasury != treasury {
		t.Fatalf("unexpected accounts: %+v", accts)
	}

	if _, err := ResolveDonate(addr(0xD1), refs, DonateArgs{Amount: 1, Timestamp: 1000}); !errors.Is(err, program.ErrConstraintSeeds) {
		t.Fatalf("other signer: expected ErrConstraintSeeds, got %v", err)
	}
	if _, err := ResolveDonate(donor, refs, DonateArgs{Amount: 1, Timestamp: 1001}); !errors.Is(err, program.ErrConstraintSeeds) {
		t.Fatalf("other timestamp: expected ErrConstraintSeeds, got %v", err)
	}
}

func TestResolveWithdrawFunds(t *testing.T) {
	refs := WithdrawFundsRefs(addr(0x7E), addr(0x42))
	accts, err := ResolveWithdrawFunds(addr(0xA0), refs)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if accts.Treasury != addr(0x7E) || accts.Recipient != addr(0x42) || accts.Admin != addr(0xA0) {
		t.Fatalf("unexpected accounts: %+v", accts)
	}
}
