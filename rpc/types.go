package rpc

import (
	"woofi/crypto"
	"woofi/native/woofi"
)

type BalanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

type PlatformResult struct {
	Address        string `json:"address"`
	Admin          string `json:"admin"`
	Treasury       string `json:"treasury"`
	TotalDonations uint64 `json:"totalDonations"`
	DogCount       uint32 `json:"dogCount"`
	DonationCount  uint32 `json:"donationCount"`
}

type DogResult struct {
	Address        string `json:"address"`
	Name           string `json:"name"`
	Age            uint8  `json:"age"`
	ImageURL       string `json:"imageUrl"`
	Story          string `json:"story"`
	NeedsFood      bool   `json:"needsFood"`
	NeedsToys      bool   `json:"needsToys"`
	NeedsMedical   bool   `json:"needsMedical"`
	NeedsShelter   bool   `json:"needsShelter"`
	NeedsOther     string `json:"needsOther"`
	TotalDonations uint64 `json:"totalDonations"`
	Admin          string `json:"admin"`
	Active         bool   `json:"active"`
}

type DonationResult struct {
	Address   string `json:"address"`
	Donor     string `json:"donor"`
	Dog       string `json:"dog"`
	Amount    uint64 `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

// DogQuery selects a dog by name or by address.
type DogQuery struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// DonationQuery selects a donation by address or by donor and timestamp.
type DonationQuery struct {
	Address   string `json:"address,omitempty"`
	Donor     string `json:"donor,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// DeriveQuery lists the optional inputs of woofi_deriveAddresses.
type DeriveQuery struct {
	DogName   string `json:"dogName,omitempty"`
	Donor     string `json:"donor,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

type AddressesResult struct {
	ProgramID       string `json:"programId"`
	SystemProgramID string `json:"systemProgramId"`
	Platform        string `json:"platform"`
	Dog             string `json:"dog,omitempty"`
	Donation        string `json:"donation,omitempty"`
}

type StateRootResult struct {
	Root    string `json:"root"`
	ChainID uint64 `json:"chainId"`
}

// LedgerErrorData accompanies failed transactions.
type LedgerErrorData struct {
	Code    uint32      `json:"code,omitempty"`
	Name    string      `json:"name,omitempty"`
	Receipt interface{} `json:"receipt,omitempty"`
}

func bech(addr [20]byte) string { return crypto.AddressFromArray(addr).String() }

func platformResult(p *woofi.Platform) PlatformResult {
	return PlatformResult{
		Address:        bech(woofi.PlatformAddress()),
		Admin:          bech(p.Admin),
		Treasury:       bech(p.Treasury),
		TotalDonations: p.TotalDonations,
		DogCount:       p.DogCount,
		DonationCount:  p.DonationCount,
	}
}

func dogResult(addr [20]byte, d *woofi.Dog) DogResult {
	return DogResult{
		Address:        bech(addr),
		Name:           d.Name,
		Age:            d.Age,
		ImageURL:       d.ImageURL,
		Story:          d.Story,
		NeedsFood:      d.NeedsFood,
		NeedsToys:      d.NeedsToys,
		NeedsMedical:   d.NeedsMedical,
		NeedsShelter:   d.NeedsShelter,
		NeedsOther:     d.NeedsOther,
		TotalDonations: d.TotalDonations,
		Admin:          bech(d.Admin),
		Active:         d.Active,
	}
}

func donationResult(addr [20]byte, d *woofi.Donation) DonationResult {
	return DonationResult{
		Address:   bech(addr),
		Donor:     bech(d.Donor),
		Dog:       bech(d.DogID),
		Amount:    d.Amount,
		Timestamp: d.Timestamp,
		Message:   d.Message,
	}
}
