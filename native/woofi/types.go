package woofi

import "woofi/native/program"

// Record discriminators.
var (
	platformKind = program.NewDiscriminator("Platform")
	dogKind      = program.NewDiscriminator("Dog")
	donationKind = program.NewDiscriminator("Donation")
)

// Platform is the singleton configuration record.
type Platform struct {
	Admin          [20]byte `json:"admin"`
	Treasury       [20]byte `json:"treasury"`
	TotalDonations uint64   `json:"totalDonations"`
	DogCount       uint32   `json:"dogCount"`
	DonationCount  uint32   `json:"donationCount"`
}

// Dog is a rescue dog accepting donations. Only the identity stored in Admin
// may update it.
type Dog struct {
	Name           string   `json:"name"`
	Age            uint8    `json:"age"`
	ImageURL       string   `json:"imageUrl"`
	Story          string   `json:"story"`
	NeedsFood      bool     `json:"needsFood"`
	NeedsToys      bool     `json:"needsToys"`
	NeedsMedical   bool     `json:"needsMedical"`
	NeedsShelter   bool     `json:"needsShelter"`
	NeedsOther     string   `json:"needsOther"`
	TotalDonations uint64   `json:"totalDonations"`
	Admin          [20]byte `json:"admin"`
	Active         bool     `json:"active"`
}

// Donation is the immutable receipt of one donation.
type Donation struct {
	Donor     [20]byte `json:"donor"`
	DogID     [20]byte `json:"dogId"`
	Amount    uint64   `json:"amount"`
	Timestamp int64    `json:"timestamp"`
	Message   string   `json:"message"`
}

// storedDonation is the persisted layout. RLP has no signed integers, so the
// timestamp is kept as its two's complement bit pattern.
type storedDonation struct {
	Donor     [20]byte
	DogID     [20]byte
	Amount    uint64
	Timestamp uint64
	Message   string
}

func (d *Donation) stored() *storedDonation {
	return &storedDonation{
		Donor:     d.Donor,
		DogID:     d.DogID,
		Amount:    d.Amount,
		Timestamp: uint64(d.Timestamp),
		Message:   d.Message,
	}
}

func (s *storedDonation) donation() *Donation {
	return &Donation{
		Donor:     s.Donor,
		DogID:     s.DogID,
		Amount:    s.Amount,
		Timestamp: int64(s.Timestamp),
		Message:   s.Message,
	}
}
