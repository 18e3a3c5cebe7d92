package woofi

import (
	"strconv"

	"woofi/core/events"
	"woofi/core/types"
	"woofi/crypto"
)

const (
	// EventTypePlatformInitialized is emitted once when the platform is created.
	EventTypePlatformInitialized = "woofi.platform.initialized"
	// EventTypeDogAdded is emitted when the admin registers a dog.
	EventTypeDogAdded = "woofi.dog.added"
	// EventTypeDogUpdated is emitted when a dog's admin edits the record.
	EventTypeDogUpdated = "woofi.dog.updated"
	// EventTypeDonationMade is emitted for every accepted donation.
	EventTypeDonationMade = "woofi.donation.made"
	// EventTypeFundsWithdrawn is emitted when treasury funds leave the ledger.
	EventTypeFundsWithdrawn = "woofi.funds.withdrawn"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func bech(addr [20]byte) string { return crypto.AddressFromArray(addr).String() }

// PlatformInitializedEvent reports the admin and treasury of a new platform.
func PlatformInitializedEvent(platform [20]byte, p *Platform) *types.Event {
	return types.NewEvent(EventTypePlatformInitialized).
		With("platform", bech(platform)).
		With("admin", bech(p.Admin)).
		With("treasury", bech(p.Treasury))
}

// DogAddedEvent reports a newly registered dog.
func DogAddedEvent(addr [20]byte, dog *Dog, dogCount uint32) *types.Event {
	return types.NewEvent(EventTypeDogAdded).
		With("dog", bech(addr)).
		With("name", dog.Name).
		With("admin", bech(dog.Admin)).
		WithUint("dogCount", uint64(dogCount))
}

// DogUpdatedEvent reports an edited dog.
func DogUpdatedEvent(addr [20]byte, dog *Dog) *types.Event {
	return types.NewEvent(EventTypeDogUpdated).
		With("dog", bech(addr)).
		With("name", dog.Name).
		With("active", strconv.FormatBool(dog.Active))
}

// DonationMadeEvent reports an accepted donation and the dog's new total.
func DonationMadeEvent(addr [20]byte, donation *Donation, dog *Dog) *types.Event {
	return types.NewEvent(EventTypeDonationMade).
		With("donation", bech(addr)).
		With("donor", bech(donation.Donor)).
		With("dog", bech(donation.DogID)).
		With("name", dog.Name).
		WithUint("amount", donation.Amount).
		With("timestamp", strconv.FormatInt(donation.Timestamp, 10)).
		WithUint("totalDonations", dog.TotalDonations)
}

// FundsWithdrawnEvent reports a treasury withdrawal.
func FundsWithdrawnEvent(treasury, recipient [20]byte, amount uint64) *types.Event {
	return types.NewEvent(EventTypeFundsWithdrawn).
		With("treasury", bech(treasury)).
		With("recipient", bech(recipient)).
		WithUint("amount", amount)
}
