package events

import (
	"woofi/core/types"
	"woofi/crypto"
)

const (
	// TypeTransfer is emitted for native balance movements made through the
	// system program.
	TypeTransfer = "system.transfer"
)

// Transfer is a native balance movement between two identities.
type Transfer struct {
	From   [20]byte
	To     [20]byte
	Amount uint64
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	return types.NewEvent(TypeTransfer).
		With("from", crypto.AddressFromArray(e.From).String()).
		With("to", crypto.AddressFromArray(e.To).String()).
		WithUint("amount", e.Amount)
}
