package types

// Receipt statuses.
const (
	ReceiptStatusFailed  uint8 = 0
	ReceiptStatusSuccess uint8 = 1
)

// Receipt reports the outcome of applying a transaction. Failed transactions
// leave state untouched, so StateRoot is the unchanged committed root.
type Receipt struct {
	TxHash    string   `json:"txHash"`
	Type      string   `json:"type"`
	Signer    string   `json:"signer"`
	Status    uint8    `json:"status"`
	Code      uint32   `json:"code,omitempty"`
	Error     string   `json:"error,omitempty"`
	Events    []*Event `json:"events,omitempty"`
	StateRoot string   `json:"stateRoot"`
}
