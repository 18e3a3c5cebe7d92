package types

import "strconv"

// Event is a committed state change. Attribute values are strings so events
// serialise the same way in receipts, logs and JSON-RPC responses.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// NewEvent starts an event of the given type with no attributes.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Attributes: make(map[string]string)}
}

// With sets one attribute and returns the event for chaining.
func (e *Event) With(key, value string) *Event {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithUint sets a base-10 unsigned attribute.
func (e *Event) WithUint(key string, value uint64) *Event {
	return e.With(key, strconv.FormatUint(value, 10))
}

// Uint parses a base-10 unsigned attribute.
func (e *Event) Uint(key string) (uint64, bool) {
	if e == nil {
		return 0, false
	}
	raw, ok := e.Attributes[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	return v, err == nil
}
