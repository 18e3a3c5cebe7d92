package woofi

import (
	"errors"
	"fmt"
)

// Code is the numeric failure code reported to callers.
type Code uint32

// ErrorCodeOffset is the first custom ledger error code.
const ErrorCodeOffset Code = 6000

const (
	CodeUnauthorized Code = ErrorCodeOffset + iota
	CodeInvalidAmount
	CodeDogNotFound
	CodeInsufficientFunds
	CodeInvalidDogName
	CodeInvalidDogStory
	CodeInvalidImageURL
)

// Error is a ledger domain error: a stable code, a name and a message.
type Error struct {
	Code    Code
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("woofi: %s (%d): %s", e.Name, e.Code, e.Message)
}

var (
	ErrUnauthorized      = &Error{Code: CodeUnauthorized, Name: "Unauthorized", Message: "Only the admin can perform this action"}
	ErrInvalidAmount     = &Error{Code: CodeInvalidAmount, Name: "InvalidAmount", Message: "Donation amount must be positive"}
	ErrDogNotFound       = &Error{Code: CodeDogNotFound, Name: "DogNotFound", Message: "The referenced dog does not exist"}
	ErrInsufficientFunds = &Error{Code: CodeInsufficientFunds, Name: "InsufficientFunds", Message: "Insufficient funds for withdrawal"}
	ErrInvalidDogName    = &Error{Code: CodeInvalidDogName, Name: "InvalidDogName", Message: "Dog name cannot be empty"}
	ErrInvalidDogStory   = &Error{Code: CodeInvalidDogStory, Name: "InvalidDogStory", Message: "Dog story cannot be empty"}
	ErrInvalidImageURL   = &Error{Code: CodeInvalidImageURL, Name: "InvalidImageUrl", Message: "Image URL cannot be empty"}
)

var errNilState = errors.New("woofi engine: state not configured")

// AsError extracts the domain error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var domain *Error
	if errors.As(err, &domain) {
		return domain, true
	}
	return nil, false
}
