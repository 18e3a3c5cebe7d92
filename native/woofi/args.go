package woofi

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// InitializePlatformArgs are the arguments of InitializePlatform.
type InitializePlatformArgs struct {
	Treasury [20]byte
}

// AddDogArgs are the arguments of AddDog.
type AddDogArgs struct {
	Name         string
	Age          uint8
	ImageURL     string
	Story        string
	NeedsFood    bool
	NeedsToys    bool
	NeedsMedical bool
	NeedsShelter bool
	NeedsOther   string
}

// UpdateDogArgs are the arguments of UpdateDog.
type UpdateDogArgs struct {
	ImageURL     string
	Story        string
	NeedsFood    bool
	NeedsToys    bool
	NeedsMedical bool
	NeedsShelter bool
	NeedsOther   string
	Active       bool
}

// DonateArgs are the arguments of Donate.
type DonateArgs struct {
	Amount    uint64
	Message   string
	Timestamp int64
}

// WithdrawFundsArgs are the arguments of WithdrawFunds.
type WithdrawFundsArgs struct {
	Amount uint64
}

type donateWire struct {
	Amount    uint64
	Message   string
	Timestamp uint64
}

// EncodeArgs serialises operation arguments for a transaction payload.
func EncodeArgs(args interface{}) ([]byte, error) {
	switch v := args.(type) {
	case DonateArgs:
		return rlp.EncodeToBytes(&donateWire{Amount: v.Amount, Message: v.Message, Timestamp: uint64(v.Timestamp)})
	case *DonateArgs:
		return EncodeArgs(*v)
	case InitializePlatformArgs, *InitializePlatformArgs,
		AddDogArgs, *AddDogArgs,
		UpdateDogArgs, *UpdateDogArgs,
		WithdrawFundsArgs, *WithdrawFundsArgs:
		return rlp.EncodeToBytes(v)
	default:
		return nil, fmt.Errorf("woofi: unsupported argument type %T", args)
	}
}

func DecodeInitializePlatformArgs(data []byte) (InitializePlatformArgs, error) {
	var out InitializePlatformArgs
	if err := rlp.DecodeBytes(data, &out); err != nil {
		return out, fmt.Errorf("woofi: decode initialize platform args: %w", err)
	}
	return out, nil
}

func DecodeAddDogArgs(data []byte) (AddDogArgs, error) {
	var out AddDogArgs
	if err := rlp.DecodeBytes(data, &out); err != nil {
		return out, fmt.Errorf("woofi: decode add dog args: %w", err)
	}
	return out, nil
}

func DecodeUpdateDogArgs(data []byte) (UpdateDogArgs, error) {
	var out UpdateDogArgs
	if err := rlp.DecodeBytes(data, &out); err != nil {
		return out, fmt.Errorf("woofi: decode update dog args: %w", err)
	}
	return out, nil
}

func DecodeDonateArgs(data []byte) (DonateArgs, error) {
	var wire donateWire
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return DonateArgs{}, fmt.Errorf("woofi: decode donate args: %w", err)
	}
	return DonateArgs{Amount: wire.Amount, Message: wire.Message, Timestamp: int64(wire.Timestamp)}, nil
}

func DecodeWithdrawFundsArgs(data []byte) (WithdrawFundsArgs, error) {
	var out WithdrawFundsArgs
	if err := rlp.DecodeBytes(data, &out); err != nil {
		return out, fmt.Errorf("woofi: decode withdraw funds args: %w", err)
	}
	return out, nil
}
