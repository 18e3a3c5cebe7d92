package core

import (
	"errors"
	"fmt"

	"woofi/core/events"
	"woofi/core/state"
	"woofi/core/types"
	"woofi/native/woofi"
)

var errInvalidTransfer = errors.New("core: transfer requires a 20 byte recipient and a uint64 value")

// dispatch decodes the operation carried by tx, resolves its record
// references and runs it against manager. Events go to emitter.
func dispatch(manager *state.Manager, emitter events.Emitter, signer [20]byte, tx *types.Transaction) error {
	if tx.Type == types.TxTypeTransfer {
		return applyTransfer(manager, emitter, signer, tx)
	}

	engine := woofi.NewEngine()
	engine.SetState(manager)
	engine.SetEmitter(emitter)

	switch tx.Type {
	case types.TxTypeInitializePlatform:
		args, err := woofi.DecodeInitializePlatformArgs(tx.Data)
		if err != nil {
			return err
		}
		accts, err := woofi.ResolveInitializePlatform(signer, tx.Accounts)
		if err != nil {
			return err
		}
		_, err = engine.InitializePlatform(accts, args)
		return err
	case types.TxTypeAddDog:
		args, err := woofi.DecodeAddDogArgs(tx.Data)
		if err != nil {
			return err
		}
		accts, err := woofi.ResolveAddDog(signer, tx.Accounts, args)
		if err != nil {
			return err
		}
		_, err = engine.AddDog(accts, args)
		return err
	case types.TxTypeUpdateDog:
		args, err := woofi.DecodeUpdateDogArgs(tx.Data)
		if err != nil {
			return err
		}
		accts, err := woofi.ResolveUpdateDog(signer, tx.Accounts)
		if err != nil {
			return err
		}
		_, err = engine.UpdateDog(accts, args)
		return err
	case types.TxTypeDonate:
		args, err := woofi.DecodeDonateArgs(tx.Data)
		if err != nil {
			return err
		}
		accts, err := woofi.ResolveDonate(signer, tx.Accounts, args)
		if err != nil {
			return err
		}
		_, err = engine.Donate(accts, args)
		return err
	case types.TxTypeWithdrawFunds:
		args, err := woofi.DecodeWithdrawFundsArgs(tx.Data)
		if err != nil {
			return err
		}
		accts, err := woofi.ResolveWithdrawFunds(signer, tx.Accounts)
		if err != nil {
			return err
		}
		return engine.WithdrawFunds(accts, args)
	default:
		return fmt.Errorf("%w: %#x", ErrUnknownTxType, byte(tx.Type))
	}
}

func applyTransfer(manager *state.Manager, emitter events.Emitter, signer [20]byte, tx *types.Transaction) error {
	if len(tx.To) != 20 || tx.Value == nil || tx.Value.Sign() < 0 || !tx.Value.IsUint64() {
		return errInvalidTransfer
	}
	var to [20]byte
	copy(to[:], tx.To)
	amount := tx.Value.Uint64()
	if err := manager.Transfer(signer[:], to[:], amount); err != nil {
		return err
	}
	emitter.Emit(events.Transfer{From: signer, To: to, Amount: amount})
	return nil
}
