package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"woofi/core/types"
)

var (
	// ErrInsufficientBalance is the native transfer primitive's failure. It is
	// a host error, distinct from any ledger domain error.
	ErrInsufficientBalance = errors.New("state: insufficient balance for transfer")
	// ErrBalanceOverflow marks a credit that would not fit the balance width.
	ErrBalanceOverflow = errors.New("state: balance overflow")
)

var accountPrefix = []byte("account:")

func accountStateKey(addr []byte) []byte {
	buf := make([]byte, 0, len(accountPrefix)+len(addr))
	buf = append(buf, accountPrefix...)
	return append(buf, addr...)
}

// GetAccount returns the account stored under addr, or a zero-balance account
// when none exists yet.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	if len(addr) == 0 {
		return nil, fmt.Errorf("address must not be empty")
	}
	stateAcc, err := m.loadStateAccount(addr)
	if err != nil {
		return nil, err
	}
	account := types.NewAccount()
	if stateAcc != nil {
		if stateAcc.Balance != nil {
			account.Balance = stateAcc.Balance.ToBig()
		}
		account.Nonce = stateAcc.Nonce
	}
	return account, nil
}

// PutAccount persists the provided account state under the supplied address.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if len(addr) == 0 {
		return fmt.Errorf("address must not be empty")
	}
	if account == nil {
		return fmt.Errorf("nil account")
	}
	source := account.Balance
	if source == nil {
		source = big.NewInt(0)
	}
	if source.Sign() < 0 {
		return fmt.Errorf("negative balance")
	}
	balance, overflow := uint256.FromBig(source)
	if overflow {
		return ErrBalanceOverflow
	}
	stateAcc := &gethtypes.StateAccount{
		Nonce:    account.Nonce,
		Balance:  balance,
		Root:     gethtypes.EmptyRootHash,
		CodeHash: gethtypes.EmptyCodeHash.Bytes(),
	}
	return m.writeStateAccount(addr, stateAcc)
}

// Transfer is the host's native value-transfer primitive. It moves amount from
// one identity to another and fails without side effects when the sender
// cannot cover it.
func (m *Manager) Transfer(from, to []byte, amount uint64) error {
	if amount == 0 {
		return nil
	}
	value := new(big.Int).SetUint64(amount)
	sender, err := m.GetAccount(from)
	if err != nil {
		return err
	}
	if sender.Balance.Cmp(value) < 0 {
		return ErrInsufficientBalance
	}
	sender.Balance = new(big.Int).Sub(sender.Balance, value)
	if err := m.PutAccount(from, sender); err != nil {
		return err
	}
	recipient, err := m.GetAccount(to)
	if err != nil {
		return err
	}
	recipient.Balance = new(big.Int).Add(recipient.Balance, value)
	return m.PutAccount(to, recipient)
}

// IncrementNonce bumps the replay-protection counter of the signer.
func (m *Manager) IncrementNonce(addr []byte) error {
	account, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	account.Nonce++
	return m.PutAccount(addr, account)
}

func (m *Manager) loadStateAccount(addr []byte) (*gethtypes.StateAccount, error) {
	data, err := m.trie.Get(accountStateKey(addr))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	stateAcc := new(gethtypes.StateAccount)
	if err := rlp.DecodeBytes(data, stateAcc); err != nil {
		return nil, err
	}
	if stateAcc.Root == (common.Hash{}) {
		stateAcc.Root = gethtypes.EmptyRootHash
	}
	return stateAcc, nil
}

func (m *Manager) writeStateAccount(addr []byte, stateAcc *gethtypes.StateAccount) error {
	encoded, err := rlp.EncodeToBytes(stateAcc)
	if err != nil {
		return err
	}
	return m.trie.Update(accountStateKey(addr), encoded)
}
