package types

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// TxType defines the purpose of a transaction.
type TxType byte

const (
	TxTypeTransfer           TxType = 0x01 // Native balance transfer through the system program
	TxTypeInitializePlatform TxType = 0x10
	TxTypeAddDog             TxType = 0x11
	TxTypeUpdateDog          TxType = 0x12
	TxTypeDonate             TxType = 0x13
	TxTypeWithdrawFunds      TxType = 0x14
)

var (
	ErrMissingSignature = errors.New("types: transaction is not signed")
	ErrInvalidSignature = errors.New("types: invalid transaction signature")
)

// String returns the operation name used in logs and metrics.
func (t TxType) String() string {
	switch t {
	case TxTypeTransfer:
		return "transfer"
	case TxTypeInitializePlatform:
		return "initialize_platform"
	case TxTypeAddDog:
		return "add_dog"
	case TxTypeUpdateDog:
		return "update_dog"
	case TxTypeDonate:
		return "donate"
	case TxTypeWithdrawFunds:
		return "withdraw_funds"
	default:
		return "unknown"
	}
}

// Transaction carries one operation, the record references it touches and the
// rlp-encoded operation arguments. The signer is recovered from R, S, V.
type Transaction struct {
	ChainID  *big.Int `json:"chainId"`
	Type     TxType   `json:"type"`
	Nonce    uint64   `json:"nonce"`
	Accounts [][]byte `json:"accounts,omitempty"`
	Data     []byte   `json:"data,omitempty"`
	To       []byte   `json:"to,omitempty"`
	Value    *big.Int `json:"value,omitempty"`

	R *big.Int `json:"r"`
	S *big.Int `json:"s"`
	V *big.Int `json:"v"`

	from []byte
}

type txSigningPayload struct {
	ChainID  *big.Int
	Type     TxType
	Nonce    uint64
	Accounts [][]byte
	Data     []byte
	To       []byte
	Value    *big.Int
}

// Hash returns the keccak256 digest of the rlp-encoded unsigned transaction.
func (tx *Transaction) Hash() ([]byte, error) {
	payload := txSigningPayload{
		ChainID:  tx.ChainID,
		Type:     tx.Type,
		Nonce:    tx.Nonce,
		Accounts: tx.Accounts,
		Data:     tx.Data,
		To:       tx.To,
		Value:    tx.Value,
	}
	if payload.Accounts == nil {
		payload.Accounts = [][]byte{}
	}
	b, err := rlp.EncodeToBytes(&payload)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(b), nil
}

func (tx *Transaction) Sign(privKey *ecdsa.PrivateKey) error {
	hash, err := tx.Hash()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(hash, privKey)
	if err != nil {
		return err
	}
	tx.R = new(big.Int).SetBytes(sig[:32])
	tx.S = new(big.Int).SetBytes(sig[32:64])
	tx.V = new(big.Int).SetBytes([]byte{sig[64] + 27})
	tx.from = nil
	return nil
}

// From recovers the signer identity. The host treats the recovered identity as
// the only co-signer of the operation.
func (tx *Transaction) From() ([]byte, error) {
	if tx.from != nil {
		return tx.from, nil
	}
	if tx.R == nil || tx.S == nil || tx.V == nil {
		return nil, ErrMissingSignature
	}
	if len(tx.R.Bytes()) > 32 || len(tx.S.Bytes()) > 32 || tx.V.Uint64() < 27 || tx.V.Uint64() > 28 {
		return nil, ErrInvalidSignature
	}
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	sig := make([]byte, 65)
	copy(sig[32-len(tx.R.Bytes()):32], tx.R.Bytes())
	copy(sig[64-len(tx.S.Bytes()):64], tx.S.Bytes())
	sig[64] = byte(tx.V.Uint64() - 27)
	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	tx.from = crypto.PubkeyToAddress(*pubKey).Bytes()
	return tx.from, nil
}
