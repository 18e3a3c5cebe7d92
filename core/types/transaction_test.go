package types

import (
	"bytes"
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestTransactionSignAndRecover(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tx := &Transaction{
		ChainID:  big.NewInt(4242),
		Type:     TxTypeDonate,
		Nonce:    3,
		Accounts: [][]byte{bytes.Repeat([]byte{0x01}, 20)},
		Data:     []byte{0xc0},
	}
	if err := tx.Sign(key); err != nil {
		t.Fatalf("sign: %v", err)
	}
	from, err := tx.From()
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	expected := ethcrypto.PubkeyToAddress(key.PublicKey).Bytes()
	if !bytes.Equal(from, expected) {
		t.Fatalf("expected signer %x, got %x", expected, from)
	}
}

func TestTransactionTamperChangesSigner(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tx := &Transaction{ChainID: big.NewInt(1), Type: TxTypeWithdrawFunds, Nonce: 0, Data: []byte{0x01}}
	if err := tx.Sign(key); err != nil {
		t.Fatalf("sign: %v", err)
	}
	original, err := tx.From()
	if err != nil {
		t.Fatalf("recover: %v", err)
	}

	tampered := &Transaction{ChainID: tx.ChainID, Type: tx.Type, Nonce: tx.Nonce, Data: []byte{0x02}, R: tx.R, S: tx.S, V: tx.V}
	recovered, err := tampered.From()
	if err == nil && bytes.Equal(recovered, original) {
		t.Fatalf("tampered payload must not recover the original signer")
	}
}

func TestTransactionFromRequiresSignature(t *testing.T) {
	tx := &Transaction{ChainID: big.NewInt(1), Type: TxTypeTransfer}
	if _, err := tx.From(); err != ErrMissingSignature {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}
	tx.R, tx.S, tx.V = big.NewInt(1), big.NewInt(1), big.NewInt(5)
	if _, err := tx.From(); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestTxTypeString(t *testing.T) {
	cases := map[TxType]string{
		TxTypeTransfer:           "transfer",
		TxTypeInitializePlatform: "initialize_platform",
		TxTypeAddDog:             "add_dog",
		TxTypeUpdateDog:          "update_dog",
		TxTypeDonate:             "donate",
		TxTypeWithdrawFunds:      "withdraw_funds",
		TxType(0xff):             "unknown",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("type %#x: expected %q, got %q", byte(typ), want, got)
		}
	}
}
