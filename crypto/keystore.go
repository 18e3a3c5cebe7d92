package crypto

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// ErrKeystoreMismatch is returned when a keystore decrypts to a key whose
// identity differs from the address recorded in the file.
var ErrKeystoreMismatch = errors.New("crypto: keystore address does not match its key")

// SaveToKeystore writes key as an Ethereum v3 keystore at path using the
// standard scrypt parameters. Missing parent directories are created 0700.
func SaveToKeystore(path string, key *PrivateKey, passphrase string) error {
	return saveToKeystore(path, key, passphrase, keystore.StandardScryptN, keystore.StandardScryptP)
}

// SaveToKeystoreLight is SaveToKeystore with the cheap scrypt parameters used
// for throwaway development keys and tests.
func SaveToKeystoreLight(path string, key *PrivateKey, passphrase string) error {
	return saveToKeystore(path, key, passphrase, keystore.LightScryptN, keystore.LightScryptP)
}

func saveToKeystore(path string, key *PrivateKey, passphrase string, scryptN, scryptP int) error {
	if key == nil || key.PrivateKey == nil {
		return errors.New("crypto: nil private key")
	}
	if path == "" {
		return errors.New("crypto: empty keystore path")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	keyJSON, err := keystore.EncryptKey(&keystore.Key{
		Id:         id,
		Address:    ethcrypto.PubkeyToAddress(key.PrivateKey.PublicKey),
		PrivateKey: key.PrivateKey,
	}, passphrase, scryptN, scryptP)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".keystore-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(keyJSON); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

type keystoreHeader struct {
	Address string `json:"address"`
}

// KeystoreAddress returns the identity recorded in a keystore file without
// decrypting it.
func KeystoreAddress(path string) (Address, error) {
	keyJSON, err := readKeystore(path)
	if err != nil {
		return Address{}, err
	}
	return keystoreHeaderAddress(keyJSON)
}

func keystoreHeaderAddress(keyJSON []byte) (Address, error) {
	var header keystoreHeader
	if err := json.Unmarshal(keyJSON, &header); err != nil {
		return Address{}, fmt.Errorf("crypto: decode keystore: %w", err)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(header.Address), "0x"))
	if err != nil {
		return Address{}, fmt.Errorf("crypto: keystore address: %w", err)
	}
	return AddressFromBytes(WoofPrefix, raw)
}

// LoadFromKeystore decrypts the keystore at path and checks the key against
// the recorded address.
func LoadFromKeystore(path, passphrase string) (*PrivateKey, error) {
	keyJSON, err := readKeystore(path)
	if err != nil {
		return nil, err
	}
	decrypted, err := keystore.DecryptKey(keyJSON, passphrase)
	if err != nil {
		return nil, err
	}
	key := &PrivateKey{PrivateKey: decrypted.PrivateKey}
	recorded, err := keystoreHeaderAddress(keyJSON)
	if err != nil {
		return nil, err
	}
	if recorded.Array() != key.PubKey().Address().Array() {
		return nil, ErrKeystoreMismatch
	}
	return key, nil
}

func readKeystore(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("crypto: empty keystore path")
	}
	return os.ReadFile(path)
}
