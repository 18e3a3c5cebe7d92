package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"woofi/cmd/internal/passphrase"
	"woofi/crypto"
)

const keystorePassEnv = "WOOFI_KEYSTORE_PASS"

var keystorePassphrase = passphrase.NewSource(keystorePassEnv, "woofi keystore").Get

type keyFlags struct {
	keyFile  string
	keystore string
}

func (k *keyFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&k.keyFile, "key", "", "file holding a hex-encoded private key")
	fs.StringVar(&k.keystore, "keystore", "", "encrypted keystore file (passphrase from "+keystorePassEnv+" or prompt)")
}

func (k *keyFlags) load() (*crypto.PrivateKey, error) {
	keyFile := strings.TrimSpace(k.keyFile)
	keystorePath := strings.TrimSpace(k.keystore)
	switch {
	case keyFile != "" && keystorePath != "":
		return nil, errors.New("--key and --keystore are mutually exclusive")
	case keystorePath != "":
		pass, err := keystorePassphrase()
		if err != nil {
			return nil, err
		}
		return crypto.LoadFromKeystore(keystorePath, pass)
	case keyFile != "":
		return loadKeyFile(keyFile)
	default:
		return nil, errors.New("--key or --keystore is required")
	}
}

func loadKeyFile(path string) (*crypto.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x")
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("key file %s is not hex: %w", path, err)
	}
	return crypto.PrivateKeyFromBytes(decoded)
}

func runGenerateKey(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("generate-key", stderr)
	var out, keystorePath string
	var light bool
	fs.StringVar(&out, "out", "", "write the hex-encoded key to this file")
	fs.StringVar(&keystorePath, "keystore", "", "write an encrypted keystore to this file")
	fs.BoolVar(&light, "light", false, "use light scrypt parameters for the keystore")
	if !parseFlags(fs, args) {
		return 1
	}
	out, keystorePath = strings.TrimSpace(out), strings.TrimSpace(keystorePath)
	if (out == "") == (keystorePath == "") {
		fmt.Fprintln(stderr, "Error: exactly one of --out or --keystore is required")
		return 1
	}

	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return printError(stderr, err)
	}
	if keystorePath != "" {
		pass, err := keystorePassphrase()
		if err != nil {
			return printError(stderr, err)
		}
		save := crypto.SaveToKeystore
		if light {
			save = crypto.SaveToKeystoreLight
		}
		if err := save(keystorePath, key, pass); err != nil {
			return printError(stderr, err)
		}
	} else {
		if err := os.WriteFile(out, []byte(hex.EncodeToString(key.Bytes())+"\n"), 0o600); err != nil {
			return printError(stderr, err)
		}
	}
	fmt.Fprintln(stdout, key.PubKey().Address().String())
	return 0
}
