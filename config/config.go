package config

import (
	"os"
	"path/filepath"
	"strings"

	"woofi/crypto"

	"github.com/BurntSushi/toml"
)

const (
	DefaultChainID     uint64 = 4242
	DefaultNetworkName        = "woofi-local"
	// DefaultOperatorFunding is credited to the operator key of a freshly
	// generated configuration so a local node is usable immediately.
	DefaultOperatorFunding = "1000000000"
)

type Config struct {
	RPCAddress           string        `toml:"RPCAddress"`
	MetricsAddress       string        `toml:"MetricsAddress"`
	DataDir              string        `toml:"DataDir"`
	NetworkName          string        `toml:"NetworkName"`
	ChainID              uint64        `toml:"ChainID"`
	LogFile              string        `toml:"LogFile"`
	LogEnv               string        `toml:"LogEnv"`
	OperatorKeystorePath string        `toml:"OperatorKeystorePath"`
	PausedModules        []string      `toml:"PausedModules"`
	RPC                  RPCConfig     `toml:"rpc"`
	Genesis              GenesisConfig `toml:"genesis"`
}

// RPCConfig controls the JSON-RPC listener.
type RPCConfig struct {
	AuthToken          string `toml:"AuthToken"`
	TxPerMinute        int    `toml:"TxPerMinute"`
	Burst              int    `toml:"Burst"`
	ReadHeaderTimeout  int    `toml:"ReadHeaderTimeout"`
	MaxRequestBodySize int64  `toml:"MaxRequestBodySize"`
}

// GenesisConfig lists the native balances credited when the data directory
// is empty.
type GenesisConfig struct {
	Alloc []GenesisAlloc `toml:"alloc"`
}

// GenesisAlloc is one genesis balance. Address accepts bech32 or 0x hex and
// Balance is a base-10 integer.
type GenesisAlloc struct {
	Address string `toml:"Address"`
	Balance string `toml:"Balance"`
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := ensureKeystore(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = DefaultNetworkName
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = DefaultChainID
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./woofi-data"
	}
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if cfg.RPC.TxPerMinute == 0 {
		cfg.RPC.TxPerMinute = 120
	}
	if cfg.RPC.Burst == 0 {
		cfg.RPC.Burst = 20
	}
	if cfg.RPC.ReadHeaderTimeout == 0 {
		cfg.RPC.ReadHeaderTimeout = 5
	}
	if cfg.RPC.MaxRequestBodySize == 0 {
		cfg.RPC.MaxRequestBodySize = 1 << 20
	}
	if cfg.PausedModules == nil {
		cfg.PausedModules = []string{}
	}
}

func ensureKeystore(configPath string, cfg *Config) error {
	keystorePath := cfg.OperatorKeystorePath
	if keystorePath == "" {
		keystorePath = defaultKeystorePath(configPath)
	}

	if _, err := os.Stat(keystorePath); os.IsNotExist(err) {
		key, genErr := crypto.GeneratePrivateKey()
		if genErr != nil {
			return genErr
		}
		if err := crypto.SaveToKeystore(keystorePath, key, ""); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if cfg.OperatorKeystorePath != keystorePath {
		cfg.OperatorKeystorePath = keystorePath
		return persist(configPath, cfg)
	}

	return nil
}

// createDefault creates and saves a default configuration file. The new
// operator key is funded in the genesis allocation.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	keystorePath := defaultKeystorePath(path)
	if err := crypto.SaveToKeystore(keystorePath, key, ""); err != nil {
		return nil, err
	}

	cfg := &Config{
		RPCAddress:     ":8080",
		MetricsAddress: ":9090",
		DataDir:        "./woofi-data",
		NetworkName:    DefaultNetworkName,
		ChainID:        DefaultChainID,
		LogEnv:         "local",
		PausedModules:  []string{},
		Genesis: GenesisConfig{Alloc: []GenesisAlloc{{
			Address: key.PubKey().Address().String(),
			Balance: DefaultOperatorFunding,
		}}},
	}
	cfg.OperatorKeystorePath = keystorePath
	applyDefaults(cfg)

	if err := persist(path, cfg); err != nil {
		return nil, err
	}

	ApplyEnv(cfg)
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func defaultKeystorePath(configPath string) string {
	dir := filepath.Dir(configPath)
	if dir == "." || dir == "" {
		dir = ""
	}
	return filepath.Join(dir, "operator.keystore")
}
