package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment overrides. Binaries load .env files before calling Load so the
// same names work there.
const (
	EnvRPCAuthToken = "WOOFI_RPC_AUTH_TOKEN"
	EnvRPCAddress   = "WOOFI_RPC_ADDRESS"
	EnvDataDir      = "WOOFI_DATA_DIR"
	EnvLogFile      = "WOOFI_LOG_FILE"
	EnvLogEnv       = "WOOFI_ENV"
	EnvTxPerMinute  = "WOOFI_RPC_TX_PER_MINUTE"
)

// ApplyEnv overlays WOOFI_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	if v, ok := lookup(EnvRPCAuthToken); ok {
		cfg.RPC.AuthToken = v
	}
	if v, ok := lookup(EnvRPCAddress); ok {
		cfg.RPCAddress = v
	}
	if v, ok := lookup(EnvDataDir); ok {
		cfg.DataDir = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		cfg.LogFile = v
	}
	if v, ok := lookup(EnvLogEnv); ok {
		cfg.LogEnv = v
	}
	if v, ok := lookup(EnvTxPerMinute); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RPC.TxPerMinute = n
		}
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
