package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"woofi/core/types"
	"woofi/crypto"
	"woofi/rpc"
)

var rpcCall = callRPC

func callRPC(method string, params []interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return rpc.NewClient(rpcEndpoint, rpcAuthToken).Call(ctx, method, params, out)
}

func fetchAccount(addr string) (*rpc.BalanceResponse, error) {
	var account rpc.BalanceResponse
	if err := rpcCall("woofi_getBalance", []interface{}{addr}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func fetchChainID() (*big.Int, error) {
	var raw string
	if err := rpcCall("woofi_chainId", nil, &raw); err != nil {
		return nil, err
	}
	id, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, fmt.Errorf("invalid chain id %q", raw)
	}
	return id, nil
}

func fetchPlatform() (*rpc.PlatformResult, error) {
	var platform rpc.PlatformResult
	if err := rpcCall("woofi_getPlatform", nil, &platform); err != nil {
		return nil, err
	}
	return &platform, nil
}

// submit fills in chain id and nonce, signs tx and sends it.
func submit(key *crypto.PrivateKey, tx *types.Transaction) (*types.Receipt, error) {
	chainID, err := fetchChainID()
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}
	account, err := fetchAccount(key.PubKey().Address().String())
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	tx.ChainID = chainID
	tx.Nonce = account.Nonce
	if err := tx.Sign(key.PrivateKey); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	var receipt types.Receipt
	if err := rpcCall("woofi_sendTransaction", []interface{}{tx}, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printError(w io.Writer, err error) int {
	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) {
		fmt.Fprintf(w, "RPC error %d: %s\n", rpcErr.Code, rpcErr.Message)
		if rpcErr.Data != nil {
			writeJSON(w, rpcErr.Data)
		}
		return 1
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
