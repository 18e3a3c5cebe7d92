package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"woofi/config"
)

var rpcEndpoint = defaultRPCEndpoint() // Defaults to localhost, can be overridden via RPC_URL or --rpc flag
var rpcAuthToken = os.Getenv(config.EnvRPCAuthToken)

func main() {
	_ = godotenv.Load()
	rpcEndpoint = defaultRPCEndpoint()
	rpcAuthToken = os.Getenv(config.EnvRPCAuthToken)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	args, err := applyGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(args) < 1 {
		fmt.Fprintln(stderr, usage())
		return 1
	}

	rest := args[1:]
	switch args[0] {
	case "generate-key":
		return runGenerateKey(rest, stdout, stderr)
	case "balance":
		return runBalance(rest, stdout, stderr)
	case "transfer":
		return runTransfer(rest, stdout, stderr)
	case "init-platform":
		return runInitPlatform(rest, stdout, stderr)
	case "add-dog":
		return runAddDog(rest, stdout, stderr)
	case "update-dog":
		return runUpdateDog(rest, stdout, stderr)
	case "donate":
		return runDonate(rest, stdout, stderr)
	case "withdraw":
		return runWithdraw(rest, stdout, stderr)
	case "platform":
		return runPlatform(rest, stdout, stderr)
	case "dog":
		return runDog(rest, stdout, stderr)
	case "donation":
		return runDonation(rest, stdout, stderr)
	case "addresses":
		return runAddresses(rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage())
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		fmt.Fprintln(stderr, usage())
		return 1
	}
}

func defaultRPCEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("RPC_URL")); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func applyGlobalFlags(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--rpc":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --rpc")
			}
			rpcEndpoint = args[i+1]
			i++
		case strings.HasPrefix(arg, "--rpc="):
			rpcEndpoint = strings.TrimPrefix(arg, "--rpc=")
		case arg == "--token":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --token")
			}
			rpcAuthToken = args[i+1]
			i++
		case strings.HasPrefix(arg, "--token="):
			rpcAuthToken = strings.TrimPrefix(arg, "--token=")
		default:
			out = append(out, arg)
		}
	}
	return out, nil
}

func usage() string {
	return strings.TrimSpace(`Usage:
  woofi-cli [--rpc URL] [--token TOKEN] <command> [flags]

Keys:
  generate-key   --out FILE | --keystore FILE [--light]

Queries:
  balance        <address>
  platform
  dog            --name NAME | --address ADDR
  donation       --address ADDR | --donor ADDR --timestamp TS
  addresses      [--dog NAME] [--donor ADDR --timestamp TS]

Transactions (sign with --key FILE or --keystore FILE):
  transfer       --to ADDR --amount N
  init-platform  --treasury ADDR
  add-dog        --name NAME --story TEXT --image URL [--age N] [needs flags]
  update-dog     --name NAME --story TEXT --image URL [--active=false] [needs flags]
  donate         --dog NAME --amount N [--message TEXT] [--timestamp TS]
  withdraw       --amount N --recipient ADDR

Environment:
  RPC_URL, WOOFI_RPC_AUTH_TOKEN, WOOFI_KEYSTORE_PASS`)
}
