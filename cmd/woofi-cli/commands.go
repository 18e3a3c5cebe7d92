package main

import (
	"flag"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"woofi/core/types"
	"woofi/crypto"
	"woofi/native/woofi"
	"woofi/rpc"
)

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) bool {
	if err := fs.Parse(args); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(fs.Output(), "Error: unexpected positional arguments")
		return false
	}
	return true
}

func requireFlag(stderr io.Writer, name, value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		fmt.Fprintf(stderr, "Error: --%s is required\n", name)
		return "", false
	}
	return trimmed, true
}

func parseAddressFlag(stderr io.Writer, name, value string) ([20]byte, bool) {
	trimmed, ok := requireFlag(stderr, name, value)
	if !ok {
		return [20]byte{}, false
	}
	addr, err := crypto.ParseAddress(trimmed)
	if err != nil {
		fmt.Fprintf(stderr, "Error: invalid --%s: %v\n", name, err)
		return [20]byte{}, false
	}
	return addr.Array(), true
}

type needsFlags struct {
	food, toys, medical, shelter bool
	other                        string
}

func (n *needsFlags) register(fs *flag.FlagSet) {
	fs.BoolVar(&n.food, "needs-food", false, "dog needs food")
	fs.BoolVar(&n.toys, "needs-toys", false, "dog needs toys")
	fs.BoolVar(&n.medical, "needs-medical", false, "dog needs medical care")
	fs.BoolVar(&n.shelter, "needs-shelter", false, "dog needs shelter")
	fs.StringVar(&n.other, "needs-other", "", "free-form needs")
}

func sendAndPrint(stdout, stderr io.Writer, key *crypto.PrivateKey, typ types.TxType, refs [][]byte, args interface{}) int {
	data, err := woofi.EncodeArgs(args)
	if err != nil {
		return printError(stderr, err)
	}
	receipt, err := submit(key, &types.Transaction{Type: typ, Accounts: refs, Data: data})
	if err != nil {
		return printError(stderr, err)
	}
	writeJSON(stdout, receipt)
	return 0
}

func runBalance(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Error: Please provide an address.")
		return 1
	}
	account, err := fetchAccount(strings.TrimSpace(args[0]))
	if err != nil {
		return printError(stderr, err)
	}
	writeJSON(stdout, account)
	return 0
}

func runTransfer(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("transfer", stderr)
	var keys keyFlags
	keys.register(fs)
	var to string
	var amount uint64
	fs.StringVar(&to, "to", "", "recipient address")
	fs.Uint64Var(&amount, "amount", 0, "amount of native balance to send")
	if !parseFlags(fs, args) {
		return 1
	}
	recipient, ok := parseAddressFlag(stderr, "to", to)
	if !ok {
		return 1
	}
	key, err := keys.load()
	if err != nil {
		return printError(stderr, err)
	}
	tx := &types.Transaction{
		Type:  types.TxTypeTransfer,
		To:    recipient[:],
		Value: new(big.Int).SetUint64(amount),
	}
	receipt, err := submit(key, tx)
	if err != nil {
		return printError(stderr, err)
	}
	writeJSON(stdout, receipt)
	return 0
}

func runInitPlatform(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("init-platform", stderr)
	var keys keyFlags
	keys.register(fs)
	var treasury string
	fs.StringVar(&treasury, "treasury", "", "identity that will receive donations")
	if !parseFlags(fs, args) {
		return 1
	}
	treasuryAddr, ok := parseAddressFlag(stderr, "treasury", treasury)
	if !ok {
		return 1
	}
	key, err := keys.load()
	if err != nil {
		return printError(stderr, err)
	}
	return sendAndPrint(stdout, stderr, key, types.TxTypeInitializePlatform,
		woofi.InitializePlatformRefs(), woofi.InitializePlatformArgs{Treasury: treasuryAddr})
}

func runAddDog(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("add-dog", stderr)
	var keys keyFlags
	keys.register(fs)
	var needs needsFlags
	needs.register(fs)
	var name, story, image string
	var age uint
	fs.StringVar(&name, "name", "", "dog name (at most 32 bytes)")
	fs.StringVar(&story, "story", "", "dog story")
	fs.StringVar(&image, "image", "", "image URL")
	fs.UintVar(&age, "age", 0, "age in years")
	if !parseFlags(fs, args) {
		return 1
	}
	if _, ok := requireFlag(stderr, "name", name); !ok {
		return 1
	}
	if age > 255 {
		fmt.Fprintln(stderr, "Error: --age must be at most 255")
		return 1
	}
	refs, err := woofi.AddDogRefs(name)
	if err != nil {
		return printError(stderr, err)
	}
	key, err := keys.load()
	if err != nil {
		return printError(stderr, err)
	}
	return sendAndPrint(stdout, stderr, key, types.TxTypeAddDog, refs, woofi.AddDogArgs{
		Name:         name,
		Age:          uint8(age),
		ImageURL:     image,
		Story:        story,
		NeedsFood:    needs.food,
		NeedsToys:    needs.toys,
		NeedsMedical: needs.medical,
		NeedsShelter: needs.shelter,
		NeedsOther:   needs.other,
	})
}

func runUpdateDog(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("update-dog", stderr)
	var keys keyFlags
	keys.register(fs)
	var needs needsFlags
	needs.register(fs)
	var name, story, image string
	var active bool
	fs.StringVar(&name, "name", "", "name of the dog to update")
	fs.StringVar(&story, "story", "", "replacement story")
	fs.StringVar(&image, "image", "", "replacement image URL")
	fs.BoolVar(&active, "active", true, "whether the dog accepts attention on listings")
	if !parseFlags(fs, args) {
		return 1
	}
	if _, ok := requireFlag(stderr, "name", name); !ok {
		return 1
	}
	dog, err := woofi.DogAddress(name)
	if err != nil {
		return printError(stderr, err)
	}
	key, err := keys.load()
	if err != nil {
		return printError(stderr, err)
	}
	return sendAndPrint(stdout, stderr, key, types.TxTypeUpdateDog, woofi.UpdateDogRefs(dog), woofi.UpdateDogArgs{
		ImageURL:     image,
		Story:        story,
		NeedsFood:    needs.food,
		NeedsToys:    needs.toys,
		NeedsMedical: needs.medical,
		NeedsShelter: needs.shelter,
		NeedsOther:   needs.other,
		Active:       active,
	})
}

func runDonate(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("donate", stderr)
	var keys keyFlags
	keys.register(fs)
	var dogName, message string
	var amount uint64
	var timestamp int64
	fs.StringVar(&dogName, "dog", "", "name of the dog receiving the donation")
	fs.Uint64Var(&amount, "amount", 0, "donation amount")
	fs.StringVar(&message, "message", "", "optional message")
	fs.Int64Var(&timestamp, "timestamp", 0, "donation timestamp (defaults to now, unix seconds)")
	if !parseFlags(fs, args) {
		return 1
	}
	if _, ok := requireFlag(stderr, "dog", dogName); !ok {
		return 1
	}
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}
	dog, err := woofi.DogAddress(dogName)
	if err != nil {
		return printError(stderr, err)
	}
	key, err := keys.load()
	if err != nil {
		return printError(stderr, err)
	}
	platform, err := fetchPlatform()
	if err != nil {
		return printError(stderr, err)
	}
	treasury, err := crypto.ParseAddress(platform.Treasury)
	if err != nil {
		return printError(stderr, err)
	}
	refs, err := woofi.DonateRefs(key.PubKey().Address().Array(), dog, treasury.Array(), timestamp)
	if err != nil {
		return printError(stderr, err)
	}
	return sendAndPrint(stdout, stderr, key, types.TxTypeDonate, refs,
		woofi.DonateArgs{Amount: amount, Message: message, Timestamp: timestamp})
}

func runWithdraw(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("withdraw", stderr)
	var keys keyFlags
	keys.register(fs)
	var recipient string
	var amount uint64
	fs.StringVar(&recipient, "recipient", "", "identity receiving the funds")
	fs.Uint64Var(&amount, "amount", 0, "amount to withdraw from the treasury")
	if !parseFlags(fs, args) {
		return 1
	}
	recipientAddr, ok := parseAddressFlag(stderr, "recipient", recipient)
	if !ok {
		return 1
	}
	key, err := keys.load()
	if err != nil {
		return printError(stderr, err)
	}
	platform, err := fetchPlatform()
	if err != nil {
		return printError(stderr, err)
	}
	treasury, err := crypto.ParseAddress(platform.Treasury)
	if err != nil {
		return printError(stderr, err)
	}
	return sendAndPrint(stdout, stderr, key, types.TxTypeWithdrawFunds,
		woofi.WithdrawFundsRefs(treasury.Array(), recipientAddr), woofi.WithdrawFundsArgs{Amount: amount})
}

func runPlatform(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("platform", stderr)
	if !parseFlags(fs, args) {
		return 1
	}
	platform, err := fetchPlatform()
	if err != nil {
		return printError(stderr, err)
	}
	writeJSON(stdout, platform)
	return 0
}

func runDog(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("dog", stderr)
	var query rpc.DogQuery
	fs.StringVar(&query.Name, "name", "", "dog name")
	fs.StringVar(&query.Address, "address", "", "dog record address")
	if !parseFlags(fs, args) {
		return 1
	}
	if strings.TrimSpace(query.Name) == "" && strings.TrimSpace(query.Address) == "" {
		fmt.Fprintln(stderr, "Error: --name or --address is required")
		return 1
	}
	var dog rpc.DogResult
	if err := rpcCall("woofi_getDog", []interface{}{query}, &dog); err != nil {
		return printError(stderr, err)
	}
	writeJSON(stdout, dog)
	return 0
}

func runDonation(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("donation", stderr)
	var query rpc.DonationQuery
	var timestamp int64
	fs.StringVar(&query.Address, "address", "", "donation record address")
	fs.StringVar(&query.Donor, "donor", "", "donor address")
	fs.Int64Var(&timestamp, "timestamp", 0, "donation timestamp")
	if !parseFlags(fs, args) {
		return 1
	}
	if flagWasSet(fs, "timestamp") {
		query.Timestamp = &timestamp
	}
	byAddress := strings.TrimSpace(query.Address) != ""
	bySeeds := strings.TrimSpace(query.Donor) != "" && query.Timestamp != nil
	if !byAddress && !bySeeds {
		fmt.Fprintln(stderr, "Error: --address or both --donor and --timestamp are required")
		return 1
	}
	var donation rpc.DonationResult
	if err := rpcCall("woofi_getDonation", []interface{}{query}, &donation); err != nil {
		return printError(stderr, err)
	}
	writeJSON(stdout, donation)
	return 0
}

func runAddresses(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("addresses", stderr)
	var query rpc.DeriveQuery
	var timestamp int64
	fs.StringVar(&query.DogName, "dog", "", "dog name")
	fs.StringVar(&query.Donor, "donor", "", "donor address")
	fs.Int64Var(&timestamp, "timestamp", 0, "donation timestamp")
	if !parseFlags(fs, args) {
		return 1
	}
	if flagWasSet(fs, "timestamp") {
		query.Timestamp = &timestamp
	}
	var result rpc.AddressesResult
	if err := rpcCall("woofi_deriveAddresses", []interface{}{query}, &result); err != nil {
		return printError(stderr, err)
	}
	writeJSON(stdout, result)
	return 0
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
