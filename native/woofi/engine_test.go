package woofi

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"

	"woofi/core/events"
	"woofi/core/types"
	"woofi/native/program"
)

var errMockInsufficient = errors.New("mock: insufficient balance")

type mockState struct {
	kv       map[string][]byte
	accounts map[[20]byte]*big.Int
	writes   int
}

func newMockState() *mockState {
	return &mockState{
		kv:       make(map[string][]byte),
		accounts: make(map[[20]byte]*big.Int),
	}
}

func (m *mockState) KVGet(key []byte, out interface{}) (bool, error) {
	data, ok := m.kv[string(key)]
	if !ok {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	return true, rlp.DecodeBytes(data, out)
}

func (m *mockState) KVPut(key []byte, value interface{}) error {
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.kv[string(key)] = data
	m.writes++
	return nil
}

func toArray(b []byte) [20]byte {
	var out [20]byte
	copy(out[:], b)
	return out
}

func (m *mockState) GetAccount(addr []byte) (*types.Account, error) {
	acc := types.NewAccount()
	if bal, ok := m.accounts[toArray(addr)]; ok {
		acc.Balance = new(big.Int).Set(bal)
	}
	return acc, nil
}

func (m *mockState) PutAccount(addr []byte, account *types.Account) error {
	m.accounts[toArray(addr)] = new(big.Int).Set(account.Balance)
	m.writes++
	return nil
}

func (m *mockState) Transfer(from, to []byte, amount uint64) error {
	value := new(big.Int).SetUint64(amount)
	sender, _ := m.GetAccount(from)
	if sender.Balance.Cmp(value) < 0 {
		return errMockInsufficient
	}
	m.accounts[toArray(from)] = new(big.Int).Sub(sender.Balance, value)
	recipient, _ := m.GetAccount(to)
	m.accounts[toArray(to)] = new(big.Int).Add(recipient.Balance, value)
	m.writes++
	return nil
}

func (m *mockState) balance(addr [20]byte) uint64 {
	if bal, ok := m.accounts[addr]; ok {
		return bal.Uint64()
	}
	return 0
}

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

type harness struct {
	t        *testing.T
	engine   *Engine
	state    *mockState
	events   *events.Buffer
	admin    [20]byte
	treasury [20]byte
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		engine:   NewEngine(),
		state:    newMockState(),
		events:   &events.Buffer{},
		admin:    addr(0xA0),
		treasury: addr(0x7E),
	}
	h.engine.SetState(h.state)
	h.engine.SetEmitter(h.events)
	if _, err := h.engine.InitializePlatform(
		InitializePlatformAccounts{Admin: h.admin, Platform: PlatformAddress()},
		InitializePlatformArgs{Treasury: h.treasury},
	); err != nil {
		t.Fatalf("initialize platform: %v", err)
	}
	return h
}

func rexArgs() AddDogArgs {
	return AddDogArgs{Name: "Rex", Age: 3, Story: "rescued", ImageURL: "http://x", NeedsFood: true}
}

func (h *harness) addDog(args AddDogArgs) ([20]byte, *Dog) {
	h.t.Helper()
	dogAddr, err := DogAddress(args.Name)
	if err != nil {
		h.t.Fatalf("dog address: %v", err)
	}
	dog, err := h.engine.AddDog(AddDogAccounts{Admin: h.admin, Platform: PlatformAddress(), Dog: dogAddr}, args)
	if err != nil {
		h.t.Fatalf("add dog: %v", err)
	}
	return dogAddr, dog
}

func (h *harness) donateAccounts(donor, dog [20]byte, ts int64) DonateAccounts {
	h.t.Helper()
	donation, err := DonationAddress(donor, ts)
	if err != nil {
		h.t.Fatalf("donation address: %v", err)
	}
	return DonateAccounts{Donor: donor, Platform: PlatformAddress(), Dog: dog, Donation: donation, Treasury: h.treasury}
}

func (h *harness) platform() *Platform {
	h.t.Helper()
	p, err := h.engine.Platform()
	if err != nil {
		h.t.Fatalf("load platform: %v", err)
	}
	return p
}

func (h *harness) snapshot() map[string]string {
	out := make(map[string]string, len(h.state.kv))
	for k, v := range h.state.kv {
		out[k] = string(v)
	}
	return out
}

func sameSnapshot(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func TestEndToEndRexDonation(t *testing.T) {
	h := newHarness(t)
	donor := addr(0xD0)
	h.state.accounts[donor] = big.NewInt(10_000)

	rexAddr, _ := h.addDog(rexArgs())
	accts := h.donateAccounts(donor, rexAddr, 1000)
	if _, err := h.engine.Donate(accts, DonateArgs{Amount: 500, Timestamp: 1000, Message: "good boy"}); err != nil {
		t.Fatalf("donate: %v", err)
	}

	rex, err := h.engine.Dog(rexAddr)
	if err != nil {
		t.Fatalf("load dog: %v", err)
	}
	if rex.TotalDonations != 500 {
		t.Fatalf("expected rex total 500, got %d", rex.TotalDonations)
	}
	p := h.platform()
	if p.TotalDonations != 500 || p.DonationCount != 1 || p.DogCount != 1 {
		t.Fatalf("unexpected platform totals: %+v", p)
	}
	donation, err := h.engine.Donation(accts.Donation)
	if err != nil {
		t.Fatalf("load donation: %v", err)
	}
	if donation.Donor != donor || donation.DogID != rexAddr || donation.Amount != 500 || donation.Timestamp != 1000 {
		t.Fatalf("unexpected donation: %+v", donation)
	}
	if donation.Message != "good boy" {
		t.Fatalf("expected message to be stored, got %q", donation.Message)
	}
	if got := h.state.balance(h.treasury); got != 500 {
		t.Fatalf("expected treasury balance 500, got %d", got)
	}
	if got := h.state.balance(donor); got != 9_500 {
		t.Fatalf("expected donor balance 9500, got %d", got)
	}

	var kinds []string
	for _, evt := range h.events.Events() {
		kinds = append(kinds, evt.EventType())
	}
	want := []string{EventTypePlatformInitialized, EventTypeDogAdded, EventTypeDonationMade}
	if len(kinds) != len(want) {
		t.Fatalf("expected events %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, kinds)
		}
	}
}

func TestInitializePlatformTwiceFails(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.InitializePlatform(
		InitializePlatformAccounts{Admin: addr(0x01), Platform: PlatformAddress()},
		InitializePlatformArgs{Treasury: addr(0x02)},
	)
	if !errors.Is(err, program.ErrAccountInUse) {
		t.Fatalf("expected ErrAccountInUse, got %v", err)
	}
	if p := h.platform(); p.Admin != h.admin || p.Treasury != h.treasury {
		t.Fatalf("platform must not be overwritten: %+v", p)
	}
}

func TestInitializePlatformRejectsReservedTreasury(t *testing.T) {
	for name, treasury := range map[string][20]byte{
		"zero":    {},
		"system":  SystemProgramID,
		"program": ProgramID,
	} {
		engine := NewEngine()
		engine.SetState(newMockState())
		_, err := engine.InitializePlatform(
			InitializePlatformAccounts{Admin: addr(1), Platform: PlatformAddress()},
			InitializePlatformArgs{Treasury: treasury},
		)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s treasury: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestAddDogRequiresPlatformAdmin(t *testing.T) {
	h := newHarness(t)
	dogAddr, _ := DogAddress("Rex")
	_, err := h.engine.AddDog(AddDogAccounts{Admin: addr(0x99), Platform: PlatformAddress(), Dog: dogAddr}, rexArgs())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if h.platform().DogCount != 0 {
		t.Fatalf("dog count must be unchanged")
	}
}

func TestAddDogValidatesTextInOrder(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AddDogArgs)
		want   error
	}{
		{"empty name", func(a *AddDogArgs) { a.Name = "" }, ErrInvalidDogName},
		{"blank name", func(a *AddDogArgs) { a.Name = "  \t" }, ErrInvalidDogName},
		{"name before story", func(a *AddDogArgs) { a.Name = " "; a.Story = "" }, ErrInvalidDogName},
		{"blank story", func(a *AddDogArgs) { a.Story = "\n " }, ErrInvalidDogStory},
		{"story before url", func(a *AddDogArgs) { a.Story = ""; a.ImageURL = "" }, ErrInvalidDogStory},
		{"blank url", func(a *AddDogArgs) { a.ImageURL = "   " }, ErrInvalidImageURL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			args := rexArgs()
			tc.mutate(&args)
			dogAddr, err := DogAddress(args.Name)
			if err != nil {
				t.Fatalf("dog address: %v", err)
			}
			before := h.snapshot()
			_, err = h.engine.AddDog(AddDogAccounts{Admin: h.admin, Platform: PlatformAddress(), Dog: dogAddr}, args)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !sameSnapshot(before, h.snapshot()) {
				t.Fatalf("failed add must not mutate records")
			}
		})
	}
}

func TestAddDogSetsDefaultsAndCounts(t *testing.T) {
	h := newHarness(t)
	_, rex := h.addDog(rexArgs())
	if rex.TotalDonations != 0 || !rex.Active || rex.Admin != h.admin {
		t.Fatalf("unexpected new dog: %+v", rex)
	}
	if h.platform().DogCount != 1 {
		t.Fatalf("expected dog count 1")
	}
	bella := rexArgs()
	bella.Name = "Bella"
	h.addDog(bella)
	if h.platform().DogCount != 2 {
		t.Fatalf("expected dog count 2")
	}
}

func TestAddDogDuplicateNameFails(t *testing.T) {
	h := newHarness(t)
	rexAddr, _ := h.addDog(rexArgs())
	dup := rexArgs()
	dup.Story = "another story"
	_, err := h.engine.AddDog(AddDogAccounts{Admin: h.admin, Platform: PlatformAddress(), Dog: rexAddr}, dup)
	if !errors.Is(err, program.ErrAccountInUse) {
		t.Fatalf("expected ErrAccountInUse, got %v", err)
	}
	if h.platform().DogCount != 1 {
		t.Fatalf("duplicate must not bump the dog count")
	}
	rex, _ := h.engine.Dog(rexAddr)
	if rex.Story != "rescued" {
		t.Fatalf("existing dog must be untouched, got story %q", rex.Story)
	}
}

func TestAddDogCountOverflowIsFatal(t *testing.T) {
	h := newHarness(t)
	p := h.platform()
	p.DogCount = ^uint32(0)
	if err := h.engine.records.Save(PlatformAddress(), platformKind, p); err != nil {
		t.Fatalf("seed platform: %v", err)
	}
	dogAddr, _ := DogAddress("Rex")
	_, err := h.engine.AddDog(AddDogAccounts{Admin: h.admin, Platform: PlatformAddress(), Dog: dogAddr}, rexArgs())
	if !errors.Is(err, program.ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
	}
	if exists, _ := h.engine.records.Exists(dogAddr); exists {
		t.Fatalf("dog must not be created on overflow")
	}
}

func TestUpdateDogByOwnAdmin(t *testing.T) {
	h := newHarness(t)
	rexAddr, _ := h.addDog(rexArgs())
	updated, err := h.engine.UpdateDog(UpdateDogAccounts{Admin: h.admin, Dog: rexAddr}, UpdateDogArgs{
		ImageURL:   "http://y",
		Story:      "adopted",
		NeedsToys:  true,
		NeedsOther: "blanket",
		Active:     false,
	})
	if err != nil {
		t.Fatalf("update dog: %v", err)
	}
	if updated.Name != "Rex" || updated.Age != 3 || updated.TotalDonations != 0 {
		t.Fatalf("immutable fields changed: %+v", updated)
	}
	if updated.ImageURL != "http://y" || updated.Story != "adopted" || updated.Active || updated.NeedsFood || !updated.NeedsToys || updated.NeedsOther != "blanket" {
		t.Fatalf("mutable fields not applied: %+v", updated)
	}
}

func TestUpdateDogRejectsOtherIdentity(t *testing.T) {
	h := newHarness(t)
	rexAddr, _ := h.addDog(rexArgs())
	before := h.snapshot()
	_, err := h.engine.UpdateDog(UpdateDogAccounts{Admin: addr(0x55), Dog: rexAddr}, UpdateDogArgs{
		ImageURL: "http://evil", Story: "stolen", Active: false,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !sameSnapshot(before, h.snapshot()) {
		t.Fatalf("dog record must be byte-for-byte unchanged")
	}
}

func TestUpdateDogValidatesText(t *testing.T) {
	h := newHarness(t)
	rexAddr, _ := h.addDog(rexArgs())
	_, err := h.engine.UpdateDog(UpdateDogAccounts{Admin: h.admin, Dog: rexAddr}, UpdateDogArgs{ImageURL: "", Story: " "})
	if !errors.Is(err, ErrInvalidDogStory) {
		t.Fatalf("expected ErrInvalidDogStory, got %v", err)
	}
	_, err = h.engine.UpdateDog(UpdateDogAccounts{Admin: h.admin, Dog: rexAddr}, UpdateDogArgs{ImageURL: "\t", Story: "ok"})
	if !errors.Is(err, ErrInvalidImageURL) {
		t.Fatalf("expected ErrInvalidImageURL, got %v", err)
	}
}

func TestUpdateDogMissingRecord(t *testing.T) {
	h := newHarness(t)
	ghost, _ := DogAddress("Ghost")
	_, err := h.engine.UpdateDog(UpdateDogAccounts{Admin: h.admin, Dog: ghost}, UpdateDogArgs{ImageURL: "x", Story: "y"})
	if !errors.Is(err, program.ErrAccountNotInitialized) {
		t.Fatalf("expected ErrAccountNotInitialized, got %v", err)
	}
}

func TestDonateZeroAmount(t *testing.T) {
	h := newHarness(t)
	donor := addr(0xD0)
	h.state.accounts[donor] = big.NewInt(100)
	rexAddr, _ := h.addDog(rexArgs())
	before := h.snapshot()
	_, err := h.engine.Donate(h.donateAccounts(donor, rexAddr, 1), DonateArgs{Amount: 0, Timestamp: 1})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if !sameSnapshot(before, h.snapshot()) || h.state.balance(donor) != 100 {
		t.Fatalf("zero donation must not change state")
	}
}

func TestDonateInsufficientDonorBalance(t *testing.T) {
	h := newHarness(t)
	donor := addr(0xD0)
	h.state.accounts[donor] = big.NewInt(10)
	rexAddr, _ := h.addDog(rexArgs())
	before := h.snapshot()
	_, err := h.engine.Donate(h.donateAccounts(donor, rexAddr, 7), DonateArgs{Amount: 11, Timestamp: 7})
	if !errors.Is(err, errMockInsufficient) {
		t.Fatalf("expected transfer failure, got %v", err)
	}
	if !sameSnapshot(before, h.snapshot()) {
		t.Fatalf("no record may be written when the transfer fails")
	}
	if _, ok := AsError(err); ok {
		t.Fatalf("transfer failure is a host error, not a ledger error")
	}
}

func TestDonateWrongTreasury(t *testing.T) {
	h := newHarness(t)
	donor := addr(0xD0)
	h.state.accounts[donor] = big.NewInt(1_000)
	rexAddr, _ := h.addDog(rexArgs())
	accts := h.donateAccounts(donor, rexAddr, 5)
	accts.Treasury = addr(0x66)
	_, err := h.engine.Donate(accts, DonateArgs{Amount: 10, Timestamp: 5})
	if !errors.Is(err, program.ErrConstraintAddress) {
		t.Fatalf("expected ErrConstraintAddress, got %v", err)
	}
	if h.state.balance(donor) != 1_000 {
		t.Fatalf("donor must not be debited")
	}
}

func TestDonateMissingDogIsHostError(t *testing.T) {
	h := newHarness(t)
	donor := addr(0xD0)
	h.state.accounts[donor] = big.NewInt(1_000)
	ghost, _ := DogAddress("Ghost")
	_, err := h.engine.Donate(h.donateAccounts(donor, ghost, 5), DonateArgs{Amount: 10, Timestamp: 5})
	if !errors.Is(err, program.ErrAccountNotInitialized) {
		t.Fatalf("expected ErrAccountNotInitialized, got %v", err)
	}
	if errors.Is(err, ErrDogNotFound) {
		t.Fatalf("missing dog must not surface as DogNotFound")
	}
}

func TestDonateSameTimestampCollides(t *testing.T) {
	h := newHarness(t)
	donor := addr(0xD0)
	h.state.accounts[donor] = big.NewInt(1_000)
	rexAddr, _ := h.addDog(rexArgs())
	accts := h.donateAccounts(donor, rexAddr, 42)
	if _, err := h.engine.Donate(accts, DonateArgs{Amount: 10, Timestamp: 42}); err != nil {
		t.Fatalf("first donate: %v", err)
	}
	_, err := h.engine.Donate(accts, DonateArgs{Amount: 20, Timestamp: 42})
	if !errors.Is(err, program.ErrAccountInUse) {
		t.Fatalf("expected ErrAccountInUse, got %v", err)
	}
	if h.state.balance(donor) != 990 {
		t.Fatalf("colliding donation must not move funds, balance=%d", h.state.balance(donor))
	}
	if _, err := h.engine.Donate(h.donateAccounts(donor, rexAddr, 43), DonateArgs{Amount: 20, Timestamp: 43}); err != nil {
		t.Fatalf("distinct timestamp should succeed: %v", err)
	}
	if p := h.platform(); p.DonationCount != 2 || p.TotalDonations != 30 {
		t.Fatalf("unexpected platform totals: %+v", p)
	}
}

func TestDonateNegativeTimestamp(t *testing.T) {
	h := newHarness(t)
	donor := addr(0xD0)
	h.state.accounts[donor] = big.NewInt(1_000)
	rexAddr, _ := h.addDog(rexArgs())
	accts := h.donateAccounts(donor, rexAddr, -17)
	if _, err := h.engine.Donate(accts, DonateArgs{Amount: 1, Timestamp: -17}); err != nil {
		t.Fatalf("donate: %v", err)
	}
	got, err := h.engine.Donation(accts.Donation)
	if err != nil {
		t.Fatalf("load donation: %v", err)
	}
	if got.Timestamp != -17 {
		t.Fatalf("expected timestamp -17, got %d", got.Timestamp)
	}
}

func TestDonateTotalOverflowIsFatal(t *testing.T) {
	h := newHarness(t)
	donor := addr(0xD0)
	h.state.accounts[donor] = big.NewInt(1_000)
	rexAddr, rex := h.addDog(rexArgs())
	rex.TotalDonations = ^uint64(0)
	if err := h.engine.records.Save(rexAddr, dogKind, rex); err != nil {
		t.Fatalf("seed dog: %v", err)
	}
	before := h.snapshot()
	_, err := h.engine.Donate(h.donateAccounts(donor, rexAddr, 9), DonateArgs{Amount: 1, Timestamp: 9})
	if !errors.Is(err, program.ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
	}
	if !sameSnapshot(before, h.snapshot()) || h.state.balance(donor) != 1_000 {
		t.Fatalf("overflow must abort before any write")
	}
}

func TestWithdrawFunds(t *testing.T) {
	h := newHarness(t)
	recipient := addr(0x42)
	h.state.accounts[h.treasury] = big.NewInt(700)
	accts := WithdrawFundsAccounts{Admin: h.admin, Platform: PlatformAddress(), Treasury: h.treasury, Recipient: recipient}

	if err := h.engine.WithdrawFunds(accts, WithdrawFundsArgs{Amount: 701}); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if h.state.balance(h.treasury) != 700 || h.state.balance(recipient) != 0 {
		t.Fatalf("failed withdrawal must not move funds")
	}
	if err := h.engine.WithdrawFunds(accts, WithdrawFundsArgs{Amount: 700}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if h.state.balance(h.treasury) != 0 || h.state.balance(recipient) != 700 {
		t.Fatalf("unexpected balances treasury=%d recipient=%d", h.state.balance(h.treasury), h.state.balance(recipient))
	}
}

func TestWithdrawFundsGuards(t *testing.T) {
	h := newHarness(t)
	h.state.accounts[h.treasury] = big.NewInt(100)
	base := WithdrawFundsAccounts{Admin: h.admin, Platform: PlatformAddress(), Treasury: h.treasury, Recipient: addr(0x42)}

	notAdmin := base
	notAdmin.Admin = addr(0x01)
	if err := h.engine.WithdrawFunds(notAdmin, WithdrawFundsArgs{Amount: 1}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-admin: expected ErrUnauthorized, got %v", err)
	}
	wrongTreasury := base
	wrongTreasury.Treasury = addr(0x02)
	if err := h.engine.WithdrawFunds(wrongTreasury, WithdrawFundsArgs{Amount: 1}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong treasury: expected ErrUnauthorized, got %v", err)
	}
	if err := h.engine.WithdrawFunds(base, WithdrawFundsArgs{Amount: 0}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if h.state.balance(h.treasury) != 100 {
		t.Fatalf("guards must not move funds")
	}
}

func TestEngineWithoutState(t *testing.T) {
	engine := NewEngine()
	if _, err := engine.Platform(); !errors.Is(err, errNilState) {
		t.Fatalf("expected errNilState, got %v", err)
	}
	if err := engine.WithdrawFunds(WithdrawFundsAccounts{}, WithdrawFundsArgs{Amount: 1}); !errors.Is(err, errNilState) {
		t.Fatalf("expected errNilState, got %v", err)
	}
}
