package woofi

import (
	"math/big"
	"strings"

	"woofi/core/events"
	"woofi/core/types"
	"woofi/native/program"
)

type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
	Transfer(from, to []byte, amount uint64) error
}

// Engine applies ledger operations against records owned by ProgramID.
// Operations validate and compute their results before the first write.
// Callers still run each operation against a disposable state copy and
// discard it on error.
type Engine struct {
	state   engineState
	records *program.Records
	emitter events.Emitter
}

// NewEngine constructs an engine with a no-op emitter and no state.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) {
	e.state = state
	if state == nil {
		e.records = nil
		return
	}
	e.records = program.NewRecords(state, ProgramID)
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil || e.records == nil {
		return errNilState
	}
	return nil
}

// InitializePlatform creates the platform singleton with the signer as admin.
func (e *Engine) InitializePlatform(accts InitializePlatformAccounts, args InitializePlatformArgs) (*Platform, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if accts.Platform != PlatformAddress() {
		return nil, program.ErrConstraintSeeds
	}
	if err := guardTreasuryIdentity(args.Treasury); err != nil {
		return nil, err
	}
	platform := &Platform{Admin: accts.Admin, Treasury: args.Treasury}
	if err := e.records.Init(accts.Platform, platformKind, platform); err != nil {
		return nil, err
	}
	e.emit(PlatformInitializedEvent(accts.Platform, platform))
	return platform, nil
}

// AddDog registers a new dog at the address derived from its name.
func (e *Engine) AddDog(accts AddDogAccounts, args AddDogArgs) (*Dog, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	platform, err := e.loadPlatform(accts.Platform)
	if err != nil {
		return nil, err
	}
	if err := guardPlatformAdmin(accts.Admin, platform); err != nil {
		return nil, err
	}
	if err := validateDogText(args.Name, args.Story, args.ImageURL); err != nil {
		return nil, err
	}
	if want, err := DogAddress(args.Name); err != nil || want != accts.Dog {
		return nil, program.ErrConstraintSeeds
	}
	dogCount, err := program.CheckedInc32(platform.DogCount)
	if err != nil {
		return nil, err
	}
	dog := &Dog{
		Name:         args.Name,
		Age:          args.Age,
		ImageURL:     args.ImageURL,
		Story:        args.Story,
		NeedsFood:    args.NeedsFood,
		NeedsToys:    args.NeedsToys,
		NeedsMedical: args.NeedsMedical,
		NeedsShelter: args.NeedsShelter,
		NeedsOther:   args.NeedsOther,
		Admin:        accts.Admin,
		Active:       true,
	}
	if err := e.records.Init(accts.Dog, dogKind, dog); err != nil {
		return nil, err
	}
	platform.DogCount = dogCount
	if err := e.records.Save(accts.Platform, platformKind, platform); err != nil {
		return nil, err
	}
	e.emit(DogAddedEvent(accts.Dog, dog, dogCount))
	return dog, nil
}

// UpdateDog overwrites the mutable fields of a dog. Only the dog's own admin
// may call it.
func (e *Engine) UpdateDog(accts UpdateDogAccounts, args UpdateDogArgs) (*Dog, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	dog, err := e.loadDog(accts.Dog)
	if err != nil {
		return nil, err
	}
	if err := guardDogAdmin(accts.Admin, dog); err != nil {
		return nil, err
	}
	if isBlank(args.Story) {
		return nil, ErrInvalidDogStory
	}
	if isBlank(args.ImageURL) {
		return nil, ErrInvalidImageURL
	}
	dog.ImageURL = args.ImageURL
	dog.Story = args.Story
	dog.NeedsFood = args.NeedsFood
	dog.NeedsToys = args.NeedsToys
	dog.NeedsMedical = args.NeedsMedical
	dog.NeedsShelter = args.NeedsShelter
	dog.NeedsOther = args.NeedsOther
	dog.Active = args.Active
	if err := e.records.Save(accts.Dog, dogKind, dog); err != nil {
		return nil, err
	}
	e.emit(DogUpdatedEvent(accts.Dog, dog))
	return dog, nil
}

// Donate moves amount from the donor to the treasury and records the
// donation against the dog and the platform totals.
func (e *Engine) Donate(accts DonateAccounts, args DonateArgs) (*Donation, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if args.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	platform, err := e.loadPlatform(accts.Platform)
	if err != nil {
		return nil, err
	}
	dog, err := e.loadDog(accts.Dog)
	if err != nil {
		return nil, err
	}
	if !treasuryMatches(accts.Treasury, platform) {
		return nil, program.ErrConstraintAddress
	}
	if want, err := DonationAddress(accts.Donor, args.Timestamp); err != nil || want != accts.Donation {
		return nil, program.ErrConstraintSeeds
	}
	exists, err := e.records.Exists(accts.Donation)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, program.ErrAccountInUse
	}

	dogTotal, err := program.CheckedAdd64(dog.TotalDonations, args.Amount)
	if err != nil {
		return nil, err
	}
	platformTotal, err := program.CheckedAdd64(platform.TotalDonations, args.Amount)
	if err != nil {
		return nil, err
	}
	donationCount, err := program.CheckedInc32(platform.DonationCount)
	if err != nil {
		return nil, err
	}

	if err := e.state.Transfer(accts.Donor[:], accts.Treasury[:], args.Amount); err != nil {
		return nil, err
	}
	donation := &Donation{
		Donor:     accts.Donor,
		DogID:     accts.Dog,
		Amount:    args.Amount,
		Timestamp: args.Timestamp,
		Message:   args.Message,
	}
	if err := e.records.Init(accts.Donation, donationKind, donation.stored()); err != nil {
		return nil, err
	}
	dog.TotalDonations = dogTotal
	if err := e.records.Save(accts.Dog, dogKind, dog); err != nil {
		return nil, err
	}
	platform.TotalDonations = platformTotal
	platform.DonationCount = donationCount
	if err := e.records.Save(accts.Platform, platformKind, platform); err != nil {
		return nil, err
	}
	e.emit(DonationMadeEvent(accts.Donation, donation, dog))
	return donation, nil
}

// WithdrawFunds debits the treasury and credits the recipient in one step.
func (e *Engine) WithdrawFunds(accts WithdrawFundsAccounts, args WithdrawFundsArgs) error {
	if err := e.ready(); err != nil {
		return err
	}
	platform, err := e.loadPlatform(accts.Platform)
	if err != nil {
		return err
	}
	if err := guardPlatformAdmin(accts.Admin, platform); err != nil {
		return err
	}
	if !treasuryMatches(accts.Treasury, platform) {
		return ErrUnauthorized
	}
	if args.Amount == 0 {
		return ErrInvalidAmount
	}
	treasury, err := e.state.GetAccount(accts.Treasury[:])
	if err != nil {
		return err
	}
	amount := new(big.Int).SetUint64(args.Amount)
	if treasury.Balance == nil || treasury.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if accts.Recipient != accts.Treasury {
		recipient, err := e.state.GetAccount(accts.Recipient[:])
		if err != nil {
			return err
		}
		treasury.Balance = new(big.Int).Sub(treasury.Balance, amount)
		recipient.Balance = new(big.Int).Add(recipient.Balance, amount)
		if err := e.state.PutAccount(accts.Treasury[:], treasury); err != nil {
			return err
		}
		if err := e.state.PutAccount(accts.Recipient[:], recipient); err != nil {
			return err
		}
	}
	e.emit(FundsWithdrawnEvent(accts.Treasury, accts.Recipient, args.Amount))
	return nil
}

// Platform returns the platform singleton.
func (e *Engine) Platform() (*Platform, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.loadPlatform(PlatformAddress())
}

// Dog returns the dog stored at addr.
func (e *Engine) Dog(addr [20]byte) (*Dog, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.loadDog(addr)
}

// Donation returns the donation stored at addr.
func (e *Engine) Donation(addr [20]byte) (*Donation, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	var stored storedDonation
	if err := e.records.Load(addr, donationKind, &stored); err != nil {
		return nil, err
	}
	return stored.donation(), nil
}

func (e *Engine) loadPlatform(addr [20]byte) (*Platform, error) {
	if addr != PlatformAddress() {
		return nil, program.ErrConstraintSeeds
	}
	platform := new(Platform)
	if err := e.records.Load(addr, platformKind, platform); err != nil {
		return nil, err
	}
	return platform, nil
}

func (e *Engine) loadDog(addr [20]byte) (*Dog, error) {
	dog := new(Dog)
	if err := e.records.Load(addr, dogKind, dog); err != nil {
		return nil, err
	}
	return dog, nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func validateDogText(name, story, imageURL string) error {
	if isBlank(name) {
		return ErrInvalidDogName
	}
	if isBlank(story) {
		return ErrInvalidDogStory
	}
	if isBlank(imageURL) {
		return ErrInvalidImageURL
	}
	return nil
}
