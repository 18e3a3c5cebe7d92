package woofi

// Authorization guards run before any write and never touch state.

func guardPlatformAdmin(signer [20]byte, platform *Platform) error {
	if platform == nil || signer != platform.Admin {
		return ErrUnauthorized
	}
	return nil
}

func guardDogAdmin(signer [20]byte, dog *Dog) error {
	if dog == nil || signer != dog.Admin {
		return ErrUnauthorized
	}
	return nil
}

// guardTreasuryIdentity rejects identities that can never act as a treasury.
func guardTreasuryIdentity(treasury [20]byte) error {
	switch treasury {
	case [20]byte{}, SystemProgramID, ProgramID:
		return ErrUnauthorized
	}
	return nil
}

func treasuryMatches(supplied [20]byte, platform *Platform) bool {
	return platform != nil && supplied == platform.Treasury
}
