package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// Cost matches the cost used when the credential store was first seeded.
	Cost = 12

	errPasswordEmpty   = "password cannot be empty"
	errHashPasswordFmt = "failed to hash password: %w"
)

// dummyHash is a valid cost-12 bcrypt hash of a throwaway value. Comparing
// against it makes an unknown-account login cost the same as a wrong password.
const dummyHash = "$2a$12$dWR5CQpS4zNHLavLSIr4o.P6QDQEUJKv7mJ7WekUHHqyRSRMJzH0S"

// Hasher hashes and verifies account passwords.
type Hasher struct {
	cost int
}

// New returns a Hasher using cost. Costs outside bcrypt's range fall back to Cost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = Cost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf(errPasswordEmpty)
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf(errHashPasswordFmt, err)
	}

	return string(bytes), nil
}

func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnTime runs a comparison against the dummy hash and discards the result.
func (h *Hasher) BurnTime(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
