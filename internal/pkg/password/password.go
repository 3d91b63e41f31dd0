package password

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MinLength is the minimum accepted password length
	MinLength = 8
)

// Strength rule messages, returned by AssessStrength in rule order
const (
	ReasonTooShort  = "Password must be at least 8 characters long"
	ReasonNoUpper   = "Password must contain at least one uppercase letter"
	ReasonNoLower   = "Password must contain at least one lowercase letter"
	ReasonNoDigit   = "Password must contain at least one number"
	ReasonTooCommon = "Password is too common. Please choose a stronger password"
)

const dummyPassword = "ripple-dummy-password-for-timing"

// commonPasswords is matched case-insensitively against the whole password
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password123": {},
	"12345678":    {},
	"qwerty":      {},
	"abc123":      {},
	"monkey":      {},
	"1234567890":  {},
	"letmein":     {},
	"trustno1":    {},
	"dragon":      {},
	"baseball":    {},
	"iloveyou":    {},
	"master":      {},
	"sunshine":    {},
	"ashley":      {},
}

// Vault hashes and verifies passwords with bcrypt
type Vault struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewVault creates a vault with the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to DefaultCost.
func NewVault(cost int) *Vault {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Vault{cost: cost}
}

// Cost returns the bcrypt cost used by Hash
func (v *Vault) Cost() int {
	return v.cost
}

// Hash hashes a password using bcrypt with a fresh salt
func (v *Vault) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash.
// Malformed hashes simply fail to verify.
func (v *Vault) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// DummyVerify burns the same bcrypt work as Verify against a throwaway hash.
// Used when there is no stored hash to compare against.
func (v *Vault) DummyVerify(password string) {
	v.dummyOnce.Do(func() {
		v.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(dummyPassword), v.cost)
	})
	_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
}

// AssessStrength checks a password against the strength rules.
// It returns the first violated rule's message.
func AssessStrength(password string) (bool, string) {
	if len(password) < MinLength {
		return false, ReasonTooShort
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return false, ReasonNoUpper
	}
	if !hasLower {
		return false, ReasonNoLower
	}
	if !hasDigit {
		return false, ReasonNoDigit
	}

	if _, common := commonPasswords[strings.ToLower(password)]; common {
		return false, ReasonTooCommon
	}

	return true, ""
}
