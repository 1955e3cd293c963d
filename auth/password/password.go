// Package password hashes and checks the shared access password.
//
// The gateway accepts either a plain password, compared in constant time,
// or a bcrypt / argon2id hash printed by `drivegate --hash-password`.
// Detect picks the verifier from the hash prefix so configuration only
// needs the hash string.
package password

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password: invalid password")

// Hasher hashes passwords and verifies them against a stored hash.
type Hasher interface {
	Hash(plain string) (string, error)
	// Verify returns ErrMismatch for a wrong password and another error
	// when hash itself is malformed.
	Verify(plain, hash string) error
}

// Equal compares two plain passwords in constant time.
func Equal(given, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}

// Detect returns the Hasher able to verify hash, or nil if hash is not in a
// recognised format.
func Detect(hash string) Hasher {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return &Bcrypt{}
		}
	}
	if strings.HasPrefix(hash, argon2Prefix) {
		return &Argon2{}
	}
	return nil
}

// NewHasher returns the Hasher cfg selects for new hashes.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	if cfg.Algorithm == AlgorithmArgon2id {
		return &Argon2{
			Params:    Argon2Params{Time: cfg.Argon2Time, Memory: cfg.Argon2Memory, Threads: cfg.Argon2Threads},
			MinLength: cfg.MinLength,
		}
	}
	return &Bcrypt{Cost: cfg.BcryptCost, MinLength: cfg.MinLength}
}

func checkLength(plain string, minLen, maxLen int) error {
	if len(plain) < minLen {
		return fmt.Errorf("password: at least %d characters required", minLen)
	}
	if maxLen > 0 && len(plain) > maxLen {
		return fmt.Errorf("password: at most %d characters allowed", maxLen)
	}
	return nil
}
