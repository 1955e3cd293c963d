package password

import "fmt"

// Algorithm names a hashing scheme for new hashes.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

const defaultMinLength = 8

// Config is the auth.hashing section. It only affects hashes produced by
// the CLI; verification reads its parameters from the stored hash.
type Config struct {
	Algorithm     Algorithm `mapstructure:"algorithm"`
	BcryptCost    int       `mapstructure:"bcrypt_cost"`
	Argon2Time    uint32    `mapstructure:"argon2_time"`
	Argon2Memory  uint32    `mapstructure:"argon2_memory"` // KiB
	Argon2Threads uint8     `mapstructure:"argon2_threads"`
	MinLength     int       `mapstructure:"min_length"`
}

func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	p := Argon2Params{Time: c.Argon2Time, Memory: c.Argon2Memory, Threads: c.Argon2Threads}.withDefaults()
	c.Argon2Time, c.Argon2Memory, c.Argon2Threads = p.Time, p.Memory, p.Threads
	if c.MinLength == 0 {
		c.MinLength = defaultMinLength
	}
}

func (c *Config) Validate() error {
	if c.Algorithm != AlgorithmBcrypt && c.Algorithm != AlgorithmArgon2id {
		return fmt.Errorf("algorithm %q is not bcrypt or argon2id", c.Algorithm)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost %d outside 4..31", c.BcryptCost)
	}
	if c.MinLength < 1 {
		return fmt.Errorf("min_length must be positive")
	}
	return nil
}
