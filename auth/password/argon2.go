package password

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Prefix  = "$argon2id$"
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

var b64 = base64.RawStdEncoding

// Argon2Params are the argon2id cost settings. Memory is in KiB.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

func (p Argon2Params) withDefaults() Argon2Params {
	if p.Time == 0 {
		p.Time = 1
	}
	if p.Memory == 0 {
		p.Memory = 64 * 1024
	}
	if p.Threads == 0 {
		p.Threads = 4
	}
	return p
}

// Argon2 hashes with argon2id using the PHC string format
// $argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>.
type Argon2 struct {
	Params    Argon2Params
	MinLength int
}

func (a *Argon2) Hash(plain string) (string, error) {
	minLen := a.MinLength
	if minLen <= 0 {
		minLen = defaultMinLength
	}
	if err := checkLength(plain, minLen, 0); err != nil {
		return "", err
	}
	salt, err := randomBytes(argon2SaltLen)
	if err != nil {
		return "", fmt.Errorf("password: salt: %w", err)
	}
	p := a.Params.withDefaults()
	key := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Threads, argon2KeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s", argon2Prefix, argon2.Version,
		p.Memory, p.Time, p.Threads, b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

func (a *Argon2) Verify(plain, hash string) error {
	p, salt, key, err := decodeArgon2(hash)
	if err != nil {
		return err
	}
	got := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	if subtle.ConstantTimeCompare(got, key) != 1 {
		return ErrMismatch
	}
	return nil
}

func decodeArgon2(hash string) (p Argon2Params, salt, key []byte, err error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	fields := strings.Split(hash, "$")
	if len(fields) != 6 || fields[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("password: malformed argon2id hash")
	}
	var version int
	if _, err = fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("password: unsupported argon2 version %q", fields[2])
	}
	if _, err = fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("password: argon2id params: %w", err)
	}
	if salt, err = b64.DecodeString(fields[4]); err != nil {
		return p, nil, nil, fmt.Errorf("password: argon2id salt: %w", err)
	}
	if key, err = b64.DecodeString(fields[5]); err != nil {
		return p, nil, nil, fmt.Errorf("password: argon2id key: %w", err)
	}
	return p, salt, key, nil
}
