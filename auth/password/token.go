package password

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// GenerateSecret returns n random bytes hex-encoded, for use as a
// capability or session signing secret.
func GenerateSecret(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", fmt.Errorf("password: secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := io.ReadFull(rand.Reader, b)
	return b, err
}
