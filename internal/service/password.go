package service

import (
	"crypto/rand"
	"math/big"
)

// Length of one-shot credentials generated during client onboarding.
const generatedPasswordLength = 10

// Ambiguous characters (0/O, 1/l/I) are left out: the password travels
// once, in an email, and may be typed by hand.
const passwordCharset = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generatePassword returns a random credential of n characters. It is
// delivered once over mail and only the bcrypt hash is ever stored.
func generatePassword(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordCharset[idx.Int64()]
	}
	return string(out), nil
}
