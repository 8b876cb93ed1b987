package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		p, err := generatePassword(generatedPasswordLength)
		require.NoError(t, err)
		assert.Len(t, p, generatedPasswordLength)
		for _, r := range p {
			assert.True(t, strings.ContainsRune(passwordCharset, r), "unexpected character %q", r)
		}
		seen[p] = true
	}
	// 100 draws from a 57^10 space colliding would mean a broken generator.
	assert.Len(t, seen, 100)
}

func TestPasswordCharsetSkipsAmbiguousCharacters(t *testing.T) {
	for _, r := range "0O1lI" {
		assert.False(t, strings.ContainsRune(passwordCharset, r), "ambiguous character %q in charset", r)
	}
}
