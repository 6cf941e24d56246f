package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigestPassword(t *testing.T) {
	// h = h*31 + unit over UTF-16 units, signed 32-bit.
	assert.Equal(t, "96354", digestPassword("abc"))
	assert.Equal(t, "0", digestPassword(""))

	assert.Equal(t, digestPassword("secret1"), digestPassword("secret1"))
	assert.NotEqual(t, digestPassword("secret1"), digestPassword("secret2"))
}

func TestDigestPasswordNonASCII(t *testing.T) {
	// Characters outside the BMP encode as surrogate pairs and must still
	// digest deterministically.
	assert.Equal(t, digestPassword("pass😀word"), digestPassword("pass😀word"))
	assert.NotEqual(t, digestPassword("pass😀word"), digestPassword("password"))
}

func TestVerifyPassword(t *testing.T) {
	digest := digestPassword("secret1")

	assert.True(t, verifyPassword("secret1", digest))
	assert.False(t, verifyPassword("secret2", digest))
	assert.False(t, verifyPassword("", digest))
}
