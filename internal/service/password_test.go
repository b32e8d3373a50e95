package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPasswordIsDeterministicSHA256(t *testing.T) {
	// Known sha-256 vector.
	assert.Equal(t, "a665a45920422f9d417e4867efdc4fb8a04a1f3fff1fa07e998e86f7f7a27ae3", HashPassword("123"))
	assert.Equal(t, HashPassword("secret"), HashPassword("secret"))
}

func TestVerifyPassword(t *testing.T) {
	hash := HashPassword("Password1")
	assert.True(t, VerifyPassword("Password1", hash))
	assert.False(t, VerifyPassword("password1", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestRegistrationPasswordPolicy(t *testing.T) {
	assert.True(t, registrationPassword("Password1"))
	assert.False(t, registrationPassword("Pass1"))     // too short
	assert.False(t, registrationPassword("password1")) // no uppercase
	assert.False(t, registrationPassword("Passwords")) // no digit
}

func TestEmailShape(t *testing.T) {
	valid := []string{"a@b.co", "first.last+tag@sub.example.org"}
	invalid := []string{"", "plain", "a@b", "a@.com", "@example.com", "a b@example.com"}

	for _, email := range valid {
		assert.True(t, emailShape.MatchString(email), email)
	}
	for _, email := range invalid {
		assert.False(t, emailShape.MatchString(email), email)
	}
}
