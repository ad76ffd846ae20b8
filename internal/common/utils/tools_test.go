package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCredentials(t *testing.T) {
	usernameReg := regexp.MustCompile(`^user[0-9a-z]{6}$`)
	passwordReg := regexp.MustCompile(`^[0-9a-z]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		username, password := GenerateCredentials()
		assert.Regexp(t, usernameReg, username)
		assert.Regexp(t, passwordReg, password)
		seen[username] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	assert.Len(t, id, 12)
	assert.NotEqual(t, id, GenerateID())
}

func TestNewReqID(t *testing.T) {
	assert.NotEmpty(t, NewReqID())
}
