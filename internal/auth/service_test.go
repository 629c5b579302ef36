package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapOAuthUserRejectsEmptyProviderID(t *testing.T) {
	service := NewService([]byte("test-secret"), "", "")

	user, err := service.BootstrapOAuthUser("", "someone@example.com", "Someone", "")
	require.Error(t, err)
	assert.Nil(t, user)
}

// The v3 userinfo endpoint carries the provider id as "sub"; the struct
// must bind it so accounts are keyed on a real id.
func TestGoogleUserInfoBindsSubject(t *testing.T) {
	payload := []byte(`{
		"sub": "108417623928734012345",
		"email": "artist@example.com",
		"email_verified": true,
		"name": "An Artist",
		"picture": "https://example.com/p.png"
	}`)

	var info GoogleUserInfo
	require.NoError(t, json.Unmarshal(payload, &info))
	assert.Equal(t, "108417623928734012345", info.Sub)
	assert.Equal(t, "artist@example.com", info.Email)
	assert.True(t, info.EmailVerified)
}
