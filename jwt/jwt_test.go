package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")

	token, err := issuer.GenerateAccessToken("64f1c0ffee")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := issuer.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64f1c0ffee", userID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")

	token, err := issuer.GenerateRefreshToken("64f1c0ffee")
	require.NoError(t, err)

	userID, err := issuer.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64f1c0ffee", userID)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")

	access, err := issuer.GenerateAccessToken("user-1")
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = issuer.VerifyRefreshToken(access)
	assert.Error(t, err)
	_, err = issuer.VerifyAccessToken(refresh)
	assert.Error(t, err)
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")
	other := NewIssuer("someone-elses-secret", "refresh-secret")

	forged, err := other.GenerateAccessToken("user-1")
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(forged)
	assert.Error(t, err)
}
