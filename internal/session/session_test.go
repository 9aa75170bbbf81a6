package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSession_EmptyIsLoggedOut(t *testing.T) {
	sess := New()

	assert.False(t, sess.IsLoggedIn())
	assert.Empty(t, sess.Token())
}

func TestSession_SetToken(t *testing.T) {
	sess := New()
	token := signedToken(t, "user-42", time.Hour)

	require.NoError(t, sess.SetToken(token))

	assert.True(t, sess.IsLoggedIn())
	assert.Equal(t, token, sess.Token())
	assert.Equal(t, "user-42", sess.Subject())
}

func TestSession_ExpiredTokenIsLoggedOut(t *testing.T) {
	sess := New()

	require.NoError(t, sess.SetToken(signedToken(t, "user-42", -time.Minute)))

	assert.False(t, sess.IsLoggedIn())
	assert.Empty(t, sess.Token())
}

func TestSession_MalformedTokenRejected(t *testing.T) {
	sess := New()
	require.NoError(t, sess.SetToken(signedToken(t, "user-42", time.Hour)))

	err := sess.SetToken("not-a-jwt")
	assert.Error(t, err)

	// Previous session survives a bad SetToken
	assert.True(t, sess.IsLoggedIn())
	assert.Equal(t, "user-42", sess.Subject())
}

func TestSession_ClearToken(t *testing.T) {
	sess := New()
	require.NoError(t, sess.SetToken(signedToken(t, "user-42", time.Hour)))

	sess.ClearToken()

	assert.False(t, sess.IsLoggedIn())
	assert.Empty(t, sess.Token())
	assert.Empty(t, sess.Subject())
}

func TestSession_TokenWithoutExpiryIsLoggedIn(t *testing.T) {
	sess := New()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-7",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	require.NoError(t, sess.SetToken(token))
	assert.True(t, sess.IsLoggedIn())
}
