package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndAuthenticateJWT(t *testing.T) {
	require.NoError(t, Init())

	userID := uuid.New().String()
	token, err := CreateJWT(userID)
	require.NoError(t, err)

	sub, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID, sub)
}

func TestAuthenticateJWTRejectsTampering(t *testing.T) {
	require.NoError(t, Init())

	token, err := CreateJWT(uuid.New().String())
	require.NoError(t, err)

	_, err = AuthenticateJWT(token + "x")
	assert.Error(t, err)
}

func TestAuthenticateJWTRejectsForeignKey(t *testing.T) {
	require.NoError(t, Init())
	token, err := CreateJWT(uuid.New().String())
	require.NoError(t, err)

	// new key pair invalidates previously issued tokens
	require.NoError(t, Init())
	_, err = AuthenticateJWT(token)
	assert.Error(t, err)
}

func TestTokenTTLNever(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "never")
	require.NoError(t, Init())
	assert.Zero(t, TokenTTL())

	t.Setenv("TOKEN_EXPIRE_TIME", "12h")
	require.NoError(t, Init())
	assert.Equal(t, "12h0m0s", TokenTTL().String())
}
