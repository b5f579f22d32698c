package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	v, err := NewTokenVerifier("test-secret", time.Minute)
	require.NoError(t, err)

	tok, err := v.CreateToken("u1", "learner")
	require.NoError(t, err)

	claims, err := v.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "learner", claims.Role)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	issuer, err := NewTokenVerifier("issuer-secret", time.Minute)
	require.NoError(t, err)
	verifier, err := NewTokenVerifier("other-secret", time.Minute)
	require.NoError(t, err)

	tok, err := issuer.CreateToken("u1", "")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(tok)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	v, err := NewTokenVerifier("s", time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNewTokenVerifierRequiresSecret(t *testing.T) {
	_, err := NewTokenVerifier("  ", time.Minute)
	assert.Error(t, err)
}
