package common

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	s := NewTokenSigner([]byte("secret"))

	token, err := s.Issue(42, time.Hour)
	require.NoError(t, err)

	userID, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenSigner_Rejects(t *testing.T) {
	s := NewTokenSigner([]byte("secret"))

	expired, err := s.Issue(1, -time.Minute)
	require.NoError(t, err)
	otherKey, err := NewTokenSigner([]byte("other")).Issue(1, time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":     expired,
		"wrong key":   otherKey,
		"no expiry":   noExpiry,
		"bad subject": badSubject,
		"alg none":    unsigned,
		"garbage":     "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
