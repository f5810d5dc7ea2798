package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssueVerifyRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := m.Issue(42, RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.UserID)
	assert.Equal(t, string(RoleAdmin), identity.Role)
}

func TestTokenVerifyExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)

	// Issue in the past, verify in the present.
	issued := time.Now().Add(-2 * time.Minute)
	m.now = func() time.Time { return issued }
	token, _, err := m.Issue(7, RoleUser)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, err := issuer.Issue(1, RoleUser)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerifyMalformed(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Verify(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}

func TestTokenVerifyRejectsUnsignedAlg(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: string(RoleAdmin),
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerifyRejectsUnknownRole(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, _, err := m.Issue(5, Role("SUPERUSER"))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenUniqueID(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	a, _, err := m.Issue(1, RoleUser)
	require.NoError(t, err)
	b, _, err := m.Issue(1, RoleUser)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "tokens for the same user must carry distinct jti values")
}
