package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer(testSecret, "liftlog", time.Hour)
	require.NoError(t, err)
	verifier, err := NewVerifier(testSecret, "liftlog")
	require.NoError(t, err)

	token, err := issuer.Issue("user_123")
	require.NoError(t, err)

	subject, err := verifier.VerifySubject(token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", subject)
}

func TestVerifyRejects(t *testing.T) {
	verifier, err := NewVerifier(testSecret, "liftlog")
	require.NoError(t, err)

	sign := func(t *testing.T, method jwt.SigningMethod, key any, c jwt.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("wrong secret", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "u", Issuer: "liftlog", ExpiresAt: future})
		_, err := verifier.VerifySubject(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("expired", func(t *testing.T) {
		past := jwt.NewNumericDate(time.Now().Add(-time.Minute))
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "u", Issuer: "liftlog", ExpiresAt: past})
		_, err := verifier.VerifySubject(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
	t.Run("no expiry", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "u", Issuer: "liftlog"})
		_, err := verifier.VerifySubject(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("wrong issuer", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "u", Issuer: "elsewhere", ExpiresAt: future})
		_, err := verifier.VerifySubject(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("missing subject", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Issuer: "liftlog", ExpiresAt: future})
		_, err := verifier.VerifySubject(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.VerifySubject("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifyAcceptsUIDClaim(t *testing.T) {
	verifier, err := NewVerifier(testSecret, "")
	require.NoError(t, err)
	c := &claims{
		UserID:           "from_uid",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
	require.NoError(t, err)

	subject, err := verifier.VerifySubject(token)
	require.NoError(t, err)
	assert.Equal(t, "from_uid", subject)
}

func TestConstructorsRequireSecret(t *testing.T) {
	_, err := NewVerifier("", "")
	assert.Error(t, err)
	_, err = NewIssuer("", "", 0)
	assert.Error(t, err)
}

func TestContextProvider(t *testing.T) {
	var p Provider = ContextProvider{}

	_, ok := p.UserID(context.Background())
	assert.False(t, ok)

	_, ok = p.UserID(WithUserID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := p.UserID(WithUserID(context.Background(), "user_1"))
	assert.True(t, ok)
	assert.Equal(t, "user_1", id)

	id, ok = Static("fixed").UserID(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "fixed", id)
	_, ok = Static("").UserID(context.Background())
	assert.False(t, ok)
}
