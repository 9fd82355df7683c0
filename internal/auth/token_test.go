package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dulpromax/catalog-api/internal/auth"
	"github.com/dulpromax/catalog-api/internal/platform/httpx"
	_ "github.com/dulpromax/catalog-api/internal/testing/guard"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func bearer(token string) string { return "Bearer " + token }

func requireReason(t *testing.T, err error, kind error, reason string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var he *httpx.Error
	require.True(t, errors.As(err, &he))
	require.Equal(t, reason, he.Message)
}

func TestAuthenticateReturnsSubClaim(t *testing.T) {
	a := auth.NewTokenAuthenticator(testSecret, "")
	for _, sub := range []string{"1b7c9c52-0f1e-4b8a-9d43-5c1f1f6b2a10", "user-42", "x"} {
		token := mintToken(t, testSecret, jwt.MapClaims{
			"sub":   sub,
			"email": "buyer@example.com",
			"aud":   "authenticated",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		creds, err := a.Authenticate(bearer(token))
		require.NoError(t, err)
		require.Equal(t, sub, creds.SubjectID)
		require.Equal(t, "buyer@example.com", creds.Email)
	}
}

func TestAuthenticateSubjectFallbackOrder(t *testing.T) {
	a := auth.NewTokenAuthenticator(testSecret, "HS256")

	creds, err := a.Authenticate(bearer(mintToken(t, testSecret, jwt.MapClaims{"user_id": "u-1", "uid": "u-2"})))
	require.NoError(t, err)
	require.Equal(t, "u-1", creds.SubjectID)

	creds, err = a.Authenticate(bearer(mintToken(t, testSecret, jwt.MapClaims{"uid": float64(77)})))
	require.NoError(t, err)
	require.Equal(t, "77", creds.SubjectID)
	require.Empty(t, creds.Email)

	_, err = a.Authenticate(bearer(mintToken(t, testSecret, jwt.MapClaims{"email": "a@b.c"})))
	requireReason(t, err, httpx.ErrUnauthorized, "Invalid token subject")
}

func TestAuthenticateRejectsInvalidSignature(t *testing.T) {
	a := auth.NewTokenAuthenticator(testSecret, "")
	claimSets := []jwt.MapClaims{
		{"sub": "admin-user", "role": "admin"},
		{"user_id": "u-1"},
		{},
	}
	for _, claims := range claimSets {
		token := mintToken(t, "another-secret-entirely", claims)
		_, err := a.Authenticate(bearer(token))
		requireReason(t, err, httpx.ErrUnauthorized, "Invalid token signature")
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	a := auth.NewTokenAuthenticator(testSecret, "")
	token := mintToken(t, testSecret, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Minute).Unix()})
	_, err := a.Authenticate(bearer(token))
	requireReason(t, err, httpx.ErrUnauthorized, "Token expired")
}

func TestAuthenticateRejectsOtherAlgorithm(t *testing.T) {
	a := auth.NewTokenAuthenticator(testSecret, "HS256")
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "u-1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = a.Authenticate(bearer(signed))
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestAuthenticateRejectsMalformedHeaders(t *testing.T) {
	a := auth.NewTokenAuthenticator(testSecret, "")
	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc", "Token abc"} {
		_, err := a.Authenticate(header)
		requireReason(t, err, httpx.ErrUnauthorized, "Missing or invalid Authorization header")
	}

	_, err := a.Authenticate("Bearer not.a.jwt")
	requireReason(t, err, httpx.ErrUnauthorized, "Invalid token")
}

func TestAuthenticateSchemeIsCaseInsensitive(t *testing.T) {
	a := auth.NewTokenAuthenticator(testSecret, "")
	token := mintToken(t, testSecret, jwt.MapClaims{"sub": "u-1"})
	creds, err := a.Authenticate("bearer " + token)
	require.NoError(t, err)
	require.Equal(t, "u-1", creds.SubjectID)
}

func TestAuthenticateMissingSecret(t *testing.T) {
	a := auth.NewTokenAuthenticator("", "")
	token := mintToken(t, testSecret, jwt.MapClaims{"sub": "u-1"})
	_, err := a.Authenticate(bearer(token))
	require.ErrorIs(t, err, httpx.ErrMisconfigured)
}
