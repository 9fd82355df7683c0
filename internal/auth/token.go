package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

// DefaultAlgorithm is the signing algorithm used by the hosted identity provider.
const DefaultAlgorithm = "HS256"

// subjectClaims lists the claims that may carry the caller id, highest priority first.
var subjectClaims = []string{"sub", "user_id", "uid"}

// Credentials is what a verified bearer token asserts about the caller.
type Credentials struct {
	SubjectID string
	Email     string
}

// TokenAuthenticator verifies bearer tokens against a shared HMAC secret.
type TokenAuthenticator struct {
	secret    []byte
	algorithm string
}

// NewTokenAuthenticator builds an authenticator. An empty secret is accepted
// here and reported as a misconfiguration on first use.
func NewTokenAuthenticator(secret, algorithm string) *TokenAuthenticator {
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	return &TokenAuthenticator{secret: []byte(secret), algorithm: algorithm}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", httpx.Wrap(httpx.ErrUnauthorized, "Missing or invalid Authorization header", nil)
	}
	return token, nil
}

// Authenticate verifies the token in header and returns the asserted identity.
// The signature is always checked before any claim is read.
func (a *TokenAuthenticator) Authenticate(header string) (Credentials, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return Credentials{}, err
	}
	if len(a.secret) == 0 {
		return Credentials{}, httpx.Wrap(httpx.ErrMisconfigured, "Server misconfigured: SUPABASE_JWT_SECRET missing", nil)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{a.algorithm}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Credentials{}, httpx.Wrap(httpx.ErrUnauthorized, "Token expired", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Credentials{}, httpx.Wrap(httpx.ErrUnauthorized, "Invalid token signature", err)
		default:
			return Credentials{}, httpx.Wrap(httpx.ErrUnauthorized, "Invalid token", err)
		}
	}

	var creds Credentials
	for _, name := range subjectClaims {
		if v := claimString(claims, name); v != "" {
			creds.SubjectID = v
			break
		}
	}
	if creds.SubjectID == "" {
		return Credentials{}, httpx.Wrap(httpx.ErrUnauthorized, "Invalid token subject", nil)
	}
	creds.Email = claimString(claims, "email")
	return creds, nil
}

func claimString(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
