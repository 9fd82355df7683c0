package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dulpromax/catalog-api/internal/auth"
	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

func newGate(store auth.ProfileStore) *auth.Gate {
	return auth.NewGate(
		auth.NewTokenAuthenticator(testSecret, ""),
		auth.NewResolver(auth.DefaultStrategies(store)...),
		nil,
	)
}

func adminStore() *stubProfiles {
	return &stubProfiles{byID: map[string]*auth.Profile{
		"admin-1":    {ID: "admin-1", Role: strPtr("admin")},
		"customer-1": {ID: "customer-1", Role: strPtr("customer")},
		"Admin-2":    {ID: "Admin-2", Role: strPtr("Admin")},
	}}
}

func TestRequireAdminRejectsBeforeMutation(t *testing.T) {
	gate := newGate(adminStore())
	mutations := 0
	protected := gate.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mutations++
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad signature", bearer(mintToken(t, "wrong-secret", jwt.MapClaims{"sub": "admin-1"})), http.StatusUnauthorized},
		{"customer role", bearer(mintToken(t, testSecret, jwt.MapClaims{"sub": "customer-1"})), http.StatusForbidden},
		{"role is case sensitive", bearer(mintToken(t, testSecret, jwt.MapClaims{"sub": "Admin-2"})), http.StatusForbidden},
		{"no profile", bearer(mintToken(t, testSecret, jwt.MapClaims{"sub": "nobody"})), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/products", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)
			require.Equal(t, tc.status, rr.Code)

			var body httpx.ErrorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			require.Equal(t, tc.status, body.StatusCode)
		})
	}
	require.Zero(t, mutations)
}

func TestRequireAdminAdmitsAdmin(t *testing.T) {
	gate := newGate(adminStore())
	var seen auth.Caller
	protected := gate.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.CallerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/products/1", nil)
	req.Header.Set("Authorization", bearer(mintToken(t, testSecret, jwt.MapClaims{"sub": "admin-1"})))
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "admin-1", seen.ID)
	require.True(t, seen.IsAdmin())
}

func TestForbiddenAndUnauthorizedBodies(t *testing.T) {
	gate := newGate(adminStore())
	protected := gate.RequireAdmin(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/categories", nil)
	req.Header.Set("Authorization", bearer(mintToken(t, testSecret, jwt.MapClaims{"sub": "customer-1"})))
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	require.JSONEq(t, `{"status_code":403,"detail":"Admin only"}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/categories", nil)
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	require.JSONEq(t, `{"status_code":401,"detail":{"message":"Missing or invalid Authorization header","type":"authentication_error"}}`, rr.Body.String())
}

func TestProfilesMe(t *testing.T) {
	store := &stubProfiles{byID: map[string]*auth.Profile{
		"u-1": {ID: "u-1", Email: strPtr("stored@example.com"), Role: strPtr("customer")},
	}}
	r := chi.NewRouter()
	r.Route("/profiles", auth.NewHandler(newGate(store)).MountRoutes)

	req := httptest.NewRequest(http.MethodGet, "/profiles/me", nil)
	req.Header.Set("Authorization", bearer(mintToken(t, testSecret, jwt.MapClaims{"sub": "u-1"})))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"id":"u-1","email":"stored@example.com","role":"customer"}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/profiles/me", nil)
	req.Header.Set("Authorization", bearer(mintToken(t, testSecret, jwt.MapClaims{"sub": "u-9", "email": "claim@example.com"})))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"id":"u-9","email":"claim@example.com","role":null}`, rr.Body.String())
}
