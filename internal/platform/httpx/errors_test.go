package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", Wrap(ErrNotFound, "Product not found", nil), http.StatusNotFound, `{"status_code":404,"detail":"Product not found"}`},
		{"duplicate", Wrap(ErrDuplicate, "product already exists", errors.New("23505")), http.StatusBadRequest, `{"status_code":400,"detail":"product already exists"}`},
		{"validation", fmt.Errorf("create: %w", Wrap(ErrValidation, "price must be greater than 0", nil)), http.StatusBadRequest, `{"status_code":400,"detail":"price must be greater than 0"}`},
		{"forbidden", Wrap(ErrForbidden, "Admin only", nil), http.StatusForbidden, `{"status_code":403,"detail":"Admin only"}`},
		{"unauthorized", Wrap(ErrUnauthorized, "Token expired", errors.New("token is expired")), http.StatusUnauthorized,
			`{"status_code":401,"detail":{"message":"Token expired","error":"token is expired","type":"authentication_error"}}`},
		{"misconfigured", Wrap(ErrMisconfigured, "Backend env vars missing: SUPABASE_URL", nil), http.StatusInternalServerError,
			`{"status_code":500,"detail":"Backend env vars missing: SUPABASE_URL"}`},
		{"upstream json", &UpstreamError{Status: http.StatusForbidden, Body: []byte(`{"code":"42501"}`)}, http.StatusForbidden,
			`{"status_code":403,"detail":{"code":"42501"}}`},
		{"upstream text", &UpstreamError{Status: http.StatusServiceUnavailable, Body: []byte("down")}, http.StatusServiceUnavailable,
			`{"status_code":503,"detail":"down"}`},
		{"upstream transport", &UpstreamError{Err: errors.New("dial tcp: refused")}, http.StatusBadGateway,
			`{"status_code":502,"detail":"Error contacting backing store: upstream: dial tcp: refused"}`},
		{"unknown", errors.New("kaboom"), http.StatusInternalServerError, `{"status_code":500,"detail":"Internal Server Error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)
			require.Equal(t, tc.status, rr.Code)
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			require.JSONEq(t, tc.body, rr.Body.String())
		})
	}
}
