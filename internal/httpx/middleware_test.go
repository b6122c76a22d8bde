package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battolapablo/marketgo/internal/auth"
)

func authedRequest(t *testing.T, v *auth.Verifier, roles []string) *http.Request {
	t.Helper()
	token, err := v.Issue("u1", roles)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRequireAuthMissingToken(t *testing.T) {
	v := auth.NewVerifier("s", time.Hour)
	h := RequireAuth(v, auth.DefaultPolicy(), auth.OpGetOrder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Bearer ", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Contains(t, rec.Body.String(), "token not found")
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	issuer := auth.NewVerifier("s", -time.Minute)
	token, err := issuer.Issue("u1", []string{auth.RoleUser})
	require.NoError(t, err)

	v := auth.NewVerifier("s", time.Hour)
	h := RequireAuth(v, auth.DefaultPolicy(), auth.OpGetOrder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired or invalid token")
}

func TestRequireAuthInsufficientRole(t *testing.T) {
	v := auth.NewVerifier("s", time.Hour)
	h := RequireAuth(v, auth.DefaultPolicy(), auth.OpCreateProduct)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(t, v, []string{auth.RoleUser}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAuthPassesIdentityToHandler(t *testing.T) {
	v := auth.NewVerifier("s", time.Hour)
	var got *auth.Identity
	h := RequireAuth(v, auth.DefaultPolicy(), auth.OpPlaceOrder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		require.True(t, ok)
		got = id
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(t, v, []string{auth.RoleUser}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, []string{auth.RoleUser}, got.Roles)
}
