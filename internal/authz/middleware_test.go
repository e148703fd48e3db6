package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/staffdir/staffdir/internal/authz"
	"github.com/staffdir/staffdir/internal/token"
)

func newAuthenticated(t *testing.T) (authz.Authenticator, string) {
	t.Helper()
	codec := token.NewCodec([]byte("middleware-secret"))
	signed, err := codec.Issue(token.Account{ID: 9, Groups: []int64{777}})
	require.NoError(t, err)
	return authz.Authenticator{Codec: codec}, signed
}

func TestMiddlewareMissingTokenForbidden(t *testing.T) {
	authn, _ := newAuthenticated(t)
	handler := authn.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	for _, header := range []string{"", "Bearer ", "Basic dXNlcg==", "token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusForbidden, res.Code, "header %q", header)
	}
}

func TestMiddlewareInvalidTokenForbidden(t *testing.T) {
	authn, signed := newAuthenticated(t)
	handler := authn.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a tampered token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed+"x")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestMiddlewareStoresAccountInContext(t *testing.T) {
	authn, signed := newAuthenticated(t)
	var seen token.Account
	handler := authn.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := token.AccountFromContext(r.Context())
		require.True(t, ok)
		seen = account
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, token.Account{ID: 9, Groups: []int64{777}}, seen)
}
