package token_test

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/staffdir/staffdir/internal/token"
)

func TestIssueResolveRoundTrip(t *testing.T) {
	codec := token.NewCodec([]byte("test-secret"))
	account := token.Account{ID: 42, Groups: []int64{7, 12, 99}}

	signed, err := codec.Issue(account)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	resolved, err := codec.Resolve(signed)
	require.NoError(t, err)
	require.Equal(t, account, resolved)
}

func TestResolveDeduplicatesGroups(t *testing.T) {
	codec := token.NewCodec([]byte("test-secret"))

	signed, err := codec.Issue(token.Account{ID: 8, Groups: []int64{3, 3, 5, 3}})
	require.NoError(t, err)

	resolved, err := codec.Resolve(signed)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 5}, resolved.Groups)
}

func TestResolveRejectsTamperedToken(t *testing.T) {
	codec := token.NewCodec([]byte("test-secret"))
	signed, err := codec.Issue(token.Account{ID: 42, Groups: []int64{7}})
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)

	flip := func(s string) string {
		if s[0] == 'A' {
			return "B" + s[1:]
		}
		return "A" + s[1:]
	}

	tampered := []string{
		strings.Join([]string{parts[0], flip(parts[1]), parts[2]}, "."),
		strings.Join([]string{parts[0], parts[1], flip(parts[2])}, "."),
	}
	for _, raw := range tampered {
		_, err := codec.Resolve(raw)
		require.ErrorIs(t, err, token.ErrInvalidToken)
	}
}

func TestResolveRejectsWrongSecret(t *testing.T) {
	signed, err := token.NewCodec([]byte("secret-a")).Issue(token.Account{ID: 1, Groups: []int64{2}})
	require.NoError(t, err)

	_, err = token.NewCodec([]byte("secret-b")).Resolve(signed)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestResolveRejectsGarbage(t *testing.T) {
	codec := token.NewCodec([]byte("test-secret"))
	for _, raw := range []string{"not-a-token", "a.b.c", ""} {
		_, err := codec.Resolve(raw)
		require.ErrorIs(t, err, token.ErrInvalidToken)
	}
}

func TestResolveRejectsMissingIdentityClaim(t *testing.T) {
	secret := []byte("test-secret")
	// A structurally valid token signed with the right secret but without
	// the id claim.
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"groups": []int64{1, 2},
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = token.NewCodec(secret).Resolve(signed)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestResolveRejectsUnsignedAlgorithm(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":     int64(42),
		"groups": []int64{7},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = token.NewCodec([]byte("test-secret")).Resolve(signed)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}
