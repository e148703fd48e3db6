package directory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/staffdir/staffdir/internal/directory"
	"github.com/staffdir/staffdir/internal/platform/httpx"
)

func TestValidateLanguageCodeCanonicalizes(t *testing.T) {
	cases := []struct{ in, want string }{
		{"en", "en"},
		{"en-US", "en-US"},
		{"EN-us", "en-US"},
		{" de ", "de"},
		{"zh-hant", "zh-Hant"},
	}
	for _, tc := range cases {
		got, err := directory.ValidateLanguageCode(tc.in)
		require.NoError(t, err, "code %q", tc.in)
		require.Equal(t, tc.want, got, "code %q", tc.in)
	}
}

func TestValidateLanguageCodeRejectsMalformed(t *testing.T) {
	for _, code := range []string{"", "   ", "123!", "english language", "x"} {
		_, err := directory.ValidateLanguageCode(code)
		require.ErrorIs(t, err, httpx.ErrValidation, "code %q", code)
	}
}
