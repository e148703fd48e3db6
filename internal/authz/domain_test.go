package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdir/staffdir/internal/authz"
	"github.com/staffdir/staffdir/internal/platform/httpx"
)

func TestParseMethod(t *testing.T) {
	for _, valid := range []string{"GET", "POST", "PUT", "DELETE"} {
		method, err := authz.ParseMethod(valid)
		require.NoError(t, err)
		assert.Equal(t, authz.Method(valid), method)
	}

	for _, invalid := range []string{"", "get", "PATCH", "HEAD", "DELETE "} {
		_, err := authz.ParseMethod(invalid)
		assert.ErrorIs(t, err, httpx.ErrValidation, "method %q", invalid)
	}
}

func TestParseResource(t *testing.T) {
	for _, valid := range []string{"USER", "GROUP", "CONTACT", "PROPERTY", "STATUS", "PROVIDER", "LANGUAGE", "DIRECTORY", "POINT", "PERMISSION", "PUBLIC", "ADMIN"} {
		resource, err := authz.ParseResource(valid)
		require.NoError(t, err)
		assert.Equal(t, authz.Resource(valid), resource)
	}

	for _, invalid := range []string{"", "user", "WIDGET"} {
		_, err := authz.ParseResource(invalid)
		assert.ErrorIs(t, err, httpx.ErrValidation, "resource %q", invalid)
	}
}
