package staff

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/staffdir/staffdir/internal/platform/httpx"
)

func TestAssocErrorClassifiesConstraintViolations(t *testing.T) {
	for _, code := range []string{"23503", "23505"} {
		err := assocError("reference", fmt.Errorf("insert: %w", &pgconn.PgError{Code: code}))
		require.ErrorIs(t, err, httpx.ErrAssociation, "code %s", code)
	}
}

func TestAssocErrorPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	require.ErrorIs(t, assocError("membership", boom), boom)
	require.NotErrorIs(t, assocError("membership", boom), httpx.ErrAssociation)

	// Postgres errors outside the constraint family stay untranslated too.
	serialization := &pgconn.PgError{Code: "40001"}
	err := assocError("property", serialization)
	require.NotErrorIs(t, err, httpx.ErrAssociation)
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)

	require.NoError(t, assocError("contact", nil))
}
