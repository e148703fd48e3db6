package staff

import (
	"context"

	"github.com/staffdir/staffdir/internal/platform/db"
)

// Assoc describes one multi-valued relation attached to a user: how to read
// its stored records and how to insert or delete a single record. Record
// types are plain comparable structs; the diff below relies on structural
// equality of the full record, not on surrogate ids.
type Assoc[R comparable] struct {
	Load   func(ctx context.Context, q db.Querier, userID int64) ([]R, error)
	Insert func(ctx context.Context, q db.Querier, userID int64, rec R) error
	Delete func(ctx context.Context, q db.Querier, userID int64, rec R) error
}

// Reconcile brings the stored record set for one user and one relation kind
// into agreement with desired, writing only the minimal delta. Desired
// records deduplicate by value. Deletes and inserts touch disjoint records,
// so their order does not matter; the first failing write aborts and leaves
// the rollback to the enclosing transaction.
func Reconcile[R comparable](ctx context.Context, q db.Querier, userID int64, desired []R, assoc Assoc[R]) error {
	current, err := assoc.Load(ctx, q, userID)
	if err != nil {
		return err
	}

	want := make(map[R]struct{}, len(desired))
	for _, rec := range desired {
		want[rec] = struct{}{}
	}
	have := make(map[R]struct{}, len(current))
	for _, rec := range current {
		have[rec] = struct{}{}
	}

	for rec := range have {
		if _, keep := want[rec]; keep {
			continue
		}
		if err := assoc.Delete(ctx, q, userID, rec); err != nil {
			return err
		}
	}
	for rec := range want {
		if _, stored := have[rec]; stored {
			continue
		}
		if err := assoc.Insert(ctx, q, userID, rec); err != nil {
			return err
		}
	}
	return nil
}
