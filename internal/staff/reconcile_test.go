package staff_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/staff"
)

// memAssoc is an in-memory relation store for exercising the diff engine.
type memAssoc[R comparable] struct {
	rows      map[R]struct{}
	inserts   int
	deletes   int
	insertErr error
}

func newMemAssoc[R comparable](initial ...R) *memAssoc[R] {
	rows := make(map[R]struct{}, len(initial))
	for _, rec := range initial {
		rows[rec] = struct{}{}
	}
	return &memAssoc[R]{rows: rows}
}

func (m *memAssoc[R]) assoc() staff.Assoc[R] {
	return staff.Assoc[R]{
		Load: func(ctx context.Context, q db.Querier, userID int64) ([]R, error) {
			out := make([]R, 0, len(m.rows))
			for rec := range m.rows {
				out = append(out, rec)
			}
			return out, nil
		},
		Insert: func(ctx context.Context, q db.Querier, userID int64, rec R) error {
			if m.insertErr != nil {
				return m.insertErr
			}
			m.inserts++
			m.rows[rec] = struct{}{}
			return nil
		},
		Delete: func(ctx context.Context, q db.Querier, userID int64, rec R) error {
			m.deletes++
			delete(m.rows, rec)
			return nil
		},
	}
}

func (m *memAssoc[R]) stored() map[R]struct{} {
	return m.rows
}

func TestReconcileAppliesMinimalDelta(t *testing.T) {
	a := staff.ContactValue{Contact: 1, Value: "alpha@example.test"}
	b := staff.ContactValue{Contact: 1, Value: "beta@example.test"}
	c := staff.ContactValue{Contact: 2, Value: "+123456"}

	store := newMemAssoc(a, b)
	err := staff.Reconcile(context.Background(), nil, 10, []staff.ContactValue{b, c}, store.assoc())
	require.NoError(t, err)

	require.Equal(t, map[staff.ContactValue]struct{}{b: {}, c: {}}, store.stored())
	require.Equal(t, 1, store.inserts, "only the new record inserts")
	require.Equal(t, 1, store.deletes, "only the stale record deletes")
}

func TestReconcileIsIdempotent(t *testing.T) {
	g1 := staff.Membership{Group: 1}
	g2 := staff.Membership{Group: 2}
	g3 := staff.Membership{Group: 3}
	desired := []staff.Membership{g2, g3}

	store := newMemAssoc(g1, g2)
	require.NoError(t, staff.Reconcile(context.Background(), nil, 10, desired, store.assoc()))
	require.Equal(t, map[staff.Membership]struct{}{g2: {}, g3: {}}, store.stored())

	store.inserts, store.deletes = 0, 0
	require.NoError(t, staff.Reconcile(context.Background(), nil, 10, desired, store.assoc()))
	require.Zero(t, store.inserts, "second pass inserts nothing")
	require.Zero(t, store.deletes, "second pass deletes nothing")
	require.Equal(t, map[staff.Membership]struct{}{g2: {}, g3: {}}, store.stored())
}

func TestReconcileDeduplicatesDesired(t *testing.T) {
	p := staff.StringProperty{Property: 4, Value: "blue", Lang: 0}

	store := newMemAssoc[staff.StringProperty]()
	err := staff.Reconcile(context.Background(), nil, 10, []staff.StringProperty{p, p, p}, store.assoc())
	require.NoError(t, err)
	require.Equal(t, 1, store.inserts)
}

func TestReconcileDistinguishesLang(t *testing.T) {
	plain := staff.StringProperty{Property: 4, Value: "blue"}
	tagged := staff.StringProperty{Property: 4, Value: "blue", Lang: 2}

	store := newMemAssoc(plain)
	err := staff.Reconcile(context.Background(), nil, 10, []staff.StringProperty{plain, tagged}, store.assoc())
	require.NoError(t, err)

	require.Equal(t, map[staff.StringProperty]struct{}{plain: {}, tagged: {}}, store.stored())
	require.Equal(t, 1, store.inserts)
	require.Zero(t, store.deletes)
}

func TestReconcileEmptyDesiredClearsAll(t *testing.T) {
	store := newMemAssoc(staff.UserReference{Property: 1, Child: 2}, staff.UserReference{Property: 1, Child: 3})
	err := staff.Reconcile(context.Background(), nil, 10, nil, store.assoc())
	require.NoError(t, err)
	require.Empty(t, store.stored())
}

func TestReconcileInsertErrorAborts(t *testing.T) {
	boom := errors.New("fk violation")
	store := newMemAssoc[staff.Membership]()
	store.insertErr = boom

	err := staff.Reconcile(context.Background(), nil, 10, []staff.Membership{{Group: 9}}, store.assoc())
	require.ErrorIs(t, err, boom)
}
