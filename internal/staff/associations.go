package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/platform/httpx"
)

// assocError classifies a store rejection. Foreign-key and unique-constraint
// violations surface as httpx.ErrAssociation; anything else propagates
// unchanged.
func assocError(relation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503", "23505":
			return fmt.Errorf("staff: %s: %w", relation, httpx.ErrAssociation)
		}
	}
	return err
}

// memberships reconciles the user_groups table. Equality is by group id
// only; membership is a set, not a keyed map.
var memberships = Assoc[Membership]{
	Load: func(ctx context.Context, q db.Querier, userID int64) ([]Membership, error) {
		rows, err := q.Query(ctx, `SELECT group_id FROM user_groups WHERE user_id = $1`, userID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []Membership
		for rows.Next() {
			var m Membership
			if err := rows.Scan(&m.Group); err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, rows.Err()
	},
	Insert: func(ctx context.Context, q db.Querier, userID int64, rec Membership) error {
		_, err := q.Exec(ctx,
			`INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2)`,
			userID, rec.Group)
		return assocError("membership", err)
	},
	Delete: func(ctx context.Context, q db.Querier, userID int64, rec Membership) error {
		_, err := q.Exec(ctx,
			`DELETE FROM user_groups WHERE user_id = $1 AND group_id = $2`,
			userID, rec.Group)
		return assocError("membership", err)
	},
}

// contactValues reconciles the user_contacts table. Equality is by
// (contact, value); deleting removes every stored row matching the pair.
var contactValues = Assoc[ContactValue]{
	Load: func(ctx context.Context, q db.Querier, userID int64) ([]ContactValue, error) {
		rows, err := q.Query(ctx, `SELECT contact_id, value FROM user_contacts WHERE user_id = $1`, userID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []ContactValue
		for rows.Next() {
			var c ContactValue
			if err := rows.Scan(&c.Contact, &c.Value); err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, rows.Err()
	},
	Insert: func(ctx context.Context, q db.Querier, userID int64, rec ContactValue) error {
		_, err := q.Exec(ctx,
			`INSERT INTO user_contacts (user_id, contact_id, value) VALUES ($1, $2, $3)`,
			userID, rec.Contact, rec.Value)
		return assocError("contact", err)
	},
	Delete: func(ctx context.Context, q db.Querier, userID int64, rec ContactValue) error {
		_, err := q.Exec(ctx,
			`DELETE FROM user_contacts WHERE user_id = $1 AND contact_id = $2 AND value = $3`,
			userID, rec.Contact, rec.Value)
		return assocError("contact", err)
	},
}

// stringProperties reconciles the user_properties table. Equality is by
// (property, value, lang); a missing language is stored as NULL and carried
// in the record as lang 0.
var stringProperties = Assoc[StringProperty]{
	Load: func(ctx context.Context, q db.Querier, userID int64) ([]StringProperty, error) {
		rows, err := q.Query(ctx,
			`SELECT property_id, value, COALESCE(lang_id, 0) FROM user_properties WHERE user_id = $1`, userID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []StringProperty
		for rows.Next() {
			var p StringProperty
			if err := rows.Scan(&p.Property, &p.Value, &p.Lang); err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, rows.Err()
	},
	Insert: func(ctx context.Context, q db.Querier, userID int64, rec StringProperty) error {
		_, err := q.Exec(ctx,
			`INSERT INTO user_properties (user_id, property_id, value, lang_id) VALUES ($1, $2, $3, NULLIF($4, 0))`,
			userID, rec.Property, rec.Value, rec.Lang)
		return assocError("property", err)
	},
	Delete: func(ctx context.Context, q db.Querier, userID int64, rec StringProperty) error {
		_, err := q.Exec(ctx,
			`DELETE FROM user_properties
			 WHERE user_id = $1 AND property_id = $2 AND value = $3 AND lang_id IS NOT DISTINCT FROM NULLIF($4, 0)`,
			userID, rec.Property, rec.Value, rec.Lang)
		return assocError("property", err)
	},
}

// userReferences reconciles the user_references table. Equality is by
// (property, child).
var userReferences = Assoc[UserReference]{
	Load: func(ctx context.Context, q db.Querier, userID int64) ([]UserReference, error) {
		rows, err := q.Query(ctx, `SELECT property_id, child_id FROM user_references WHERE user_id = $1`, userID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []UserReference
		for rows.Next() {
			var u UserReference
			if err := rows.Scan(&u.Property, &u.Child); err != nil {
				return nil, err
			}
			out = append(out, u)
		}
		return out, rows.Err()
	},
	Insert: func(ctx context.Context, q db.Querier, userID int64, rec UserReference) error {
		_, err := q.Exec(ctx,
			`INSERT INTO user_references (user_id, property_id, child_id) VALUES ($1, $2, $3)`,
			userID, rec.Property, rec.Child)
		return assocError("reference", err)
	},
	Delete: func(ctx context.Context, q db.Querier, userID int64, rec UserReference) error {
		_, err := q.Exec(ctx,
			`DELETE FROM user_references WHERE user_id = $1 AND property_id = $2 AND child_id = $3`,
			userID, rec.Property, rec.Child)
		return assocError("reference", err)
	},
}

// reconcileAll runs every relation kind for one user on the given querier.
// The kinds act on disjoint tables; order is fixed only for determinism.
func reconcileAll(ctx context.Context, q db.Querier, userID int64, desired Associations) error {
	if err := Reconcile(ctx, q, userID, desired.Memberships, memberships); err != nil {
		return err
	}
	if err := Reconcile(ctx, q, userID, desired.Contacts, contactValues); err != nil {
		return err
	}
	if err := Reconcile(ctx, q, userID, desired.Properties, stringProperties); err != nil {
		return err
	}
	return Reconcile(ctx, q, userID, desired.References, userReferences)
}
