package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for permission rules.
// All methods run on the caller-provided querier so a permission check shares
// the transaction of the operation it gates.
type Repository struct{}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{}
}

// MatchingRuleExists reports whether any stored rule grants (method, resource)
// to one of the given groups.
func (r *Repository) MatchingRuleExists(ctx context.Context, q db.Querier, method Method, resource Resource, groups []int64) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM permission_rules
		WHERE method = $1 AND resource = $2 AND group_id = ANY($3)
	)`
	var exists bool
	if err := q.QueryRow(ctx, query, string(method), string(resource), groups).Scan(&exists); err != nil {
		return false, fmt.Errorf("authz: rule lookup: %w", err)
	}
	return exists, nil
}

// ListRules returns all stored rules ordered by id.
func (r *Repository) ListRules(ctx context.Context, q db.Querier) ([]Rule, error) {
	rows, err := q.Query(ctx, `SELECT id, method, resource, group_id FROM permission_rules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rules []Rule
	for rows.Next() {
		var (
			rule             Rule
			method, resource string
		)
		if err := rows.Scan(&rule.ID, &method, &resource, &rule.Group); err != nil {
			return nil, err
		}
		if rule.Method, err = ParseMethod(method); err != nil {
			return nil, err
		}
		if rule.Resource, err = ParseResource(resource); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// CreateRule inserts a new rule and returns it with its generated id.
func (r *Repository) CreateRule(ctx context.Context, q db.Querier, method Method, resource Resource, group int64) (Rule, error) {
	rule := Rule{Method: method, Resource: resource, Group: group}
	err := q.QueryRow(ctx,
		`INSERT INTO permission_rules (method, resource, group_id) VALUES ($1, $2, $3) RETURNING id`,
		string(method), string(resource), group,
	).Scan(&rule.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Rule{}, fmt.Errorf("authz: group %d does not exist: %w", group, httpx.ErrValidation)
		}
		return Rule{}, err
	}
	return rule, nil
}

// DeleteRule removes a rule by id. Returns httpx.ErrNotFound when nothing was
// deleted.
func (r *Repository) DeleteRule(ctx context.Context, q db.Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM permission_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("authz: rule %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

var _ RuleStore = (*Repository)(nil)
