package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for reference entities.
type Repository struct{}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{}
}

// ListNamed returns all rows of a named-entity table ordered by name.
func (r *Repository) ListNamed(ctx context.Context, q db.Querier, kind Kind) ([]Named, error) {
	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, kind.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Named
	for rows.Next() {
		var n Named
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNamed fetches one named entity by id.
func (r *Repository) GetNamed(ctx context.Context, q db.Querier, kind Kind, id int64) (Named, error) {
	var n Named
	err := q.QueryRow(ctx, fmt.Sprintf(`SELECT id, name FROM %s WHERE id = $1`, kind.table), id).Scan(&n.ID, &n.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Named{}, fmt.Errorf("directory: %s %d: %w", kind.table, id, httpx.ErrNotFound)
		}
		return Named{}, err
	}
	return n, nil
}

// CreateNamed inserts a named entity.
func (r *Repository) CreateNamed(ctx context.Context, q db.Querier, kind Kind, name string) (Named, error) {
	var n Named
	err := q.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id, name`, kind.table), name,
	).Scan(&n.ID, &n.Name)
	if err != nil {
		return Named{}, classify(kind.table, err)
	}
	return n, nil
}

// UpdateNamed renames a named entity.
func (r *Repository) UpdateNamed(ctx context.Context, q db.Querier, kind Kind, id int64, name string) (Named, error) {
	var n Named
	err := q.QueryRow(ctx,
		fmt.Sprintf(`UPDATE %s SET name = $2 WHERE id = $1 RETURNING id, name`, kind.table), id, name,
	).Scan(&n.ID, &n.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Named{}, fmt.Errorf("directory: %s %d: %w", kind.table, id, httpx.ErrNotFound)
		}
		return Named{}, classify(kind.table, err)
	}
	return n, nil
}

// DeleteNamed removes a named entity.
func (r *Repository) DeleteNamed(ctx context.Context, q db.Querier, kind Kind, id int64) error {
	tag, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind.table), id)
	if err != nil {
		return classify(kind.table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("directory: %s %d: %w", kind.table, id, httpx.ErrNotFound)
	}
	return nil
}

// ListLanguages returns all languages ordered by code.
func (r *Repository) ListLanguages(ctx context.Context, q db.Querier) ([]Language, error) {
	rows, err := q.Query(ctx, `SELECT id, code, name FROM languages ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Language
	for rows.Next() {
		var l Language
		if err := rows.Scan(&l.ID, &l.Code, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CreateLanguage inserts a language.
func (r *Repository) CreateLanguage(ctx context.Context, q db.Querier, code, name string) (Language, error) {
	var l Language
	err := q.QueryRow(ctx,
		`INSERT INTO languages (code, name) VALUES ($1, $2) RETURNING id, code, name`, code, name,
	).Scan(&l.ID, &l.Code, &l.Name)
	if err != nil {
		return Language{}, classify("languages", err)
	}
	return l, nil
}

// DeleteLanguage removes a language.
func (r *Repository) DeleteLanguage(ctx context.Context, q db.Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM languages WHERE id = $1`, id)
	if err != nil {
		return classify("languages", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("directory: languages %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// ListGroups returns all groups ordered by id.
func (r *Repository) ListGroups(ctx context.Context, q db.Querier) ([]Group, error) {
	rows, err := q.Query(ctx, `SELECT id, name, COALESCE(parent, 0) FROM groups ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Parent); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CreateGroup inserts a group, optionally under a parent.
func (r *Repository) CreateGroup(ctx context.Context, q db.Querier, name string, parent int64) (Group, error) {
	var g Group
	err := q.QueryRow(ctx,
		`INSERT INTO groups (name, parent) VALUES ($1, NULLIF($2, 0)) RETURNING id, name, COALESCE(parent, 0)`,
		name, parent,
	).Scan(&g.ID, &g.Name, &g.Parent)
	if err != nil {
		return Group{}, classify("groups", err)
	}
	return g, nil
}

// DeleteGroup removes a group.
func (r *Repository) DeleteGroup(ctx context.Context, q db.Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return classify("groups", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("directory: groups %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// ListPoints returns the points of one directory.
func (r *Repository) ListPoints(ctx context.Context, q db.Querier, directoryID int64) ([]Point, error) {
	rows, err := q.Query(ctx,
		`SELECT id, directory_id, name FROM points WHERE directory_id = $1 ORDER BY id`, directoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.ID, &p.Directory, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePoint inserts a point under a directory.
func (r *Repository) CreatePoint(ctx context.Context, q db.Querier, directoryID int64, name string) (Point, error) {
	var p Point
	err := q.QueryRow(ctx,
		`INSERT INTO points (directory_id, name) VALUES ($1, $2) RETURNING id, directory_id, name`,
		directoryID, name,
	).Scan(&p.ID, &p.Directory, &p.Name)
	if err != nil {
		return Point{}, classify("points", err)
	}
	return p, nil
}

// DeletePoint removes a point from a directory.
func (r *Repository) DeletePoint(ctx context.Context, q db.Querier, directoryID, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM points WHERE id = $1 AND directory_id = $2`, id, directoryID)
	if err != nil {
		return classify("points", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("directory: points %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// classify turns store constraint rejections into the shared taxonomy.
func classify(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("directory: %s: duplicate: %w", table, httpx.ErrValidation)
		case "23503":
			return fmt.Errorf("directory: %s: referenced elsewhere: %w", table, httpx.ErrValidation)
		}
	}
	return err
}
