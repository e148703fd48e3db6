package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"

	"github.com/staffdir/staffdir/internal/audit"
	"github.com/staffdir/staffdir/internal/authz"
	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/platform/httpx"
	"github.com/staffdir/staffdir/internal/token"
)

// Service handles reference-entity business logic. Every operation runs
// inside one transaction bracketing the permission check and the statement
// it gates.
type Service struct {
	pool  *pgxpool.Pool
	gate  *authz.Service
	repo  *Repository
	audit *audit.Recorder
}

// NewService builds a Service instance.
func NewService(pool *pgxpool.Pool, gate *authz.Service, repo *Repository, recorder *audit.Recorder) *Service {
	return &Service{pool: pool, gate: gate, repo: repo, audit: recorder}
}

// ListNamed returns all entities of one kind.
func (s *Service) ListNamed(ctx context.Context, account token.Account, kind Kind) ([]Named, error) {
	var out []Named
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, kind.resource, authz.MethodGet, account.Groups); err != nil {
			return err
		}
		var err error
		out, err = s.repo.ListNamed(ctx, tx, kind)
		return err
	})
	return out, err
}

// GetNamed returns one entity by id.
func (s *Service) GetNamed(ctx context.Context, account token.Account, kind Kind, id int64) (Named, error) {
	var out Named
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, kind.resource, authz.MethodGet, account.Groups); err != nil {
			return err
		}
		var err error
		out, err = s.repo.GetNamed(ctx, tx, kind, id)
		return err
	})
	return out, err
}

// CreateNamed inserts a new entity.
func (s *Service) CreateNamed(ctx context.Context, account token.Account, kind Kind, name string) (Named, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Named{}, fmt.Errorf("directory: %s name required: %w", kind.table, httpx.ErrValidation)
	}
	var out Named
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, kind.resource, authz.MethodPost, account.Groups); err != nil {
			return err
		}
		var err error
		if out, err = s.repo.CreateNamed(ctx, tx, kind, name); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodPost), string(kind.resource), kind.table)
	})
	return out, err
}

// UpdateNamed renames an entity.
func (s *Service) UpdateNamed(ctx context.Context, account token.Account, kind Kind, id int64, name string) (Named, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Named{}, fmt.Errorf("directory: %s name required: %w", kind.table, httpx.ErrValidation)
	}
	var out Named
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, kind.resource, authz.MethodPut, account.Groups); err != nil {
			return err
		}
		var err error
		if out, err = s.repo.UpdateNamed(ctx, tx, kind, id, name); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodPut), string(kind.resource), kind.table)
	})
	return out, err
}

// DeleteNamed removes an entity.
func (s *Service) DeleteNamed(ctx context.Context, account token.Account, kind Kind, id int64) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, kind.resource, authz.MethodDelete, account.Groups); err != nil {
			return err
		}
		if err := s.repo.DeleteNamed(ctx, tx, kind, id); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodDelete), string(kind.resource), kind.table)
	})
}

// ValidateLanguageCode checks that a language code is a well-formed BCP-47
// tag and returns its canonical form.
func ValidateLanguageCode(code string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("directory: language code %q: %w", code, httpx.ErrValidation)
	}
	return tag.String(), nil
}

// ListLanguages returns all languages.
func (s *Service) ListLanguages(ctx context.Context, account token.Account) ([]Language, error) {
	var out []Language
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceLanguage, authz.MethodGet, account.Groups); err != nil {
			return err
		}
		var err error
		out, err = s.repo.ListLanguages(ctx, tx)
		return err
	})
	return out, err
}

// CreateLanguage inserts a language after validating its code.
func (s *Service) CreateLanguage(ctx context.Context, account token.Account, code, name string) (Language, error) {
	canonical, err := ValidateLanguageCode(code)
	if err != nil {
		return Language{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Language{}, fmt.Errorf("directory: language name required: %w", httpx.ErrValidation)
	}
	var out Language
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceLanguage, authz.MethodPost, account.Groups); err != nil {
			return err
		}
		if out, err = s.repo.CreateLanguage(ctx, tx, canonical, name); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodPost), string(authz.ResourceLanguage), "languages")
	})
	return out, err
}

// DeleteLanguage removes a language.
func (s *Service) DeleteLanguage(ctx context.Context, account token.Account, id int64) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceLanguage, authz.MethodDelete, account.Groups); err != nil {
			return err
		}
		if err := s.repo.DeleteLanguage(ctx, tx, id); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodDelete), string(authz.ResourceLanguage), "languages")
	})
}

// ListGroups returns all groups.
func (s *Service) ListGroups(ctx context.Context, account token.Account) ([]Group, error) {
	var out []Group
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceGroup, authz.MethodGet, account.Groups); err != nil {
			return err
		}
		var err error
		out, err = s.repo.ListGroups(ctx, tx)
		return err
	})
	return out, err
}

// CreateGroup inserts a group.
func (s *Service) CreateGroup(ctx context.Context, account token.Account, name string, parent int64) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, fmt.Errorf("directory: group name required: %w", httpx.ErrValidation)
	}
	var out Group
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceGroup, authz.MethodPost, account.Groups); err != nil {
			return err
		}
		var err error
		if out, err = s.repo.CreateGroup(ctx, tx, name, parent); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodPost), string(authz.ResourceGroup), "groups")
	})
	return out, err
}

// DeleteGroup removes a group.
func (s *Service) DeleteGroup(ctx context.Context, account token.Account, id int64) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceGroup, authz.MethodDelete, account.Groups); err != nil {
			return err
		}
		if err := s.repo.DeleteGroup(ctx, tx, id); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodDelete), string(authz.ResourceGroup), "groups")
	})
}

// ListPoints returns the points of one directory.
func (s *Service) ListPoints(ctx context.Context, account token.Account, directoryID int64) ([]Point, error) {
	var out []Point
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourcePoint, authz.MethodGet, account.Groups); err != nil {
			return err
		}
		if _, err := s.repo.GetNamed(ctx, tx, Directories, directoryID); err != nil {
			return err
		}
		var err error
		out, err = s.repo.ListPoints(ctx, tx, directoryID)
		return err
	})
	return out, err
}

// CreatePoint inserts a point under a directory.
func (s *Service) CreatePoint(ctx context.Context, account token.Account, directoryID int64, name string) (Point, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Point{}, fmt.Errorf("directory: point name required: %w", httpx.ErrValidation)
	}
	var out Point
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourcePoint, authz.MethodPost, account.Groups); err != nil {
			return err
		}
		if _, err := s.repo.GetNamed(ctx, tx, Directories, directoryID); err != nil {
			return err
		}
		var err error
		if out, err = s.repo.CreatePoint(ctx, tx, directoryID, name); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodPost), string(authz.ResourcePoint), "points")
	})
	return out, err
}

// DeletePoint removes a point.
func (s *Service) DeletePoint(ctx context.Context, account token.Account, directoryID, id int64) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourcePoint, authz.MethodDelete, account.Groups); err != nil {
			return err
		}
		if err := s.repo.DeletePoint(ctx, tx, directoryID, id); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodDelete), string(authz.ResourcePoint), "points")
	})
}
