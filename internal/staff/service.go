package staff

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffdir/staffdir/internal/audit"
	"github.com/staffdir/staffdir/internal/authz"
	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/platform/httpx"
	"github.com/staffdir/staffdir/internal/token"
)

// ContactInput is one desired contact-channel entry.
type ContactInput struct {
	Contact int64  `json:"contact" validate:"required"`
	Value   string `json:"value" validate:"required"`
}

// PropertyInput is one desired string property. Lang is optional.
type PropertyInput struct {
	Property int64  `json:"property" validate:"required"`
	Value    string `json:"value" validate:"required"`
	Lang     int64  `json:"lang,omitempty"`
}

// ReferenceInput is one desired user-reference property. Value carries the
// child user id as a string, matching the wire format of string properties.
type ReferenceInput struct {
	Property int64  `json:"property" validate:"required"`
	Value    string `json:"value" validate:"required"`
}

// CreateInput carries a new user account.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Status   int64  `json:"status,omitempty"`
}

// UpdateInput carries the replacement user row plus the full desired state
// of every association kind.
type UpdateInput struct {
	Email      string           `json:"email" validate:"required,email"`
	Name       string           `json:"name" validate:"required"`
	Status     int64            `json:"status,omitempty"`
	IsActive   bool             `json:"is_active"`
	Groups     []int64          `json:"groups"`
	Contacts   []ContactInput   `json:"contacts" validate:"dive"`
	Properties []PropertyInput  `json:"properties" validate:"dive"`
	References []ReferenceInput `json:"references" validate:"dive"`
}

// Detail is a user together with its stored associations.
type Detail struct {
	User
	Groups     []int64          `json:"groups"`
	Contacts   []ContactInput   `json:"contacts"`
	Properties []PropertyInput  `json:"properties"`
	References []ReferenceInput `json:"references"`
}

// Service handles staff-user business logic. Every operation runs inside one
// transaction bracketing the permission check and the reads and writes it
// gates.
type Service struct {
	pool  *pgxpool.Pool
	gate  *authz.Service
	users *Repository
	audit *audit.Recorder
}

// NewService builds a Service instance.
func NewService(pool *pgxpool.Pool, gate *authz.Service, users *Repository, recorder *audit.Recorder) *Service {
	return &Service{pool: pool, gate: gate, users: users, audit: recorder}
}

// List returns all users.
func (s *Service) List(ctx context.Context, account token.Account) ([]User, error) {
	var out []User
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceUser, authz.MethodGet, account.Groups); err != nil {
			return err
		}
		var err error
		out, err = s.users.ListUsers(ctx, tx)
		return err
	})
	return out, err
}

// Get returns one user with its associations.
func (s *Service) Get(ctx context.Context, account token.Account, id int64) (Detail, error) {
	var detail Detail
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceUser, authz.MethodGet, account.Groups); err != nil {
			return err
		}
		user, err := s.users.GetUser(ctx, tx, id)
		if err != nil {
			return err
		}
		assoc, err := s.users.LoadAssociations(ctx, tx, id)
		if err != nil {
			return err
		}
		detail = toDetail(user, assoc)
		return nil
	})
	return detail, err
}

// Create inserts a new user account.
func (s *Service) Create(ctx context.Context, account token.Account, in CreateInput) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("staff: hash password: %w", err)
	}
	var user User
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceUser, authz.MethodPost, account.Groups); err != nil {
			return err
		}
		user, err = s.users.CreateUser(ctx, tx, in.Email, in.Name, string(hash), in.Status)
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodPost), string(authz.ResourceUser), fmt.Sprintf("/v1/users/%d", user.ID))
	})
	return user, err
}

// Update replaces the user row and reconciles every association kind, all
// inside one transaction: a failure in any kind discards the whole update.
func (s *Service) Update(ctx context.Context, account token.Account, id int64, in UpdateInput) (Detail, error) {
	// Reference values parse before any write; a malformed child id fails
	// the request while the store is still untouched.
	desired, err := desiredAssociations(in)
	if err != nil {
		return Detail{}, err
	}
	var detail Detail
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceUser, authz.MethodPut, account.Groups); err != nil {
			return err
		}
		user, err := s.users.UpdateUser(ctx, tx, id, in.Email, in.Name, in.Status, in.IsActive)
		if err != nil {
			return err
		}
		if err := reconcileAll(ctx, tx, id, desired); err != nil {
			return err
		}
		assoc, err := s.users.LoadAssociations(ctx, tx, id)
		if err != nil {
			return err
		}
		detail = toDetail(user, assoc)
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodPut), string(authz.ResourceUser), fmt.Sprintf("/v1/users/%d", id))
	})
	return detail, err
}

// Delete removes a user account.
func (s *Service) Delete(ctx context.Context, account token.Account, id int64) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.gate.Authorize(ctx, tx, authz.ResourceUser, authz.MethodDelete, account.Groups); err != nil {
			return err
		}
		if err := s.users.DeleteUser(ctx, tx, id); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, account.ID, string(authz.MethodDelete), string(authz.ResourceUser), fmt.Sprintf("/v1/users/%d", id))
	})
}

// desiredAssociations converts the wire payload into record sets. Reference
// child ids parse strictly from their string values.
func desiredAssociations(in UpdateInput) (Associations, error) {
	assoc := Associations{
		Memberships: make([]Membership, 0, len(in.Groups)),
		Contacts:    make([]ContactValue, 0, len(in.Contacts)),
		Properties:  make([]StringProperty, 0, len(in.Properties)),
		References:  make([]UserReference, 0, len(in.References)),
	}
	for _, g := range in.Groups {
		assoc.Memberships = append(assoc.Memberships, Membership{Group: g})
	}
	for _, c := range in.Contacts {
		assoc.Contacts = append(assoc.Contacts, ContactValue{Contact: c.Contact, Value: c.Value})
	}
	for _, p := range in.Properties {
		assoc.Properties = append(assoc.Properties, StringProperty{Property: p.Property, Value: p.Value, Lang: p.Lang})
	}
	for _, ref := range in.References {
		child, err := strconv.ParseInt(ref.Value, 10, 64)
		if err != nil {
			return Associations{}, fmt.Errorf("staff: reference value %q is not a user id: %w", ref.Value, httpx.ErrAssociation)
		}
		assoc.References = append(assoc.References, UserReference{Property: ref.Property, Child: child})
	}
	return assoc, nil
}

func toDetail(user User, assoc Associations) Detail {
	detail := Detail{
		User:       user,
		Groups:     make([]int64, 0, len(assoc.Memberships)),
		Contacts:   make([]ContactInput, 0, len(assoc.Contacts)),
		Properties: make([]PropertyInput, 0, len(assoc.Properties)),
		References: make([]ReferenceInput, 0, len(assoc.References)),
	}
	for _, m := range assoc.Memberships {
		detail.Groups = append(detail.Groups, m.Group)
	}
	for _, c := range assoc.Contacts {
		detail.Contacts = append(detail.Contacts, ContactInput{Contact: c.Contact, Value: c.Value})
	}
	for _, p := range assoc.Properties {
		detail.Properties = append(detail.Properties, PropertyInput{Property: p.Property, Value: p.Value, Lang: p.Lang})
	}
	for _, ref := range assoc.References {
		detail.References = append(detail.References, ReferenceInput{Property: ref.Property, Value: strconv.FormatInt(ref.Child, 10)})
	}
	return detail
}
