package authz

import (
	"context"
	"fmt"

	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/platform/httpx"
)

// RuleStore defines the permission-rule lookups the gate needs.
type RuleStore interface {
	MatchingRuleExists(ctx context.Context, q db.Querier, method Method, resource Resource, groups []int64) (bool, error)
}

// DenialCounter counts gate denials, typically for Prometheus.
type DenialCounter interface {
	CountDenial(resource string)
}

// Service is the permission gate.
type Service struct {
	rules   RuleStore
	denials DenialCounter
}

// NewService constructs a Service over the given rule store.
func NewService(rules RuleStore) *Service {
	return &Service{rules: rules}
}

// WithDenialCounter attaches a denial counter and returns the service.
func (s *Service) WithDenialCounter(counter DenialCounter) *Service {
	s.denials = counter
	return s
}

// Authorize decides whether a principal holding the given groups may perform
// method on resource. The decision is a single existence query evaluated
// fresh on every call: no caching, no admin short-circuit, no traversal of
// the group parent link. Run it on the same querier as the operation it
// gates so both observe one snapshot.
func (s *Service) Authorize(ctx context.Context, q db.Querier, resource Resource, method Method, groups []int64) error {
	ok, err := s.rules.MatchingRuleExists(ctx, q, method, resource, groups)
	if err != nil {
		return err
	}
	if !ok {
		if s.denials != nil {
			s.denials.CountDenial(string(resource))
		}
		return fmt.Errorf("authz: %s %s: %w", method, resource, httpx.ErrPermissionDenied)
	}
	return nil
}
