package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/staffdir/staffdir/internal/authz"
	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/platform/httpx"
)

type stubRules struct {
	rules []authz.Rule
	err   error
}

func (s *stubRules) MatchingRuleExists(ctx context.Context, q db.Querier, method authz.Method, resource authz.Resource, groups []int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	held := make(map[int64]struct{}, len(groups))
	for _, g := range groups {
		held[g] = struct{}{}
	}
	for _, rule := range s.rules {
		if rule.Method != method || rule.Resource != resource {
			continue
		}
		if _, ok := held[rule.Group]; ok {
			return true, nil
		}
	}
	return false, nil
}

type countingDenials struct {
	resources []string
}

func (c *countingDenials) CountDenial(resource string) {
	c.resources = append(c.resources, resource)
}

func TestAuthorizeEmptyRuleSetDenies(t *testing.T) {
	gate := authz.NewService(&stubRules{})

	err := gate.Authorize(context.Background(), nil, authz.ResourceContact, authz.MethodGet, []int64{777})
	require.ErrorIs(t, err, httpx.ErrPermissionDenied)
}

func TestAuthorizeMatchingRuleAllows(t *testing.T) {
	gate := authz.NewService(&stubRules{rules: []authz.Rule{
		{ID: 1, Method: authz.MethodGet, Resource: authz.ResourceContact, Group: 777},
	}})

	err := gate.Authorize(context.Background(), nil, authz.ResourceContact, authz.MethodGet, []int64{777})
	require.NoError(t, err)
}

func TestAuthorizeWrongGroupDenies(t *testing.T) {
	gate := authz.NewService(&stubRules{rules: []authz.Rule{
		{ID: 1, Method: authz.MethodGet, Resource: authz.ResourceContact, Group: 777},
	}})

	err := gate.Authorize(context.Background(), nil, authz.ResourceContact, authz.MethodGet, []int64{999})
	require.ErrorIs(t, err, httpx.ErrPermissionDenied)
}

func TestAuthorizeUnrelatedResourceDenies(t *testing.T) {
	gate := authz.NewService(&stubRules{rules: []authz.Rule{
		{ID: 1, Method: authz.MethodGet, Resource: authz.ResourceStatus, Group: 777},
		{ID: 2, Method: authz.MethodPost, Resource: authz.ResourceContact, Group: 777},
	}})

	err := gate.Authorize(context.Background(), nil, authz.ResourceContact, authz.MethodGet, []int64{777})
	require.ErrorIs(t, err, httpx.ErrPermissionDenied)
}

func TestAuthorizeAnyHeldGroupSuffices(t *testing.T) {
	gate := authz.NewService(&stubRules{rules: []authz.Rule{
		{ID: 1, Method: authz.MethodPut, Resource: authz.ResourceUser, Group: 12},
	}})

	err := gate.Authorize(context.Background(), nil, authz.ResourceUser, authz.MethodPut, []int64{3, 12, 40})
	require.NoError(t, err)
}

func TestAuthorizeStoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	gate := authz.NewService(&stubRules{err: boom})

	err := gate.Authorize(context.Background(), nil, authz.ResourceUser, authz.MethodGet, []int64{1})
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, httpx.ErrPermissionDenied)
}

func TestAuthorizeCountsDenials(t *testing.T) {
	denials := &countingDenials{}
	gate := authz.NewService(&stubRules{}).WithDenialCounter(denials)

	_ = gate.Authorize(context.Background(), nil, authz.ResourceGroup, authz.MethodDelete, []int64{5})
	_ = gate.Authorize(context.Background(), nil, authz.ResourceGroup, authz.MethodDelete, []int64{5})

	require.Equal(t, []string{"GROUP", "GROUP"}, denials.resources)
}
