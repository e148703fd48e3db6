// Package authz decides whether an authenticated principal may perform an
// HTTP method against an administrable resource type.
package authz

import (
	"fmt"

	"github.com/staffdir/staffdir/internal/platform/httpx"
)

// Method is an HTTP method a permission rule can grant.
type Method string

// Methods a rule can grant.
const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// ParseMethod parses a stored method name strictly.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return Method(s), nil
	}
	return "", fmt.Errorf("authz: unknown method %q: %w", s, httpx.ErrValidation)
}

// Resource tags each administrable entity a rule can target.
type Resource string

// Resource tags.
const (
	ResourceUser       Resource = "USER"
	ResourceGroup      Resource = "GROUP"
	ResourceContact    Resource = "CONTACT"
	ResourceProperty   Resource = "PROPERTY"
	ResourceStatus     Resource = "STATUS"
	ResourceProvider   Resource = "PROVIDER"
	ResourceLanguage   Resource = "LANGUAGE"
	ResourceDirectory  Resource = "DIRECTORY"
	ResourcePoint      Resource = "POINT"
	ResourcePermission Resource = "PERMISSION"
	ResourcePublic     Resource = "PUBLIC"
	ResourceAdmin      Resource = "ADMIN"
)

var resources = map[Resource]struct{}{
	ResourceUser:       {},
	ResourceGroup:      {},
	ResourceContact:    {},
	ResourceProperty:   {},
	ResourceStatus:     {},
	ResourceProvider:   {},
	ResourceLanguage:   {},
	ResourceDirectory:  {},
	ResourcePoint:      {},
	ResourcePermission: {},
	ResourcePublic:     {},
	ResourceAdmin:      {},
}

// ParseResource parses a stored resource tag strictly.
func ParseResource(s string) (Resource, error) {
	if _, ok := resources[Resource(s)]; ok {
		return Resource(s), nil
	}
	return "", fmt.Errorf("authz: unknown resource %q: %w", s, httpx.ErrValidation)
}

// Rule grants (method, resource) to every principal holding the group. Any
// number of rules may exist for the same pair; authorization succeeds when at
// least one matches.
type Rule struct {
	ID       int64    `json:"id"`
	Method   Method   `json:"method"`
	Resource Resource `json:"resource"`
	Group    int64    `json:"group"`
}
