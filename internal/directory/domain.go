// Package directory manages the flat reference entities the staff directory
// hangs user data off: groups, contact kinds, properties, languages,
// statuses, providers, and directories with their points.
package directory

import "github.com/staffdir/staffdir/internal/authz"

// Named is a simple id/name reference entity.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Kind identifies which named-entity table an operation targets.
type Kind struct {
	table    string
	resource authz.Resource
}

// The named-entity kinds. Table names are fixed here and never taken from
// request input.
var (
	Statuses    = Kind{table: "statuses", resource: authz.ResourceStatus}
	Providers   = Kind{table: "providers", resource: authz.ResourceProvider}
	Contacts    = Kind{table: "contacts", resource: authz.ResourceContact}
	Properties  = Kind{table: "properties", resource: authz.ResourceProperty}
	Directories = Kind{table: "directories", resource: authz.ResourceDirectory}
)

// Resource returns the authorization resource tag for this kind.
func (k Kind) Resource() authz.Resource {
	return k.resource
}

// Language is a language reference entity with a BCP-47 code.
type Language struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Group is a permission-bearing group. Parent is an advisory self link
// (0 for none); nothing resolves permissions through it.
type Group struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Parent int64  `json:"parent,omitempty"`
}

// Point is an entry of a directory.
type Point struct {
	ID        int64  `json:"id"`
	Directory int64  `json:"directory"`
	Name      string `json:"name"`
}
