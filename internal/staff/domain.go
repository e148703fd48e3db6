// Package staff manages user accounts and reconciles their multi-valued
// relations against client-supplied desired state.
package staff

import "time"

// User is a staff-directory account.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    int64     `json:"status,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership is one group membership. Memberships form a pure set keyed by
// group id.
type Membership struct {
	Group int64
}

// ContactValue is one contact-channel entry: a value stored under a contact
// kind (email, phone, messenger handle).
type ContactValue struct {
	Contact int64
	Value   string
}

// StringProperty is one string-valued property, optionally tagged with a
// language. Lang 0 means no language.
type StringProperty struct {
	Property int64
	Value    string
	Lang     int64
}

// UserReference is one user-valued property: a link from the owning user to
// a child user stored under a property.
type UserReference struct {
	Property int64
	Child    int64
}

// Associations is the full desired state for every relation kind of one
// user, as supplied by the client on update. Replacement is total: anything
// stored but absent here is removed.
type Associations struct {
	Memberships []Membership
	Contacts    []ContactValue
	Properties  []StringProperty
	References  []UserReference
}
