package token

import "context"

// Account is the authenticated principal derived from a verified token. It
// lives for one request and is never persisted.
type Account struct {
	ID     int64
	Groups []int64
}

// InGroup reports whether the account holds the given group membership.
func (a Account) InGroup(id int64) bool {
	for _, g := range a.Groups {
		if g == id {
			return true
		}
	}
	return false
}

// Resolve turns a non-empty bearer-token string into an Account. The caller
// must reject the missing-token case before calling; Resolve itself fails
// with ErrInvalidToken on any decode error. Duplicate group claims collapse
// into a single membership.
func (c *Codec) Resolve(raw string) (Account, error) {
	claims, err := c.Verify(raw)
	if err != nil {
		return Account{}, err
	}
	seen := make(map[int64]struct{}, len(claims.Groups))
	groups := make([]int64, 0, len(claims.Groups))
	for _, g := range claims.Groups {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		groups = append(groups, g)
	}
	return Account{ID: claims.UserID, Groups: groups}, nil
}

type accountContextKey struct{}

// ContextWithAccount stores the authenticated account in context.
func ContextWithAccount(ctx context.Context, account Account) context.Context {
	return context.WithValue(ctx, accountContextKey{}, account)
}

// AccountFromContext extracts the authenticated account from context.
func AccountFromContext(ctx context.Context) (Account, bool) {
	account, ok := ctx.Value(accountContextKey{}).(Account)
	return account, ok
}
