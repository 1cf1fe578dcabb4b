package tenant

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Identity is the resolved acting user for one request. AgencyID is zero for
// super admins, which are the only users allowed to exist without an agency.
type Identity struct {
	UserID     snowflake.ID
	Role       string
	AgencyID   snowflake.ID
	SuperAdmin bool
}

type identityKey struct{}

// WithIdentity stores the resolved identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity resolved by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}
	return id, true
}
