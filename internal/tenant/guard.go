package tenant

import (
	"errors"

	"github.com/bwmarrin/snowflake"
)

// ErrForbidden marks a row that exists but belongs to another agency.
var ErrForbidden = errors.New("forbidden")

// CanAccess reports whether the identity may read or mutate a row owned by
// the given agency. Handlers fetch by id first and call this afterwards, so a
// missing row stays a 404 while an out-of-scope row becomes a 403.
func CanAccess(id Identity, rowAgencyID snowflake.ID) bool {
	if id.SuperAdmin {
		return true
	}
	if id.AgencyID == 0 {
		return false
	}
	return id.AgencyID == rowAgencyID
}
