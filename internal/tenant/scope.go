package tenant

import (
	"gorm.io/gorm"
)

// Scope returns the agency predicate every tenant-owned query must intersect
// with. Super admins are unrestricted. A non-super-admin identity without an
// agency matches nothing; the scope must never degrade to unrestricted.
func Scope(id Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id.SuperAdmin {
			return db
		}
		if id.AgencyID == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("agency_id = ?", id.AgencyID)
	}
}

// ScopeOn is Scope with an explicit column, for queries that join tenant-owned
// tables under an alias.
func ScopeOn(id Identity, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id.SuperAdmin {
			return db
		}
		if id.AgencyID == 0 {
			return db.Where("1 = 0")
		}
		return db.Where(column+" = ?", id.AgencyID)
	}
}
