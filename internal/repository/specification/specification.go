// Package specification holds the query filters shared by the Postgres and
// in-memory repositories. The in-memory store matches them by type, so every
// new filter needs a case there too.
package specification

import "gorm.io/gorm"

type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// ApplyAll chains specs onto db in order.
func ApplyAll(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}
