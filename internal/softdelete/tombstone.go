// Package softdelete implements the tombstone-based data lifecycle layer
// shared by all persistent marketplace entities. A tombstone is a nullable
// deleted_at timestamp: null means the row is alive, non-null records the
// instant it was logically deleted. Rows are only ever removed physically
// through HardDelete, which walks the registered ownership graph.
package softdelete

import (
	"time"

	"gorm.io/gorm"
)

// Tombstone is embedded by every model that participates in soft delete.
// It deliberately does not use gorm.DeletedAt: the alive-by-default view is
// an explicit scope (Alive) applied at each call site, never an implicit
// default query modifier.
type Tombstone struct {
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the record carries a tombstone.
func (t *Tombstone) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsAlive reports whether the record is not tombstoned.
func (t *Tombstone) IsAlive() bool {
	return t.DeletedAt == nil
}

func (t *Tombstone) mark(at time.Time) {
	t.DeletedAt = &at
}

func (t *Tombstone) clear() {
	t.DeletedAt = nil
}

// Record is satisfied by any model embedding Tombstone. The unexported
// methods keep the lifecycle operations the only code path that mutates
// deleted_at in memory.
type Record interface {
	IsDeleted() bool
	IsAlive() bool
	mark(at time.Time)
	clear()
}

// Alive scopes a query to records without a tombstone. This is the view
// ordinary application code must use.
func Alive(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// Dead scopes a query to tombstoned records only.
func Dead(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NOT NULL")
}

// All is the identity scope: every record regardless of tombstone state.
// It exists so opting out of Alive is visible at the call site.
func All(db *gorm.DB) *gorm.DB {
	return db
}
