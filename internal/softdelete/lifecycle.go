package softdelete

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"
)

// Delete tombstones a single record with the current time. The record must
// have its primary key set. Deleting an already-deleted record refreshes the
// timestamp; the observable alive/dead partition does not change. Dependents
// are never touched: soft delete does not cascade.
func Delete(ctx context.Context, db *gorm.DB, rec Record) error {
	now := time.Now().UTC()
	if err := db.WithContext(ctx).Model(rec).UpdateColumn("deleted_at", now).Error; err != nil {
		return err
	}
	rec.mark(now)
	return nil
}

// Restore clears the tombstone of a single record. It returns false without
// touching storage when the record is already alive, so callers can
// distinguish a real restore from an idempotent retry.
func Restore(ctx context.Context, db *gorm.DB, rec Record) (bool, error) {
	if rec.IsAlive() {
		return false, nil
	}
	if err := db.WithContext(ctx).Model(rec).UpdateColumn("deleted_at", nil).Error; err != nil {
		return false, err
	}
	rec.clear()
	return true, nil
}

// HardDelete physically removes a record and, transactionally, every
// dependent reachable over cascade edges of the ownership graph. A protect
// edge with surviving dependent rows aborts the whole transaction with an
// error wrapping ErrProtected; no partial cascade is ever applied.
func HardDelete(ctx context.Context, db *gorm.DB, rec Record) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := primaryKey(ctx, tx, rec)
		if err != nil {
			return err
		}
		return hardDeleteSet(tx, rec, []uint{id})
	})
}

// DeleteWhere tombstones every record matched by q, which must carry the
// model and any caller filters (e.g. db.Model(&Order{}).Where(...)). An
// empty match set is a no-op. Returns the number of rows tombstoned.
func DeleteWhere(ctx context.Context, q *gorm.DB) (int64, error) {
	res := q.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		UpdateColumn("deleted_at", time.Now().UTC())
	return res.RowsAffected, res.Error
}

// RestoreWhere clears tombstones on the dead subset of the records matched
// by q. Returns the number of rows actually restored; already-alive matches
// are left untouched and not counted.
func RestoreWhere(ctx context.Context, q *gorm.DB) (int64, error) {
	res := q.WithContext(ctx).
		Scopes(Dead).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		UpdateColumn("deleted_at", nil)
	return res.RowsAffected, res.Error
}

// HardDeleteWhere physically removes every record of model matched by
// filter, cascading per the ownership graph inside one transaction. Returns
// the number of owner rows removed.
func HardDeleteWhere(ctx context.Context, db *gorm.DB, model interface{}, filter func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(model)
		if filter != nil {
			q = filter(q)
		}
		var ids []uint
		if err := q.Pluck("id", &ids).Error; err != nil {
			return err
		}
		n = int64(len(ids))
		return hardDeleteSet(tx, model, ids)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// hardDeleteSet removes the given owner rows after resolving their edges.
// Dependent lookups run over all physical rows: a tombstoned dependent still
// protects its owner and still cascades.
func hardDeleteSet(tx *gorm.DB, model interface{}, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	for _, e := range edgesFor(model) {
		var depIDs []uint
		if err := tx.Model(e.Dependent).Where(e.ForeignKey+" IN ?", ids).Pluck("id", &depIDs).Error; err != nil {
			return err
		}
		if len(depIDs) == 0 {
			continue
		}
		switch e.Kind {
		case Protect:
			return &ProtectedError{
				Owner:     indirectType(model).Name(),
				Dependent: indirectType(e.Dependent).Name(),
				Count:     int64(len(depIDs)),
			}
		case Cascade:
			if err := hardDeleteSet(tx, e.Dependent, depIDs); err != nil {
				return err
			}
		}
	}
	return tx.Where("id IN ?", ids).Delete(model).Error
}

// primaryKey extracts the record's uint primary key via the parsed schema.
func primaryKey(ctx context.Context, db *gorm.DB, rec Record) (uint, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(rec); err != nil {
		return 0, err
	}
	field := stmt.Schema.PrioritizedPrimaryField
	if field == nil {
		return 0, fmt.Errorf("softdelete: %T has no primary key field", rec)
	}
	val, isZero := field.ValueOf(ctx, reflect.ValueOf(rec))
	if isZero {
		return 0, fmt.Errorf("softdelete: %T primary key is not set", rec)
	}
	id, ok := val.(uint)
	if !ok {
		return 0, fmt.Errorf("softdelete: %T primary key is %T, want uint", rec, val)
	}
	return id, nil
}
