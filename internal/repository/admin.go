package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/softdelete"

	"gorm.io/gorm"
)

// moderatedEntity binds a URL entity name to its model constructors.
type moderatedEntity struct {
	one  func() softdelete.Record
	many func() interface{} // pointer to a slice of the model
}

// moderatedEntities is the set of record types the admin surface can list,
// restore and hard-delete. AdminAction is deliberately absent: audit rows
// have no lifecycle.
var moderatedEntities = map[string]moderatedEntity{
	"users": {
		one:  func() softdelete.Record { return &models.User{} },
		many: func() interface{} { return &[]models.User{} },
	},
	"categories": {
		one:  func() softdelete.Record { return &models.ServiceCategory{} },
		many: func() interface{} { return &[]models.ServiceCategory{} },
	},
	"services": {
		one:  func() softdelete.Record { return &models.Service{} },
		many: func() interface{} { return &[]models.Service{} },
	},
	"orders": {
		one:  func() softdelete.Record { return &models.Order{} },
		many: func() interface{} { return &[]models.Order{} },
	},
	"proposals": {
		one:  func() softdelete.Record { return &models.Proposal{} },
		many: func() interface{} { return &[]models.Proposal{} },
	},
	"payments": {
		one:  func() softdelete.Record { return &models.Payment{} },
		many: func() interface{} { return &[]models.Payment{} },
	},
	"reviews": {
		one:  func() softdelete.Record { return &models.Review{} },
		many: func() interface{} { return &[]models.Review{} },
	},
	"messages": {
		one:  func() softdelete.Record { return &models.Message{} },
		many: func() interface{} { return &[]models.Message{} },
	},
	"plans": {
		one:  func() softdelete.Record { return &models.SubscriptionPlan{} },
		many: func() interface{} { return &[]models.SubscriptionPlan{} },
	},
}

// AdminRepository exposes the moderation views and lifecycle operations the
// ordinary repositories hide: dead and unfiltered listings, restore and
// physical deletion, plus the append-only audit trail.
type AdminRepository interface {
	Entities() []string
	ListDead(ctx context.Context, entity string, limit, offset int) (interface{}, error)
	ListAll(ctx context.Context, entity string, limit, offset int) (interface{}, error)
	Get(ctx context.Context, entity string, id uint) (softdelete.Record, error)
	Restore(ctx context.Context, entity string, id uint) (bool, error)
	HardDelete(ctx context.Context, entity string, id uint) error
	PurgeDeadBefore(ctx context.Context, entity string, cutoff time.Time) (int64, error)
	RecordAction(ctx context.Context, action *models.AdminAction) error
	ListActions(ctx context.Context, limit, offset int) ([]models.AdminAction, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository returns a new AdminRepository implementation.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Entities() []string {
	names := make([]string, 0, len(moderatedEntities))
	for name := range moderatedEntities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func entityFor(name string) (moderatedEntity, error) {
	def, ok := moderatedEntities[name]
	if !ok {
		return moderatedEntity{}, models.NewValidationError(fmt.Sprintf("unknown entity %q", name))
	}
	return def, nil
}

func (r *adminRepository) list(ctx context.Context, entity string, scope func(*gorm.DB) *gorm.DB, limit, offset int) (interface{}, error) {
	def, err := entityFor(entity)
	if err != nil {
		return nil, err
	}
	dest := def.many()
	err = readDB(r.db).WithContext(ctx).Scopes(scope).
		Limit(clampLimit(limit)).Offset(offset).
		Find(dest).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return dest, nil
}

// ListDead returns only tombstoned records of the entity.
func (r *adminRepository) ListDead(ctx context.Context, entity string, limit, offset int) (interface{}, error) {
	return r.list(ctx, entity, softdelete.Dead, limit, offset)
}

// ListAll returns every record of the entity, alive and dead.
func (r *adminRepository) ListAll(ctx context.Context, entity string, limit, offset int) (interface{}, error) {
	return r.list(ctx, entity, softdelete.All, limit, offset)
}

// Get fetches a single record without the alive filter, so moderators can
// inspect tombstoned rows.
func (r *adminRepository) Get(ctx context.Context, entity string, id uint) (softdelete.Record, error) {
	def, err := entityFor(entity)
	if err != nil {
		return nil, err
	}
	rec := def.one()
	err = readDB(r.db).WithContext(ctx).Scopes(softdelete.All).First(rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(entity, id)
		}
		return nil, models.NewInternalError(err)
	}
	return rec, nil
}

// Restore clears the tombstone. The bool reports whether anything changed;
// restoring an alive record is a no-op, not an error.
func (r *adminRepository) Restore(ctx context.Context, entity string, id uint) (bool, error) {
	rec, err := r.Get(ctx, entity, id)
	if err != nil {
		return false, err
	}
	restored, err := softdelete.Restore(ctx, r.db, rec)
	if err != nil {
		observability.LifecycleOps.WithLabelValues(entity, "restore", "error").Inc()
		return false, models.NewInternalError(err)
	}
	outcome := "ok"
	if !restored {
		outcome = "noop"
	}
	observability.LifecycleOps.WithLabelValues(entity, "restore", outcome).Inc()
	return restored, nil
}

// HardDelete physically removes the record and cascades through the
// ownership graph. A protect edge aborts the whole transaction; the
// returned error unwraps to softdelete.ErrProtected.
func (r *adminRepository) HardDelete(ctx context.Context, entity string, id uint) error {
	rec, err := r.Get(ctx, entity, id)
	if err != nil {
		return err
	}
	if err := softdelete.HardDelete(ctx, r.db, rec); err != nil {
		if errors.Is(err, softdelete.ErrProtected) {
			observability.LifecycleOps.WithLabelValues(entity, "hard_delete", "protected").Inc()
			return err
		}
		observability.LifecycleOps.WithLabelValues(entity, "hard_delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues(entity, "hard_delete", "ok").Inc()
	return nil
}

// PurgeDeadBefore physically removes tombstoned records of the entity whose
// tombstone predates the cutoff. Cascades per record; a protect edge aborts
// the whole batch.
func (r *adminRepository) PurgeDeadBefore(ctx context.Context, entity string, cutoff time.Time) (int64, error) {
	def, err := entityFor(entity)
	if err != nil {
		return 0, err
	}
	count, err := softdelete.HardDeleteWhere(ctx, r.db, def.one(), func(q *gorm.DB) *gorm.DB {
		return q.Scopes(softdelete.Dead).Where("deleted_at < ?", cutoff)
	})
	if err != nil {
		if errors.Is(err, softdelete.ErrProtected) {
			observability.LifecycleOps.WithLabelValues(entity, "hard_delete", "protected").Inc()
			return 0, err
		}
		observability.LifecycleOps.WithLabelValues(entity, "hard_delete", "error").Inc()
		return 0, models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues(entity, "hard_delete", "ok").Add(float64(count))
	return count, nil
}

func (r *adminRepository) RecordAction(ctx context.Context, action *models.AdminAction) error {
	if err := r.db.WithContext(ctx).Create(action).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *adminRepository) ListActions(ctx context.Context, limit, offset int) ([]models.AdminAction, error) {
	var actions []models.AdminAction
	err := readDB(r.db).WithContext(ctx).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&actions).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return actions, nil
}
