package repository

import (
	"context"
	"errors"

	"taskhive/internal/cache"
	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/softdelete"

	"gorm.io/gorm"
)

// CatalogRepository defines persistence operations for the public service catalog.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]models.ServiceCategory, error)
	GetCategory(ctx context.Context, id uint) (*models.ServiceCategory, error)
	CreateCategory(ctx context.Context, category *models.ServiceCategory) error
	DeleteCategory(ctx context.Context, category *models.ServiceCategory) error
	ListServices(ctx context.Context, categoryID uint, limit, offset int) ([]models.Service, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)
	CreateService(ctx context.Context, service *models.Service) error
	UpdateService(ctx context.Context, service *models.Service) error
	DeleteService(ctx context.Context, service *models.Service) error
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository returns a new CatalogRepository implementation.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	var categories []models.ServiceCategory

	err := cache.Aside(ctx, cache.CategoryListKey, &categories, cache.CatalogTTL, func() error {
		defer observability.TrackQuery("select", "service_categories")()
		err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
			Order("name").Find(&categories).Error
		if err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *catalogRepository) GetCategory(ctx context.Context, id uint) (*models.ServiceCategory, error) {
	var category models.ServiceCategory
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Preload("Services", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(softdelete.Alive).Order("name")
		}).
		First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}

func (r *catalogRepository) CreateCategory(ctx context.Context, category *models.ServiceCategory) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Category already exists")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CategoryListKey)
	return nil
}

// DeleteCategory tombstones the category. Hard deletion is refused while
// services still reference it (protect edge); that path lives in the admin
// repository.
func (r *catalogRepository) DeleteCategory(ctx context.Context, category *models.ServiceCategory) error {
	if err := softdelete.Delete(ctx, r.db, category); err != nil {
		observability.LifecycleOps.WithLabelValues("category", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("category", "delete", "ok").Inc()
	cache.Invalidate(ctx, cache.CategoryListKey)
	return nil
}

func (r *catalogRepository) ListServices(ctx context.Context, categoryID uint, limit, offset int) ([]models.Service, error) {
	q := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive)
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	var services []models.Service
	if err := q.Limit(clampLimit(limit)).Offset(offset).Find(&services).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return services, nil
}

func (r *catalogRepository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var service models.Service
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Preload("Category").First(&service, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Service", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &service, nil
}

func (r *catalogRepository) CreateService(ctx context.Context, service *models.Service) error {
	if err := r.db.WithContext(ctx).Create(service).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CategoryListKey)
	return nil
}

func (r *catalogRepository) UpdateService(ctx context.Context, service *models.Service) error {
	if err := r.db.WithContext(ctx).Save(service).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *catalogRepository) DeleteService(ctx context.Context, service *models.Service) error {
	if err := softdelete.Delete(ctx, r.db, service); err != nil {
		observability.LifecycleOps.WithLabelValues("service", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("service", "delete", "ok").Inc()
	cache.Invalidate(ctx, cache.CategoryListKey)
	return nil
}
