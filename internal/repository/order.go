package repository

import (
	"context"
	"errors"

	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/softdelete"

	"gorm.io/gorm"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByIDWithProposals(ctx context.Context, id uint) (*models.Order, error)
	ListByClient(ctx context.Context, clientID uint, limit, offset int) ([]models.Order, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, order *models.Order) error
	Restore(ctx context.Context, order *models.Order) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository returns a new OrderRepository implementation.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	defer observability.TrackQuery("select", "orders")()

	var order models.Order
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Order", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &order, nil
}

func (r *orderRepository) GetByIDWithProposals(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Preload("Proposals", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(softdelete.Alive).Order("created_at DESC")
		}).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Order", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &order, nil
}

func (r *orderRepository) ListByClient(ctx context.Context, clientID uint, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return orders, nil
}

// ListOpen returns pending orders providers can still bid on.
func (r *orderRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("status = ?", models.OrderStatusPending).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return orders, nil
}

func (r *orderRepository) Update(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, order *models.Order) error {
	if err := softdelete.Delete(ctx, r.db, order); err != nil {
		observability.LifecycleOps.WithLabelValues("order", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("order", "delete", "ok").Inc()
	return nil
}

func (r *orderRepository) Restore(ctx context.Context, order *models.Order) (bool, error) {
	restored, err := softdelete.Restore(ctx, r.db, order)
	if err != nil {
		observability.LifecycleOps.WithLabelValues("order", "restore", "error").Inc()
		return false, models.NewInternalError(err)
	}
	outcome := "ok"
	if !restored {
		outcome = "noop"
	}
	observability.LifecycleOps.WithLabelValues("order", "restore", outcome).Inc()
	return restored, nil
}
