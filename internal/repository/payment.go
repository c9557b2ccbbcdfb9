package repository

import (
	"context"
	"errors"

	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/softdelete"

	"gorm.io/gorm"
)

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByProviderRef(ctx context.Context, ref string) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uint) ([]models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, payment *models.Payment) error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository returns a new PaymentRepository implementation.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("payment already recorded for this provider reference", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).First(&payment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Payment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &payment, nil
}

// GetByProviderRef looks up a payment by the external processor reference.
// Used for webhook idempotency; returns nil, nil when unseen.
func (r *paymentRepository) GetByProviderRef(ctx context.Context, ref string) (*models.Payment, error) {
	var payment models.Payment
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("provider_ref = ?", ref).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return payments, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Save(payment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, payment *models.Payment) error {
	if err := softdelete.Delete(ctx, r.db, payment); err != nil {
		observability.LifecycleOps.WithLabelValues("payment", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("payment", "delete", "ok").Inc()
	return nil
}
