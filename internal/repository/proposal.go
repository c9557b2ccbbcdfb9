package repository

import (
	"context"
	"errors"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/softdelete"

	"gorm.io/gorm"
)

// ProposalRepository defines persistence operations for proposals.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uint) (*models.Proposal, error)
	ListByOrder(ctx context.Context, orderID uint) ([]models.Proposal, error)
	ListByProvider(ctx context.Context, providerID uint, limit, offset int) ([]models.Proposal, error)
	Update(ctx context.Context, proposal *models.Proposal) error
	Delete(ctx context.Context, proposal *models.Proposal) error
	CountPendingByProvider(ctx context.Context, providerID uint) (int64, error)
	DeclineSiblings(ctx context.Context, orderID, acceptedID uint) (int64, error)
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type proposalRepository struct {
	db *gorm.DB
}

// NewProposalRepository returns a new ProposalRepository implementation.
func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	if err := r.db.WithContext(ctx).Create(proposal).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *proposalRepository) GetByID(ctx context.Context, id uint) (*models.Proposal, error) {
	var proposal models.Proposal
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).First(&proposal, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Proposal", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &proposal, nil
}

func (r *proposalRepository) ListByOrder(ctx context.Context, orderID uint) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return proposals, nil
}

func (r *proposalRepository) ListByProvider(ctx context.Context, providerID uint, limit, offset int) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&proposals).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return proposals, nil
}

func (r *proposalRepository) Update(ctx context.Context, proposal *models.Proposal) error {
	if err := r.db.WithContext(ctx).Save(proposal).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *proposalRepository) Delete(ctx context.Context, proposal *models.Proposal) error {
	if err := softdelete.Delete(ctx, r.db, proposal); err != nil {
		observability.LifecycleOps.WithLabelValues("proposal", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("proposal", "delete", "ok").Inc()
	return nil
}

// CountPendingByProvider backs the per-plan proposal quota.
func (r *proposalRepository) CountPendingByProvider(ctx context.Context, providerID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Proposal{}).
		Scopes(softdelete.Alive).
		Where("provider_id = ? AND status = ?", providerID, models.ProposalStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// DeclineSiblings marks every other pending proposal on the order declined.
// Runs as one UPDATE so accepting a proposal never leaves the order with two
// live candidates.
func (r *proposalRepository) DeclineSiblings(ctx context.Context, orderID, acceptedID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Scopes(softdelete.Alive).
		Where("order_id = ? AND id <> ? AND status = ?", orderID, acceptedID, models.ProposalStatusPending).
		Update("status", models.ProposalStatusDeclined)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// ExpirePending persists the derived expired state for every pending
// proposal whose expiry passed. Invoked from the admin sweep endpoint, not
// a background loop.
func (r *proposalRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Scopes(softdelete.Alive).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.ProposalStatusPending, now).
		Update("status", models.ProposalStatusExpired)
	if res.Error != nil {
		observability.StatusTransitions.WithLabelValues("proposal", string(models.ProposalStatusExpired), "error").Inc()
		return 0, models.NewInternalError(res.Error)
	}
	observability.StatusTransitions.WithLabelValues("proposal", string(models.ProposalStatusExpired), "ok").Add(float64(res.RowsAffected))
	return res.RowsAffected, nil
}
