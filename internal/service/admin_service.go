package service

import (
	"context"
	"encoding/json"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/repository"
)

// AdminService provides the moderation surface: dead-record views, restore,
// physical deletion, expiry sweeps and the audit trail.
type AdminService struct {
	adminRepo    repository.AdminRepository
	proposalSvc  *ProposalService
	subscription *SubscriptionService
}

// NewAdminService returns a new AdminService.
func NewAdminService(adminRepo repository.AdminRepository, proposalSvc *ProposalService, subscription *SubscriptionService) *AdminService {
	return &AdminService{
		adminRepo:    adminRepo,
		proposalSvc:  proposalSvc,
		subscription: subscription,
	}
}

// Entities lists the record types the moderation surface manages.
func (s *AdminService) Entities() []string {
	return s.adminRepo.Entities()
}

// ListDead returns tombstoned records of the entity.
func (s *AdminService) ListDead(ctx context.Context, entity string, limit, offset int) (interface{}, error) {
	return s.adminRepo.ListDead(ctx, entity, limit, offset)
}

// ListAll returns every record of the entity, alive and dead.
func (s *AdminService) ListAll(ctx context.Context, entity string, limit, offset int) (interface{}, error) {
	return s.adminRepo.ListAll(ctx, entity, limit, offset)
}

func (s *AdminService) audit(ctx context.Context, adminID uint, action, entity string, id uint, details map[string]interface{}) {
	var payload []byte
	if details != nil {
		payload, _ = json.Marshal(details)
	}
	// Audit writes are best-effort; a failed audit row never rolls back the
	// moderation action itself.
	_ = s.adminRepo.RecordAction(ctx, &models.AdminAction{
		AdminID:    adminID,
		Action:     action,
		TargetType: entity,
		TargetID:   id,
		Details:    payload,
	})
}

// Restore clears a record's tombstone and records the action. The returned
// bool is false when the record was already alive.
func (s *AdminService) Restore(ctx context.Context, adminID uint, entity string, id uint) (bool, error) {
	restored, err := s.adminRepo.Restore(ctx, entity, id)
	if err != nil {
		return false, err
	}
	s.audit(ctx, adminID, "restore", entity, id, map[string]interface{}{"noop": !restored})
	return restored, nil
}

// HardDelete physically removes a record, cascading through owned
// dependents. Protected dependents abort the operation; nothing is audited
// for a refused deletion.
func (s *AdminService) HardDelete(ctx context.Context, adminID uint, entity string, id uint) error {
	if err := s.adminRepo.HardDelete(ctx, entity, id); err != nil {
		return err
	}
	s.audit(ctx, adminID, "hard_delete", entity, id, nil)
	return nil
}

// Purge physically removes tombstoned records of the entity older than the
// retention cutoff.
func (s *AdminService) Purge(ctx context.Context, adminID uint, entity string, cutoff time.Time) (int64, error) {
	count, err := s.adminRepo.PurgeDeadBefore(ctx, entity, cutoff)
	if err != nil {
		return 0, err
	}
	s.audit(ctx, adminID, "purge", entity, 0, map[string]interface{}{
		"cutoff": cutoff.Format(time.RFC3339),
		"count":  count,
	})
	return count, nil
}

// SweepResult reports what an expiry sweep changed.
type SweepResult struct {
	ProposalsExpired     int64 `json:"proposals_expired"`
	SubscriptionsExpired int64 `json:"subscriptions_expired"`
}

// SweepExpirations persists derived expiry for overdue proposals and
// subscriptions. Expiry is never applied in the background; this endpoint
// is the only writer.
func (s *AdminService) SweepExpirations(ctx context.Context, adminID uint) (*SweepResult, error) {
	now := time.Now().UTC()

	proposals, err := s.proposalSvc.ExpireSweep(ctx, now)
	if err != nil {
		return nil, err
	}
	subscriptions, err := s.subscription.ExpireSweep(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{ProposalsExpired: proposals, SubscriptionsExpired: subscriptions}
	s.audit(ctx, adminID, "expire_sweep", "system", 0, map[string]interface{}{
		"proposals_expired":     proposals,
		"subscriptions_expired": subscriptions,
	})
	return result, nil
}

// Actions returns the audit trail, newest first.
func (s *AdminService) Actions(ctx context.Context, limit, offset int) ([]models.AdminAction, error) {
	return s.adminRepo.ListActions(ctx, limit, offset)
}

// StatusChoices exposes the static status vocabularies for admin tooling.
func (s *AdminService) StatusChoices() map[string][]models.Choice {
	return map[string][]models.Choice{
		"order":        models.OrderStatusChoices(),
		"proposal":     models.ProposalStatusChoices(),
		"subscription": models.SubscriptionStatusChoices(),
	}
}
