package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
)

// ClaimModel is the GORM persistence model for the claimed_rewards table.
// The reward snapshot is stored as a jsonb blob: it is an immutable copy that
// is never queried field-by-field, only rehydrated whole.
type ClaimModel struct {
	ID        uuid.UUID             `gorm:"type:uuid;primaryKey"`
	Reward    rewardDomain.Snapshot `gorm:"type:jsonb;serializer:json;not null"`
	ClaimedAt time.Time             `gorm:"type:timestamptz;not null;index"`
	Code      string                `gorm:"type:varchar(50)"`
	Status    string                `gorm:"type:varchar(20);not null;default:'active';index"`
	ExpiresAt time.Time             `gorm:"type:timestamptz;not null;index"`
	UsedAt    *time.Time            `gorm:"type:timestamptz"`
	Version   int64                 `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM.
func (ClaimModel) TableName() string { return "claimed_rewards" }

// GormLedgerRepository is the GORM-based implementation of LedgerRepository.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GORM-based ledger repository.
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID retrieves a claimed reward by its unique ID.
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*claimDomain.ClaimedReward, error) {
	var model ClaimModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ClaimedReward", id.String())
		}
		return nil, err
	}
	return toClaimDomain(&model), nil
}

// ListAll retrieves every ledger entry.
func (r *GormLedgerRepository) ListAll(ctx context.Context) ([]*claimDomain.ClaimedReward, error) {
	var models []ClaimModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	return toClaimDomainSlice(models), nil
}

// History retrieves every ledger entry sorted descending by claimed_at.
func (r *GormLedgerRepository) History(ctx context.Context) ([]*claimDomain.ClaimedReward, error) {
	var models []ClaimModel
	if err := r.db.WithContext(ctx).Order("claimed_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toClaimDomainSlice(models), nil
}

// FindActiveExpiredBefore retrieves active entries past their expiry.
func (r *GormLedgerRepository) FindActiveExpiredBefore(ctx context.Context, now time.Time) ([]*claimDomain.ClaimedReward, error) {
	var models []ClaimModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(claimDomain.StatusActive), now).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toClaimDomainSlice(models), nil
}

// CountByStatus returns ledger entry counts grouped by status.
func (r *GormLedgerRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&ClaimModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new ledger entry.
func (r *GormLedgerRepository) Save(ctx context.Context, c *claimDomain.ClaimedReward) error {
	model := toClaimModel(c)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists a status transition with optimistic locking. The version
// guard means a sweep that lost the race to a concurrent use (or vice versa)
// affects zero rows and surfaces as a Conflict.
func (r *GormLedgerRepository) Update(ctx context.Context, c *claimDomain.ClaimedReward) error {
	model := toClaimModel(c)
	previousVersion := c.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&ClaimModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("*").
		Updates(&model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("claimed reward was modified by another transaction")
	}
	return nil
}

func toClaimDomain(m *ClaimModel) *claimDomain.ClaimedReward {
	return claimDomain.Reconstruct(
		m.ID, m.Reward, m.ClaimedAt, m.Code,
		claimDomain.Status(m.Status),
		m.ExpiresAt, m.UsedAt, m.Version,
	)
}

func toClaimDomainSlice(models []ClaimModel) []*claimDomain.ClaimedReward {
	claims := make([]*claimDomain.ClaimedReward, len(models))
	for i := range models {
		claims[i] = toClaimDomain(&models[i])
	}
	return claims
}

func toClaimModel(c *claimDomain.ClaimedReward) ClaimModel {
	return ClaimModel{
		ID:        c.ID(),
		Reward:    c.Reward(),
		ClaimedAt: c.ClaimedAt(),
		Code:      c.Code(),
		Status:    string(c.Status()),
		ExpiresAt: c.ExpiresAt(),
		UsedAt:    c.UsedAt(),
		Version:   c.Version(),
	}
}
