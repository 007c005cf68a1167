package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
)

// RewardModel is the GORM persistence model for the rewards table.
type RewardModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Description    string    `gorm:"type:text"`
	RewardType     string    `gorm:"type:varchar(20);not null;index"`
	PointsCost     int64     `gorm:"not null"`
	Category       string    `gorm:"type:varchar(50);index"`
	Availability   int       `gorm:"not null;default:0"`
	TotalAvailable int       `gorm:"not null;default:0"`
	ExpiryDate     time.Time `gorm:"type:timestamptz"`
	Image          string    `gorm:"type:varchar(512)"`
	Provider       string    `gorm:"type:varchar(255)"`
	Terms          []string  `gorm:"type:jsonb;serializer:json"`
	IsLimited      bool      `gorm:"not null;default:false"`
	IsNew          bool      `gorm:"not null;default:false"`
	Discount       string    `gorm:"type:varchar(50)"`
	Status         string    `gorm:"type:varchar(20);not null;default:'available'"`
	Version        int64     `gorm:"not null;default:1"`
	CreatedAt      time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt      time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (RewardModel) TableName() string { return "rewards" }

// GormCatalogRepository is the GORM-based implementation of CatalogRepository.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GORM-based catalog repository.
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindByID retrieves a reward by its unique ID.
func (r *GormCatalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*rewardDomain.Reward, error) {
	var model RewardModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reward", id.String())
		}
		return nil, err
	}
	return toRewardDomain(&model), nil
}

// ListAll retrieves every catalog entry.
func (r *GormCatalogRepository) ListAll(ctx context.Context) ([]*rewardDomain.Reward, error) {
	var models []RewardModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	rewards := make([]*rewardDomain.Reward, len(models))
	for i := range models {
		rewards[i] = toRewardDomain(&models[i])
	}
	return rewards, nil
}

// Count returns the number of catalog entries.
func (r *GormCatalogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RewardModel{}).Count(&count).Error
	return count, err
}

// Save persists a new reward.
func (r *GormCatalogRepository) Save(ctx context.Context, rw *rewardDomain.Reward) error {
	model := toRewardModel(rw)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists changes to an existing reward with optimistic locking.
func (r *GormCatalogRepository) Update(ctx context.Context, rw *rewardDomain.Reward) error {
	model := toRewardModel(rw)
	previousVersion := rw.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&RewardModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("*").
		Updates(&model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("reward was modified by another transaction")
	}
	return nil
}

// Delete removes a catalog entry. Ledger snapshots are copies and unaffected.
func (r *GormCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RewardModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Reward", id.String())
	}
	return nil
}

// toRewardDomain maps a RewardModel to the domain Reward aggregate.
func toRewardDomain(m *RewardModel) *rewardDomain.Reward {
	return rewardDomain.Reconstruct(
		m.ID, m.Name, m.Description,
		rewardDomain.Type(m.RewardType),
		m.PointsCost, m.Category,
		m.Availability, m.TotalAvailable,
		m.ExpiryDate, m.Image, m.Provider, m.Terms,
		m.IsLimited, m.IsNew, m.Discount,
		rewardDomain.Status(m.Status),
		m.Version, m.CreatedAt, m.UpdatedAt,
	)
}

// toRewardModel maps a domain Reward aggregate to a RewardModel.
func toRewardModel(rw *rewardDomain.Reward) RewardModel {
	return RewardModel{
		ID:             rw.ID(),
		Name:           rw.Name(),
		Description:    rw.Description(),
		RewardType:     string(rw.RewardType()),
		PointsCost:     rw.PointsCost(),
		Category:       rw.Category(),
		Availability:   rw.Availability(),
		TotalAvailable: rw.TotalAvailable(),
		ExpiryDate:     rw.ExpiryDate(),
		Image:          rw.Image(),
		Provider:       rw.Provider(),
		Terms:          rw.Terms(),
		IsLimited:      rw.IsLimited(),
		IsNew:          rw.IsNew(),
		Discount:       rw.Discount(),
		Status:         string(rw.Status()),
		Version:        rw.Version(),
		CreatedAt:      rw.CreatedAt(),
		UpdatedAt:      rw.UpdatedAt(),
	}
}
