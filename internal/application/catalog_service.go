package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
)

var errInvalidExpiryDate = domain.NewValidationError("invalid expiry_date format (use RFC3339 or YYYY-MM-DD)")

// AddRewardRequest holds data to create a catalog entry.
type AddRewardRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	RewardType     string   `json:"reward_type" binding:"required"`
	PointsCost     int64    `json:"points_cost" binding:"min=0"`
	Category       string   `json:"category"`
	TotalAvailable int      `json:"total_available" binding:"min=0"`
	ExpiryDate     string   `json:"expiry_date"`
	Image          string   `json:"image"`
	Provider       string   `json:"provider"`
	Terms          []string `json:"terms"`
	IsLimited      bool     `json:"is_limited"`
	IsNew          bool     `json:"is_new"`
	Discount       string   `json:"discount"`
}

// SetAvailabilityRequest holds a manual stock override. Negative values are
// clamped to zero by the domain.
type SetAvailabilityRequest struct {
	Availability int `json:"availability"`
}

// RewardDTO is the API response representation of a catalog entry.
type RewardDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	RewardType     string    `json:"reward_type"`
	PointsCost     int64     `json:"points_cost"`
	Category       string    `json:"category"`
	Availability   int       `json:"availability"`
	TotalAvailable int       `json:"total_available"`
	ExpiryDate     time.Time `json:"expiry_date"`
	Image          string    `json:"image,omitempty"`
	Provider       string    `json:"provider"`
	Terms          []string  `json:"terms"`
	IsLimited      bool      `json:"is_limited"`
	IsNew          bool      `json:"is_new"`
	Discount       string    `json:"discount,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CatalogStatsDTO holds catalog and ledger statistics for the admin dashboard.
type CatalogStatsDTO struct {
	TotalRewards   int64            `json:"total_rewards"`
	ActiveRewards  int64            `json:"active_rewards"`
	ClaimsByStatus map[string]int64 `json:"claims_by_status"`
}

// CatalogService handles catalog management use cases (admin surface).
type CatalogService struct {
	catalog rewardDomain.CatalogRepository
	ledger  claimDomain.LedgerRepository
	logger  *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	catalog rewardDomain.CatalogRepository,
	ledger claimDomain.LedgerRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{catalog: catalog, ledger: ledger, logger: logger}
}

// ListRewards returns every catalog entry.
func (s *CatalogService) ListRewards(ctx context.Context) ([]RewardDTO, error) {
	rewards, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]RewardDTO, len(rewards))
	for i, rw := range rewards {
		dtos[i] = toRewardDTO(rw)
	}
	return dtos, nil
}

// AddReward creates a catalog entry with a fresh ID and availability equal to
// the total print run.
func (s *CatalogService) AddReward(ctx context.Context, req AddRewardRequest) (*RewardDTO, error) {
	var expiryDate time.Time
	if req.ExpiryDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiryDate)
		if err != nil {
			// The admin form also sends bare dates.
			parsed, err = time.Parse("2006-01-02", req.ExpiryDate)
			if err != nil {
				return nil, errInvalidExpiryDate
			}
		}
		expiryDate = parsed.UTC()
	}

	rw, err := rewardDomain.NewReward(
		req.Name,
		req.Description,
		rewardDomain.Type(req.RewardType),
		req.PointsCost,
		req.Category,
		req.TotalAvailable,
		expiryDate,
		req.Image,
		req.Provider,
		req.Terms,
		req.IsLimited,
		req.IsNew,
		req.Discount,
	)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.Save(ctx, rw); err != nil {
		return nil, err
	}

	s.logger.Info("reward added",
		zap.String("reward_id", rw.ID().String()),
		zap.String("name", rw.Name()),
		zap.Int("total_available", rw.TotalAvailable()),
	)
	dto := toRewardDTO(rw)
	return &dto, nil
}

// RemoveReward deletes a catalog entry. Claimed-reward snapshots referencing
// it remain untouched in the ledger.
func (s *CatalogService) RemoveReward(ctx context.Context, id uuid.UUID) error {
	if err := s.catalog.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("reward removed", zap.String("reward_id", id.String()))
	return nil
}

// SetAvailability applies a manual stock override, clamped at zero. Overrides
// above the original total are allowed.
func (s *CatalogService) SetAvailability(ctx context.Context, id uuid.UUID, n int) (*RewardDTO, error) {
	rw, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rw.SetAvailability(n)
	rw.IncrementVersion()
	if err := s.catalog.Update(ctx, rw); err != nil {
		return nil, err
	}

	s.logger.Info("reward availability overridden",
		zap.String("reward_id", id.String()),
		zap.Int("availability", rw.Availability()),
	)
	dto := toRewardDTO(rw)
	return &dto, nil
}

// GetStats returns catalog and ledger statistics (admin).
func (s *CatalogService) GetStats(ctx context.Context) (*CatalogStatsDTO, error) {
	rewards, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var active int64
	for _, rw := range rewards {
		if rw.Status() == rewardDomain.StatusAvailable && rw.Availability() > 0 {
			active++
		}
	}

	claimCounts, err := s.ledger.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &CatalogStatsDTO{
		TotalRewards:   int64(len(rewards)),
		ActiveRewards:  active,
		ClaimsByStatus: claimCounts,
	}, nil
}

// toRewardDTO maps a domain Reward to a RewardDTO.
func toRewardDTO(rw *rewardDomain.Reward) RewardDTO {
	return RewardDTO{
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
		CreatedAt:      rw.CreatedAt(),
		UpdatedAt:      rw.UpdatedAt(),
	}
}
