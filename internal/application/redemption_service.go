package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
	"github.com/EcoSphere-Campus/service-rewards/internal/events"
	"github.com/EcoSphere-Campus/service-rewards/internal/saga"
)

// Machine-readable failure codes carried in redemption and usage results.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeOutOfStock         = "OUT_OF_STOCK"
	CodeInvalidState       = "INVALID_STATE"
	CodeExpired            = "EXPIRED"
	CodeInsufficientPoints = "INSUFFICIENT_POINTS"
	CodeConflict           = "CONFLICT"
)

// RedemptionResultDTO is the structured outcome of a redeem call. Domain
// failures are reported here rather than as errors so callers can render the
// message directly.
type RedemptionResultDTO struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	ErrorCode string            `json:"error_code,omitempty"`
	Claim     *ClaimedRewardDTO `json:"claim,omitempty"`
}

// UseResultDTO is the structured outcome of a use call.
type UseResultDTO struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// ClaimedRewardDTO is the API response representation of a ledger entry.
type ClaimedRewardDTO struct {
	ID        uuid.UUID         `json:"id"`
	Reward    RewardSnapshotDTO `json:"reward"`
	ClaimedAt time.Time         `json:"claimed_at"`
	Code      string            `json:"code,omitempty"`
	Status    string            `json:"status"`
	ExpiresAt time.Time         `json:"expires_at"`
	UsedAt    *time.Time        `json:"used_at,omitempty"`
}

// RewardSnapshotDTO is the claim-time copy of the redeemed reward.
type RewardSnapshotDTO struct {
	RewardID    uuid.UUID `json:"reward_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	RewardType  string    `json:"reward_type"`
	PointsCost  int64     `json:"points_cost"`
	Category    string    `json:"category"`
	Provider    string    `json:"provider"`
	Terms       []string  `json:"terms"`
	IsLimited   bool      `json:"is_limited"`
	Discount    string    `json:"discount,omitempty"`
}

// RedemptionService orchestrates redemption and usage of rewards.
type RedemptionService struct {
	catalog   rewardDomain.CatalogRepository
	ledger    claimDomain.LedgerRepository
	sagaSvc   *saga.RedemptionSagaService
	publisher events.Publisher
	logger    *zap.Logger

	// rewardLocks serializes the check-then-decrement critical section per
	// reward ID so two concurrent redemptions of the last unit cannot both
	// pass validation.
	rewardLocks sync.Map // uuid.UUID -> *sync.Mutex
}

// NewRedemptionService creates a new RedemptionService.
func NewRedemptionService(
	catalog rewardDomain.CatalogRepository,
	ledger claimDomain.LedgerRepository,
	sagaSvc *saga.RedemptionSagaService,
	publisher events.Publisher,
	logger *zap.Logger,
) *RedemptionService {
	return &RedemptionService{
		catalog:   catalog,
		ledger:    ledger,
		sagaSvc:   sagaSvc,
		publisher: publisher,
		logger:    logger,
	}
}

// Redeem executes one redemption transaction for the given user and reward.
// Validation order: existence, stock, catalog status, then the wallet debit
// inside the saga. Infrastructure failures return an error; domain failures
// return a result with Success=false.
func (s *RedemptionService) Redeem(ctx context.Context, userID, rewardID uuid.UUID) (*RedemptionResultDTO, error) {
	lock := s.lockFor(rewardID)
	lock.Lock()
	defer lock.Unlock()

	rw, err := s.catalog.FindByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &RedemptionResultDTO{
				Success:   false,
				Message:   "Reward not found",
				ErrorCode: CodeNotFound,
			}, nil
		}
		return nil, err
	}

	if err := rw.CheckRedeemable(); err != nil {
		return redemptionFailure(err), nil
	}

	now := time.Now().UTC()
	cl, err := s.sagaSvc.ExecuteRedemption(ctx, userID, rw, now)
	if err != nil {
		if isDomainFailure(err) {
			return redemptionFailure(err), nil
		}
		return nil, err
	}

	s.publishRedeemed(ctx, userID, cl)

	dto := toClaimedRewardDTO(cl)
	return &RedemptionResultDTO{
		Success: true,
		Message: fmt.Sprintf("Successfully redeemed %s!", cl.Reward().Name),
		Code:    cl.Code(),
		Claim:   &dto,
	}, nil
}

// Use transitions a claimed reward from active to used. A claim discovered
// past its expiry is transitioned to expired instead, and that side effect is
// persisted even though the call reports failure.
func (s *RedemptionService) Use(ctx context.Context, claimID uuid.UUID) (*UseResultDTO, error) {
	cl, err := s.ledger.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &UseResultDTO{
				Success:   false,
				Message:   "Claimed reward not found",
				ErrorCode: CodeNotFound,
			}, nil
		}
		return nil, err
	}

	now := time.Now().UTC()
	transitionErr := cl.MarkUsed(now)

	switch {
	case transitionErr == nil:
		cl.IncrementVersion()
		if err := s.ledger.Update(ctx, cl); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// A concurrent sweep won the race; the claim is no longer active.
				return &UseResultDTO{
					Success:   false,
					Message:   "This reward has already been used or expired",
					ErrorCode: CodeInvalidState,
				}, nil
			}
			return nil, err
		}

		s.publishUsed(ctx, cl, now)
		return &UseResultDTO{
			Success: true,
			Message: fmt.Sprintf("Successfully used %s!", cl.Reward().Name),
		}, nil

	case errors.Is(transitionErr, domain.ErrExpired):
		// Persist the lazy expiry before reporting failure.
		cl.IncrementVersion()
		if err := s.ledger.Update(ctx, cl); err != nil && !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		s.publishExpired(ctx, cl)
		return &UseResultDTO{
			Success:   false,
			Message:   "This reward has expired",
			ErrorCode: CodeExpired,
		}, nil

	default:
		return &UseResultDTO{
			Success:   false,
			Message:   "This reward has already been used or expired",
			ErrorCode: CodeInvalidState,
		}, nil
	}
}

// ListClaimed returns every ledger entry.
func (s *RedemptionService) ListClaimed(ctx context.Context) ([]ClaimedRewardDTO, error) {
	claims, err := s.ledger.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toClaimedRewardDTOs(claims), nil
}

// History returns the ledger sorted descending by claim time.
func (s *RedemptionService) History(ctx context.Context) ([]ClaimedRewardDTO, error) {
	claims, err := s.ledger.History(ctx)
	if err != nil {
		return nil, err
	}
	return toClaimedRewardDTOs(claims), nil
}

func (s *RedemptionService) lockFor(rewardID uuid.UUID) *sync.Mutex {
	v, _ := s.rewardLocks.LoadOrStore(rewardID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *RedemptionService) publishRedeemed(ctx context.Context, userID uuid.UUID, cl *claimDomain.ClaimedReward) {
	event := events.RewardRedeemedEvent{
		ClaimID:    cl.ID(),
		RewardID:   cl.Reward().RewardID,
		UserID:     userID,
		RewardName: cl.Reward().Name,
		RewardType: string(cl.Reward().RewardType),
		PointsCost: cl.Reward().PointsCost,
		Code:       cl.Code(),
		ExpiresAt:  cl.ExpiresAt(),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.RewardRedeemed, event); err != nil {
		s.logger.Warn("failed to publish reward redeemed event",
			zap.String("claim_id", cl.ID().String()),
			zap.Error(err),
		)
	}
}

func (s *RedemptionService) publishUsed(ctx context.Context, cl *claimDomain.ClaimedReward, usedAt time.Time) {
	event := events.RewardUsedEvent{
		ClaimID:    cl.ID(),
		RewardID:   cl.Reward().RewardID,
		RewardName: cl.Reward().Name,
		UsedAt:     usedAt,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.RewardUsed, event); err != nil {
		s.logger.Warn("failed to publish reward used event",
			zap.String("claim_id", cl.ID().String()),
			zap.Error(err),
		)
	}
}

func (s *RedemptionService) publishExpired(ctx context.Context, cl *claimDomain.ClaimedReward) {
	event := events.RewardExpiredEvent{
		ClaimID:    cl.ID(),
		RewardID:   cl.Reward().RewardID,
		RewardName: cl.Reward().Name,
		ExpiresAt:  cl.ExpiresAt(),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.RewardExpired, event); err != nil {
		s.logger.Warn("failed to publish reward expired event",
			zap.String("claim_id", cl.ID().String()),
			zap.Error(err),
		)
	}
}

// isDomainFailure reports whether err maps to a caller-facing result rather
// than an infrastructure error.
func isDomainFailure(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrOutOfStock) ||
		errors.Is(err, domain.ErrInvalidState) ||
		errors.Is(err, domain.ErrExpired) ||
		errors.Is(err, domain.ErrInsufficientPoints) ||
		errors.Is(err, domain.ErrConflict)
}

// redemptionFailure maps a domain error to a failed redemption result.
func redemptionFailure(err error) *RedemptionResultDTO {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		return &RedemptionResultDTO{
			Success:   false,
			Message:   "This reward is out of stock",
			ErrorCode: CodeOutOfStock,
		}
	case errors.Is(err, domain.ErrInvalidState):
		return &RedemptionResultDTO{
			Success:   false,
			Message:   "This reward is not available for redemption",
			ErrorCode: CodeInvalidState,
		}
	case errors.Is(err, domain.ErrInsufficientPoints):
		return &RedemptionResultDTO{
			Success:   false,
			Message:   "Not enough eco points!",
			ErrorCode: CodeInsufficientPoints,
		}
	case errors.Is(err, domain.ErrConflict):
		return &RedemptionResultDTO{
			Success:   false,
			Message:   "Redemption could not be completed, please try again",
			ErrorCode: CodeConflict,
		}
	default:
		return &RedemptionResultDTO{
			Success:   false,
			Message:   "Reward not found",
			ErrorCode: CodeNotFound,
		}
	}
}

// toClaimedRewardDTO maps a domain ClaimedReward to its DTO.
func toClaimedRewardDTO(cl *claimDomain.ClaimedReward) ClaimedRewardDTO {
	snap := cl.Reward()
	return ClaimedRewardDTO{
		ID: cl.ID(),
		Reward: RewardSnapshotDTO{
			RewardID:    snap.RewardID,
			Name:        snap.Name,
			Description: snap.Description,
			RewardType:  string(snap.RewardType),
			PointsCost:  snap.PointsCost,
			Category:    snap.Category,
			Provider:    snap.Provider,
			Terms:       snap.Terms,
			IsLimited:   snap.IsLimited,
			Discount:    snap.Discount,
		},
		ClaimedAt: cl.ClaimedAt(),
		Code:      cl.Code(),
		Status:    string(cl.Status()),
		ExpiresAt: cl.ExpiresAt(),
		UsedAt:    cl.UsedAt(),
	}
}

func toClaimedRewardDTOs(claims []*claimDomain.ClaimedReward) []ClaimedRewardDTO {
	dtos := make([]ClaimedRewardDTO, len(claims))
	for i, cl := range claims {
		dtos[i] = toClaimedRewardDTO(cl)
	}
	return dtos
}
