package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
)

// In-memory repositories mirror the GORM implementations, including the
// optimistic-lock semantics of Update. State lives for the process lifetime
// only; this is the reference behavior for the rewards core and the default
// backing for unit tests.

// MemoryCatalogRepository is an in-memory CatalogRepository.
type MemoryCatalogRepository struct {
	mu      sync.RWMutex
	rewards map[uuid.UUID]RewardModel
}

// NewMemoryCatalogRepository creates an empty in-memory catalog.
func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{rewards: make(map[uuid.UUID]RewardModel)}
}

// FindByID retrieves a reward by its unique ID.
func (r *MemoryCatalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*rewardDomain.Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	model, ok := r.rewards[id]
	if !ok {
		return nil, domain.NewNotFoundError("Reward", id.String())
	}
	return toRewardDomain(&model), nil
}

// ListAll retrieves every catalog entry.
func (r *MemoryCatalogRepository) ListAll(ctx context.Context) ([]*rewardDomain.Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rewards := make([]*rewardDomain.Reward, 0, len(r.rewards))
	for id := range r.rewards {
		model := r.rewards[id]
		rewards = append(rewards, toRewardDomain(&model))
	}
	return rewards, nil
}

// Count returns the number of catalog entries.
func (r *MemoryCatalogRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rewards)), nil
}

// Save persists a new reward.
func (r *MemoryCatalogRepository) Save(ctx context.Context, rw *rewardDomain.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rewards[rw.ID()] = toRewardModel(rw)
	return nil
}

// Update persists changes with the same version guard as the GORM repository.
func (r *MemoryCatalogRepository) Update(ctx context.Context, rw *rewardDomain.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rewards[rw.ID()]
	if !ok {
		return domain.NewNotFoundError("Reward", rw.ID().String())
	}
	if current.Version != rw.Version()-1 {
		return domain.NewConflictError("reward was modified by another transaction")
	}
	r.rewards[rw.ID()] = toRewardModel(rw)
	return nil
}

// Delete removes a catalog entry.
func (r *MemoryCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rewards[id]; !ok {
		return domain.NewNotFoundError("Reward", id.String())
	}
	delete(r.rewards, id)
	return nil
}

// MemoryLedgerRepository is an in-memory LedgerRepository.
type MemoryLedgerRepository struct {
	mu     sync.RWMutex
	claims map[uuid.UUID]ClaimModel
}

// NewMemoryLedgerRepository creates an empty in-memory ledger.
func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{claims: make(map[uuid.UUID]ClaimModel)}
}

// FindByID retrieves a claimed reward by its unique ID.
func (r *MemoryLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*claimDomain.ClaimedReward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	model, ok := r.claims[id]
	if !ok {
		return nil, domain.NewNotFoundError("ClaimedReward", id.String())
	}
	return toClaimDomain(&model), nil
}

// ListAll retrieves every ledger entry.
func (r *MemoryLedgerRepository) ListAll(ctx context.Context) ([]*claimDomain.ClaimedReward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(func(ClaimModel) bool { return true }), nil
}

// History retrieves every ledger entry sorted descending by claimedAt.
func (r *MemoryLedgerRepository) History(ctx context.Context) ([]*claimDomain.ClaimedReward, error) {
	r.mu.RLock()
	claims := r.snapshotLocked(func(ClaimModel) bool { return true })
	r.mu.RUnlock()

	sort.Slice(claims, func(i, j int) bool {
		return claims[i].ClaimedAt().After(claims[j].ClaimedAt())
	})
	return claims, nil
}

// FindActiveExpiredBefore retrieves active entries past their expiry.
func (r *MemoryLedgerRepository) FindActiveExpiredBefore(ctx context.Context, now time.Time) ([]*claimDomain.ClaimedReward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(func(m ClaimModel) bool {
		return m.Status == string(claimDomain.StatusActive) && m.ExpiresAt.Before(now)
	}), nil
}

// CountByStatus returns ledger entry counts grouped by status.
func (r *MemoryLedgerRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int64)
	for _, m := range r.claims {
		counts[m.Status]++
	}
	return counts, nil
}

// Save persists a new ledger entry.
func (r *MemoryLedgerRepository) Save(ctx context.Context, c *claimDomain.ClaimedReward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims[c.ID()] = toClaimModel(c)
	return nil
}

// Update persists a status transition with the optimistic version guard.
func (r *MemoryLedgerRepository) Update(ctx context.Context, c *claimDomain.ClaimedReward) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.claims[c.ID()]
	if !ok {
		return domain.NewNotFoundError("ClaimedReward", c.ID().String())
	}
	if current.Version != c.Version()-1 {
		return domain.NewConflictError("claimed reward was modified by another transaction")
	}
	r.claims[c.ID()] = toClaimModel(c)
	return nil
}

func (r *MemoryLedgerRepository) snapshotLocked(keep func(ClaimModel) bool) []*claimDomain.ClaimedReward {
	claims := make([]*claimDomain.ClaimedReward, 0, len(r.claims))
	for id := range r.claims {
		model := r.claims[id]
		if keep(model) {
			claims = append(claims, toClaimDomain(&model))
		}
	}
	return claims
}
