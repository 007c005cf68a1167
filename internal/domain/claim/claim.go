package claim

import (
	"time"

	"github.com/google/uuid"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
	"github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
)

// Status is the lifecycle state of a claimed reward. Transitions are
// monotonic: active may advance to used or expired, and nothing ever reverts.
type Status string

const (
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

// Expiry offsets per reward type, fixed at claim time.
const (
	couponValidity      = 30 * 24 * time.Hour
	experienceValidity  = 60 * 24 * time.Hour
	merchandiseValidity = 14 * 24 * time.Hour // pickup window
	digitalValidity     = 365 * 24 * time.Hour
)

// ValidityFor returns how long a fresh claim of the given reward type stays
// usable before it expires.
func ValidityFor(t reward.Type) time.Duration {
	switch t {
	case reward.TypeCoupon:
		return couponValidity
	case reward.TypeExperience:
		return experienceValidity
	case reward.TypeMerchandise:
		return merchandiseValidity
	case reward.TypeBadge, reward.TypeDigital:
		return digitalValidity
	default:
		return couponValidity
	}
}

// CodeRequired reports whether a redemption code is issued for the type.
// Badges and digital rewards attach directly to the profile and carry none.
func CodeRequired(t reward.Type) bool {
	switch t {
	case reward.TypeCoupon, reward.TypeExperience, reward.TypeMerchandise:
		return true
	}
	return false
}

// ClaimedReward is the aggregate root for one redemption in the ledger.
// Entries are permanent history: they mutate at most once (to used or
// expired) and are never deleted.
type ClaimedReward struct {
	id        uuid.UUID
	reward    reward.Snapshot
	claimedAt time.Time
	code      string
	status    Status
	expiresAt time.Time
	usedAt    *time.Time
	version   int64
}

// NewClaimedReward creates an active ledger entry for a successful redemption.
// The snapshot is the reward's state at claim time; expiresAt is computed once
// here and never recomputed. Claim IDs are time-ordered (UUIDv7) so the ledger
// assigns them monotonically.
func NewClaimedReward(snapshot reward.Snapshot, code string, now time.Time) (*ClaimedReward, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return &ClaimedReward{
		id:        id,
		reward:    snapshot,
		claimedAt: now,
		code:      code,
		status:    StatusActive,
		expiresAt: now.Add(ValidityFor(snapshot.RewardType)),
		version:   1,
	}, nil
}

// Reconstruct rebuilds a ClaimedReward from persistence.
func Reconstruct(
	id uuid.UUID,
	snapshot reward.Snapshot,
	claimedAt time.Time,
	code string,
	status Status,
	expiresAt time.Time,
	usedAt *time.Time,
	version int64,
) *ClaimedReward {
	return &ClaimedReward{
		id: id, reward: snapshot, claimedAt: claimedAt, code: code,
		status: status, expiresAt: expiresAt, usedAt: usedAt, version: version,
	}
}

// Getters.
func (c *ClaimedReward) ID() uuid.UUID           { return c.id }
func (c *ClaimedReward) Reward() reward.Snapshot { return c.reward }
func (c *ClaimedReward) ClaimedAt() time.Time    { return c.claimedAt }
func (c *ClaimedReward) Code() string            { return c.code }
func (c *ClaimedReward) Status() Status          { return c.status }
func (c *ClaimedReward) ExpiresAt() time.Time    { return c.expiresAt }
func (c *ClaimedReward) UsedAt() *time.Time      { return c.usedAt }
func (c *ClaimedReward) Version() int64          { return c.version }

// IsExpiredAt reports whether the claim's validity window has passed.
func (c *ClaimedReward) IsExpiredAt(now time.Time) bool {
	return now.After(c.expiresAt)
}

// MarkUsed transitions active → used. If the claim is already past its
// expiry the transition lands on expired instead and an Expired error is
// returned; the caller must still persist that side effect.
func (c *ClaimedReward) MarkUsed(now time.Time) error {
	if c.status != StatusActive {
		return domain.NewInvalidStateError(string(c.status), string(StatusUsed))
	}
	now = now.UTC()
	if c.IsExpiredAt(now) {
		c.status = StatusExpired
		return domain.NewExpiredError(c.id.String())
	}
	c.status = StatusUsed
	c.usedAt = &now
	return nil
}

// MarkExpired transitions active → expired. The precondition encodes the
// compare-and-swap discipline: a claim that has already advanced to used (or
// expired) is left alone.
func (c *ClaimedReward) MarkExpired() error {
	if c.status != StatusActive {
		return domain.NewInvalidStateError(string(c.status), string(StatusExpired))
	}
	c.status = StatusExpired
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (c *ClaimedReward) IncrementVersion() {
	c.version++
}
