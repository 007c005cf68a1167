package reward

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
)

// Type classifies what a reward redeems into. The type drives both code
// issuance and the claimed-reward expiry offset.
type Type string

const (
	TypeCoupon      Type = "coupon"
	TypeBadge       Type = "badge"
	TypeMerchandise Type = "merchandise"
	TypeExperience  Type = "experience"
	TypeDigital     Type = "digital"
)

// IsValid reports whether t is one of the known reward types.
func (t Type) IsValid() bool {
	switch t {
	case TypeCoupon, TypeBadge, TypeMerchandise, TypeExperience, TypeDigital:
		return true
	}
	return false
}

// Status is the catalog-level gate, independent of stock.
type Status string

const (
	StatusAvailable Status = "available"
	StatusLocked    Status = "locked"
)

// Reward is the aggregate root for a catalog entry.
type Reward struct {
	id             uuid.UUID
	name           string
	description    string
	rewardType     Type
	pointsCost     int64
	category       string
	availability   int
	totalAvailable int
	expiryDate     time.Time
	image          string
	provider       string
	terms          []string
	isLimited      bool
	isNew          bool
	discount       string
	status         Status
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewReward creates a catalog entry. Availability starts at totalAvailable.
func NewReward(
	name, description string,
	rewardType Type,
	pointsCost int64,
	category string,
	totalAvailable int,
	expiryDate time.Time,
	image, provider string,
	terms []string,
	isLimited, isNew bool,
	discount string,
) (*Reward, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("reward name is required")
	}
	if !rewardType.IsValid() {
		return nil, domain.NewValidationError("invalid reward type: " + string(rewardType))
	}
	if pointsCost < 0 {
		return nil, domain.NewValidationError("points cost cannot be negative")
	}
	if totalAvailable < 0 {
		return nil, domain.NewValidationError("total available cannot be negative")
	}

	now := time.Now().UTC()
	return &Reward{
		id:             uuid.New(),
		name:           name,
		description:    description,
		rewardType:     rewardType,
		pointsCost:     pointsCost,
		category:       category,
		availability:   totalAvailable,
		totalAvailable: totalAvailable,
		expiryDate:     expiryDate,
		image:          image,
		provider:       provider,
		terms:          append([]string(nil), terms...),
		isLimited:      isLimited,
		isNew:          isNew,
		discount:       discount,
		status:         StatusAvailable,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Reward from persistence.
func Reconstruct(
	id uuid.UUID,
	name, description string,
	rewardType Type,
	pointsCost int64,
	category string,
	availability, totalAvailable int,
	expiryDate time.Time,
	image, provider string,
	terms []string,
	isLimited, isNew bool,
	discount string,
	status Status,
	version int64,
	createdAt, updatedAt time.Time,
) *Reward {
	return &Reward{
		id: id, name: name, description: description, rewardType: rewardType,
		pointsCost: pointsCost, category: category,
		availability: availability, totalAvailable: totalAvailable,
		expiryDate: expiryDate, image: image, provider: provider, terms: terms,
		isLimited: isLimited, isNew: isNew, discount: discount, status: status,
		version: version, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Getters.
func (r *Reward) ID() uuid.UUID         { return r.id }
func (r *Reward) Name() string          { return r.name }
func (r *Reward) Description() string   { return r.description }
func (r *Reward) RewardType() Type      { return r.rewardType }
func (r *Reward) PointsCost() int64     { return r.pointsCost }
func (r *Reward) Category() string      { return r.category }
func (r *Reward) Availability() int     { return r.availability }
func (r *Reward) TotalAvailable() int   { return r.totalAvailable }
func (r *Reward) ExpiryDate() time.Time { return r.expiryDate }
func (r *Reward) Image() string         { return r.image }
func (r *Reward) Provider() string      { return r.provider }
func (r *Reward) Terms() []string       { return r.terms }
func (r *Reward) IsLimited() bool       { return r.isLimited }
func (r *Reward) IsNew() bool           { return r.isNew }
func (r *Reward) Discount() string      { return r.discount }
func (r *Reward) Status() Status        { return r.status }
func (r *Reward) Version() int64        { return r.version }
func (r *Reward) CreatedAt() time.Time  { return r.createdAt }
func (r *Reward) UpdatedAt() time.Time  { return r.updatedAt }

// CheckRedeemable validates that a unit can be redeemed right now.
// The stock check deliberately precedes the status check: a locked reward with
// zero stock reports out-of-stock, not locked.
func (r *Reward) CheckRedeemable() error {
	if r.availability <= 0 {
		return domain.NewOutOfStockError(r.name)
	}
	if r.status != StatusAvailable {
		return &domain.DomainError{
			Err:     domain.ErrInvalidState,
			Message: "reward " + r.name + " is not available for redemption",
		}
	}
	return nil
}

// ReserveUnit decrements availability by one after re-validating. Callers must
// hold the per-reward critical section for the whole check-then-decrement.
func (r *Reward) ReserveUnit() error {
	if err := r.CheckRedeemable(); err != nil {
		return err
	}
	r.availability--
	r.updatedAt = time.Now().UTC()
	return nil
}

// RestoreUnit puts a reserved unit back (saga compensation path).
func (r *Reward) RestoreUnit() {
	r.availability++
	r.updatedAt = time.Now().UTC()
}

// SetAvailability applies a manual admin override, clamped at zero. Overrides
// above totalAvailable are allowed; restocks beyond the original print run are
// an observed admin-tooling behavior.
func (r *Reward) SetAvailability(n int) {
	if n < 0 {
		n = 0
	}
	r.availability = n
	r.updatedAt = time.Now().UTC()
}

// Lock gates the reward off from redemption without touching stock.
func (r *Reward) Lock() {
	r.status = StatusLocked
	r.updatedAt = time.Now().UTC()
}

// Unlock reopens the reward for redemption.
func (r *Reward) Unlock() {
	r.status = StatusAvailable
	r.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Reward) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}

// Snapshot is an immutable value copy of the catalog fields at claim time.
// Later catalog edits or removal never change a snapshot held by the ledger.
type Snapshot struct {
	RewardID    uuid.UUID `json:"reward_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	RewardType  Type      `json:"reward_type"`
	PointsCost  int64     `json:"points_cost"`
	Category    string    `json:"category"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Image       string    `json:"image,omitempty"`
	Provider    string    `json:"provider"`
	Terms       []string  `json:"terms,omitempty"`
	IsLimited   bool      `json:"is_limited"`
	Discount    string    `json:"discount,omitempty"`
}

// Snapshot captures the reward's current fields as an immutable copy.
func (r *Reward) Snapshot() Snapshot {
	return Snapshot{
		RewardID:    r.id,
		Name:        r.name,
		Description: r.description,
		RewardType:  r.rewardType,
		PointsCost:  r.pointsCost,
		Category:    r.category,
		ExpiryDate:  r.expiryDate,
		Image:       r.image,
		Provider:    r.provider,
		Terms:       append([]string(nil), r.terms...),
		IsLimited:   r.isLimited,
		Discount:    r.discount,
	}
}
