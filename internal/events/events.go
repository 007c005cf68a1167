package events

import (
	"time"

	"github.com/google/uuid"
)

// Topic and event type names for the reward lifecycle stream.
const (
	TopicRewardEvents = "rewards.events"

	RewardRedeemed = "reward.redeemed"
	RewardUsed     = "reward.used"
	RewardExpired  = "reward.expired"

	EventSource = "service-rewards"
)

// RewardRedeemedEvent is published after a successful redemption transaction.
type RewardRedeemedEvent struct {
	ClaimID    uuid.UUID `json:"claim_id"`
	RewardID   uuid.UUID `json:"reward_id"`
	UserID     uuid.UUID `json:"user_id"`
	RewardName string    `json:"reward_name"`
	RewardType string    `json:"reward_type"`
	PointsCost int64     `json:"points_cost"`
	Code       string    `json:"code,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RewardUsedEvent is published when a claimed reward transitions to used.
type RewardUsedEvent struct {
	ClaimID    uuid.UUID `json:"claim_id"`
	RewardID   uuid.UUID `json:"reward_id"`
	RewardName string    `json:"reward_name"`
	UsedAt     time.Time `json:"used_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RewardExpiredEvent is published when a claimed reward transitions to
// expired, whether discovered lazily at use time or by the sweeper.
type RewardExpiredEvent struct {
	ClaimID    uuid.UUID `json:"claim_id"`
	RewardID   uuid.UUID `json:"reward_id"`
	RewardName string    `json:"reward_name"`
	ExpiresAt  time.Time `json:"expires_at"`
	OccurredAt time.Time `json:"occurred_at"`
}
