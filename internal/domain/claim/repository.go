package claim

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LedgerRepository defines the persistence contract for the redemption ledger.
// The ledger is append-mostly: entries are created once, transitioned at most
// once, and never deleted.
type LedgerRepository interface {
	// FindByID retrieves a claimed reward by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ClaimedReward, error)

	// ListAll retrieves every ledger entry.
	ListAll(ctx context.Context) ([]*ClaimedReward, error)

	// History retrieves every ledger entry sorted descending by claimedAt.
	History(ctx context.Context) ([]*ClaimedReward, error)

	// FindActiveExpiredBefore retrieves active entries whose expiresAt has
	// passed, for the expiry sweep.
	FindActiveExpiredBefore(ctx context.Context, now time.Time) ([]*ClaimedReward, error)

	// CountByStatus returns ledger entry counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new ledger entry.
	Save(ctx context.Context, c *ClaimedReward) error

	// Update persists a status transition with optimistic locking: the write
	// applies only if the stored version still matches the pre-transition
	// version, so concurrent writers (usage vs sweep) cannot clobber each
	// other. Returns a Conflict domain error when the guard fails.
	Update(ctx context.Context, c *ClaimedReward) error
}
