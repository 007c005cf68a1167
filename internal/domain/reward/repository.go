package reward

import (
	"context"

	"github.com/google/uuid"
)

// CatalogRepository defines the persistence contract for the reward catalog.
type CatalogRepository interface {
	// FindByID retrieves a reward by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Reward, error)

	// ListAll retrieves every catalog entry. No ordering guarantee.
	ListAll(ctx context.Context) ([]*Reward, error)

	// Count returns the number of catalog entries.
	Count(ctx context.Context) (int64, error)

	// Save persists a new reward.
	Save(ctx context.Context, r *Reward) error

	// Update persists changes to an existing reward with optimistic locking.
	Update(ctx context.Context, r *Reward) error

	// Delete removes a catalog entry. Historical claim snapshots are unaffected.
	Delete(ctx context.Context, id uuid.UUID) error
}
