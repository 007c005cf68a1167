package sweeper

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	"github.com/EcoSphere-Campus/service-rewards/internal/events"
)

// ExpirySweeper periodically expires active claims whose validity window has
// passed. It is owned by the service lifecycle: Run blocks until the context
// is cancelled, and SweepOnce is exposed so tests can step it deterministically
// instead of waiting on the wall clock.
type ExpirySweeper struct {
	ledger    claimDomain.LedgerRepository
	publisher events.Publisher
	interval  time.Duration
	logger    *zap.Logger
}

// NewExpirySweeper creates a sweeper scanning at the given interval.
func NewExpirySweeper(
	ledger claimDomain.LedgerRepository,
	publisher events.Publisher,
	interval time.Duration,
	logger *zap.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		ledger:    ledger,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
}

// Run ticks at the configured interval until ctx is cancelled.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx, time.Now().UTC()); err != nil {
				s.logger.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce expires every active claim past its expiry at the given instant
// and returns how many were transitioned. Idempotent: a second pass over the
// same ledger finds nothing to do. Claims that advanced to used between the
// scan and the write lose the optimistic guard and are skipped.
func (s *ExpirySweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.ledger.FindActiveExpiredBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, cl := range stale {
		if err := cl.MarkExpired(); err != nil {
			continue
		}
		cl.IncrementVersion()

		if err := s.ledger.Update(ctx, cl); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				s.logger.Debug("claim transitioned concurrently, skipping",
					zap.String("claim_id", cl.ID().String()),
				)
				continue
			}
			return expired, err
		}
		expired++

		event := events.RewardExpiredEvent{
			ClaimID:    cl.ID(),
			RewardID:   cl.Reward().RewardID,
			RewardName: cl.Reward().Name,
			ExpiresAt:  cl.ExpiresAt(),
			OccurredAt: now,
		}
		if err := s.publisher.Publish(ctx, events.RewardExpired, event); err != nil {
			s.logger.Warn("failed to publish reward expired event",
				zap.String("claim_id", cl.ID().String()),
				zap.Error(err),
			)
		}
	}

	if expired > 0 {
		s.logger.Info("expiry sweep completed", zap.Int("expired", expired))
	}
	return expired, nil
}
