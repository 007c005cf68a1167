package saga

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EcoSphere-Campus/service-rewards/internal/adapter"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
)

// RedemptionSagaService runs the redemption transaction: the wallet debit,
// the stock decrement and the ledger append succeed or roll back together.
// The points debit is enforced here, not left to the calling UI.
type RedemptionSagaService struct {
	catalog rewardDomain.CatalogRepository
	ledger  claimDomain.LedgerRepository
	wallet  adapter.WalletAdapter
	logger  *zap.Logger
}

// NewRedemptionSagaService creates a new RedemptionSagaService.
func NewRedemptionSagaService(
	catalog rewardDomain.CatalogRepository,
	ledger claimDomain.LedgerRepository,
	wallet adapter.WalletAdapter,
	logger *zap.Logger,
) *RedemptionSagaService {
	return &RedemptionSagaService{
		catalog: catalog,
		ledger:  ledger,
		wallet:  wallet,
		logger:  logger,
	}
}

// ExecuteRedemption debits the wallet, reserves one unit of stock and appends
// the claim to the ledger. The caller holds the per-reward critical section
// and has already validated the reward; the stock decrement still re-checks
// under an optimistic version guard so a concurrent writer aborts the saga
// instead of overselling.
func (s *RedemptionSagaService) ExecuteRedemption(
	ctx context.Context,
	userID uuid.UUID,
	rw *rewardDomain.Reward,
	now time.Time,
) (*claimDomain.ClaimedReward, error) {
	var code string
	if claimDomain.CodeRequired(rw.RewardType()) {
		code = claimDomain.NewRedemptionCode(rw.Name(), now)
	}

	cl, err := claimDomain.NewClaimedReward(rw.Snapshot(), code, now)
	if err != nil {
		return nil, err
	}

	sg := New("redeem_reward", s.logger)

	// Step 1: debit the points wallet.
	sg.AddStep(Step{
		Name: "debit_points",
		Execute: func(ctx context.Context) error {
			return s.wallet.Debit(ctx, userID, rw.PointsCost())
		},
		Compensate: func(ctx context.Context) error {
			return s.wallet.Credit(ctx, userID, rw.PointsCost())
		},
	})

	// Step 2: reserve one unit of stock.
	sg.AddStep(Step{
		Name: "reserve_stock",
		Execute: func(ctx context.Context) error {
			if err := rw.ReserveUnit(); err != nil {
				return err
			}
			rw.IncrementVersion()
			return s.catalog.Update(ctx, rw)
		},
		Compensate: func(ctx context.Context) error {
			rw.RestoreUnit()
			rw.IncrementVersion()
			return s.catalog.Update(ctx, rw)
		},
	})

	// Step 3: append the claim to the ledger.
	sg.AddStep(Step{
		Name: "append_claim",
		Execute: func(ctx context.Context) error {
			return s.ledger.Save(ctx, cl)
		},
		Compensate: nil, // a failed append leaves no ledger entry to undo
	})

	if err := sg.Execute(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("reward redeemed",
		zap.String("claim_id", cl.ID().String()),
		zap.String("reward_id", rw.ID().String()),
		zap.String("user_id", userID.String()),
		zap.Int64("points_cost", rw.PointsCost()),
	)
	return cl, nil
}
