package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EcoSphere-Campus/service-rewards/internal/adapter"
	"github.com/EcoSphere-Campus/service-rewards/internal/application"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
	"github.com/EcoSphere-Campus/service-rewards/internal/events"
	"github.com/EcoSphere-Campus/service-rewards/internal/repository"
	"github.com/EcoSphere-Campus/service-rewards/internal/saga"
)

type redemptionFixture struct {
	catalog *repository.MemoryCatalogRepository
	ledger  *repository.MemoryLedgerRepository
	wallet  *adapter.MockWalletAdapter
	service *application.RedemptionService
}

func newRedemptionFixture(t *testing.T) *redemptionFixture {
	t.Helper()
	log := zap.NewNop()

	catalog := repository.NewMemoryCatalogRepository()
	ledger := repository.NewMemoryLedgerRepository()
	wallet := adapter.NewMockWalletAdapter(1250, log)
	sagaSvc := saga.NewRedemptionSagaService(catalog, ledger, wallet, log)

	return &redemptionFixture{
		catalog: catalog,
		ledger:  ledger,
		wallet:  wallet,
		service: application.NewRedemptionService(catalog, ledger, sagaSvc, events.NoopPublisher{}, log),
	}
}

func (f *redemptionFixture) addReward(t *testing.T, name string, rt rewardDomain.Type, cost int64, total int) *rewardDomain.Reward {
	t.Helper()
	rw, err := rewardDomain.NewReward(
		name, "", rt, cost, "food", total,
		time.Now().UTC().AddDate(1, 0, 0),
		"", "Campus Dining Services", nil, false, false, "",
	)
	require.NoError(t, err)
	require.NoError(t, f.catalog.Save(context.Background(), rw))
	return rw
}

func TestRedeemAndUse_FullLifecycle(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	rw := f.addReward(t, "Campus Café 20% Off", rewardDomain.TypeCoupon, 150, 1)

	// First redemption of the last unit succeeds and issues a code.
	result, err := f.service.Redeem(ctx, userID, rw.ID())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Successfully redeemed Campus Café 20% Off!", result.Message)
	assert.NotEmpty(t, result.Code)
	require.NotNil(t, result.Claim)
	assert.Equal(t, "active", result.Claim.Status)

	updated, err := f.catalog.FindByID(ctx, rw.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Availability())

	balance, err := f.wallet.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), balance)

	// Second redemption fails on stock.
	result, err = f.service.Redeem(ctx, userID, rw.ID())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, application.CodeOutOfStock, result.ErrorCode)
	assert.Equal(t, "This reward is out of stock", result.Message)

	// Using the claim succeeds once.
	claims, err := f.service.ListClaimed(ctx)
	require.NoError(t, err)
	require.Len(t, claims, 1)

	useResult, err := f.service.Use(ctx, claims[0].ID)
	require.NoError(t, err)
	assert.True(t, useResult.Success)
	assert.Equal(t, "Successfully used Campus Café 20% Off!", useResult.Message)

	stored, err := f.ledger.FindByID(ctx, claims[0].ID)
	require.NoError(t, err)
	assert.Equal(t, claimDomain.StatusUsed, stored.Status())
	require.NotNil(t, stored.UsedAt())

	// A second use is rejected.
	useResult, err = f.service.Use(ctx, claims[0].ID)
	require.NoError(t, err)
	assert.False(t, useResult.Success)
	assert.Equal(t, application.CodeInvalidState, useResult.ErrorCode)
	assert.Equal(t, "This reward has already been used or expired", useResult.Message)
}

func TestRedeem_UnknownReward(t *testing.T) {
	f := newRedemptionFixture(t)

	result, err := f.service.Redeem(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, application.CodeNotFound, result.ErrorCode)
	assert.Equal(t, "Reward not found", result.Message)
}

func TestRedeem_LockedReward(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()

	rw := f.addReward(t, "Reusable Water Bottle", rewardDomain.TypeMerchandise, 800, 5)
	rw.Lock()
	rw.IncrementVersion()
	require.NoError(t, f.catalog.Update(ctx, rw))

	result, err := f.service.Redeem(ctx, uuid.New(), rw.ID())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, application.CodeInvalidState, result.ErrorCode)
	assert.Equal(t, "This reward is not available for redemption", result.Message)
}

func TestRedeem_InsufficientPoints(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	rw := f.addReward(t, "Eco Warrior Badge", rewardDomain.TypeBadge, 500, 10)
	f.wallet.SetBalance(userID, 100)

	result, err := f.service.Redeem(ctx, userID, rw.ID())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, application.CodeInsufficientPoints, result.ErrorCode)
	assert.Equal(t, "Not enough eco points!", result.Message)

	// The failed debit leaves stock and balance untouched.
	updated, err := f.catalog.FindByID(ctx, rw.ID())
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Availability())

	balance, err := f.wallet.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	claims, err := f.service.ListClaimed(ctx)
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestRedeem_CodeIssuedOnlyForCodeBearingTypes(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	withCode := f.addReward(t, "Movie Night Tickets", rewardDomain.TypeExperience, 300, 5)
	withoutCode := f.addReward(t, "Eco Warrior Badge", rewardDomain.TypeBadge, 500, 5)

	result, err := f.service.Redeem(ctx, userID, withCode.ID())
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.NotEmpty(t, result.Code)

	result, err = f.service.Redeem(ctx, userID, withoutCode.ID())
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Empty(t, result.Code)
}

func TestRedeem_ConcurrentRedemptionsNeverOversell(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()

	rw := f.addReward(t, "Green Transportation Pass", rewardDomain.TypeCoupon, 400, 1)

	const attempts = 8
	results := make([]*application.RedemptionResultDTO, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.service.Redeem(ctx, uuid.New(), rw.ID())
		}(i)
	}
	wg.Wait()

	successes := 0
	for i, result := range results {
		require.NoError(t, errs[i])
		if result.Success {
			successes++
		} else {
			assert.Equal(t, application.CodeOutOfStock, result.ErrorCode)
		}
	}
	assert.Equal(t, 1, successes, "exactly one redemption wins the last unit")

	updated, err := f.catalog.FindByID(ctx, rw.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Availability())

	claims, err := f.service.ListClaimed(ctx)
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

// failingLedger rejects every Save so the saga's append step fails after the
// wallet debit and stock reservation succeeded.
type failingLedger struct {
	*repository.MemoryLedgerRepository
}

func (f *failingLedger) Save(ctx context.Context, c *claimDomain.ClaimedReward) error {
	return errors.New("ledger unavailable")
}

func TestRedeem_CompensatesDebitAndStockOnLedgerFailure(t *testing.T) {
	log := zap.NewNop()
	ctx := context.Background()
	userID := uuid.New()

	catalog := repository.NewMemoryCatalogRepository()
	ledger := &failingLedger{repository.NewMemoryLedgerRepository()}
	wallet := adapter.NewMockWalletAdapter(1250, log)
	sagaSvc := saga.NewRedemptionSagaService(catalog, ledger, wallet, log)
	service := application.NewRedemptionService(catalog, ledger, sagaSvc, events.NoopPublisher{}, log)

	rw, err := rewardDomain.NewReward(
		"Sustainability Workshop Access", "", rewardDomain.TypeExperience, 600, "education", 3,
		time.Now().UTC().AddDate(1, 0, 0),
		"", "Environmental Studies Dept", nil, false, false, "",
	)
	require.NoError(t, err)
	require.NoError(t, catalog.Save(ctx, rw))

	_, err = service.Redeem(ctx, userID, rw.ID())
	require.Error(t, err)

	// Compensation restored the unit and refunded the points.
	updated, err := catalog.FindByID(ctx, rw.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Availability())

	balance, err := wallet.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), balance)
}

func TestUse_UnknownClaim(t *testing.T) {
	f := newRedemptionFixture(t)

	result, err := f.service.Use(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, application.CodeNotFound, result.ErrorCode)
	assert.Equal(t, "Claimed reward not found", result.Message)
}

func TestUse_ExpiredClaim_PersistsLazyExpiry(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()

	// Seed a claim whose pickup window closed weeks ago.
	snap := rewardDomain.Snapshot{
		RewardID:   uuid.New(),
		Name:       "Reusable Water Bottle",
		RewardType: rewardDomain.TypeMerchandise,
		PointsCost: 800,
		Category:   "eco-products",
		Provider:   "Campus Store",
	}
	claimedAt := time.Now().UTC().Add(-30 * 24 * time.Hour)
	cl, err := claimDomain.NewClaimedReward(snap, "REUS-123456-ABC", claimedAt)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Save(ctx, cl))

	result, err := f.service.Use(ctx, cl.ID())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, application.CodeExpired, result.ErrorCode)
	assert.Equal(t, "This reward has expired", result.Message)

	// The expired status was written back even though the call failed.
	stored, err := f.ledger.FindByID(ctx, cl.ID())
	require.NoError(t, err)
	assert.Equal(t, claimDomain.StatusExpired, stored.Status())
	assert.Nil(t, stored.UsedAt())
}

func TestHistory_SortedDescendingByClaimTime(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	f.wallet.SetBalance(userID, 10_000)

	rw := f.addReward(t, "Campus Café 20% Off", rewardDomain.TypeCoupon, 150, 10)

	for i := 0; i < 3; i++ {
		result, err := f.service.Redeem(ctx, userID, rw.ID())
		require.NoError(t, err)
		require.True(t, result.Success)
		time.Sleep(2 * time.Millisecond)
	}

	history, err := f.service.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i-1].ClaimedAt.Before(history[i].ClaimedAt),
			"history must be newest first")
	}
}
