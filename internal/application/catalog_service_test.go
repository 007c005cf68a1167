package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EcoSphere-Campus/service-rewards/internal/application"
	"github.com/EcoSphere-Campus/service-rewards/internal/domain"
	claimDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/claim"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
	"github.com/EcoSphere-Campus/service-rewards/internal/repository"
)

type catalogFixture struct {
	catalog *repository.MemoryCatalogRepository
	ledger  *repository.MemoryLedgerRepository
	service *application.CatalogService
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	catalog := repository.NewMemoryCatalogRepository()
	ledger := repository.NewMemoryLedgerRepository()
	return &catalogFixture{
		catalog: catalog,
		ledger:  ledger,
		service: application.NewCatalogService(catalog, ledger, zap.NewNop()),
	}
}

func validAddRequest() application.AddRewardRequest {
	return application.AddRewardRequest{
		Name:           "Campus Café 20% Off",
		Description:    "Get 20% off your next purchase",
		RewardType:     "coupon",
		PointsCost:     150,
		Category:       "food",
		TotalAvailable: 50,
		ExpiryDate:     "2026-12-31",
		Provider:       "Campus Dining Services",
		Terms:          []string{"Valid for one-time use"},
		IsLimited:      true,
		Discount:       "20%",
	}
}

func TestAddReward_AssignsIDAndInitializesAvailability(t *testing.T) {
	f := newCatalogFixture(t)

	dto, err := f.service.AddReward(context.Background(), validAddRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, dto.ID)
	assert.Equal(t, 50, dto.Availability)
	assert.Equal(t, 50, dto.TotalAvailable)
	assert.Equal(t, "available", dto.Status)
	assert.Equal(t, 2026, dto.ExpiryDate.Year())
}

func TestAddReward_AcceptsRFC3339ExpiryDate(t *testing.T) {
	f := newCatalogFixture(t)

	req := validAddRequest()
	req.ExpiryDate = "2026-06-30T23:59:59Z"
	dto, err := f.service.AddReward(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, time.June, dto.ExpiryDate.Month())
}

func TestAddReward_RejectsMalformedExpiryDate(t *testing.T) {
	f := newCatalogFixture(t)

	req := validAddRequest()
	req.ExpiryDate = "31/12/2026"
	_, err := f.service.AddReward(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestAddReward_RejectsUnknownType(t *testing.T) {
	f := newCatalogFixture(t)

	req := validAddRequest()
	req.RewardType = "mystery"
	_, err := f.service.AddReward(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestRemoveReward_UnknownID(t *testing.T) {
	f := newCatalogFixture(t)

	err := f.service.RemoveReward(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRemoveReward_LeavesLedgerSnapshotsIntact(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	dto, err := f.service.AddReward(ctx, validAddRequest())
	require.NoError(t, err)

	// A claim referencing the reward sits in the ledger.
	cl, err := claimDomain.NewClaimedReward(rewardDomain.Snapshot{
		RewardID:   dto.ID,
		Name:       dto.Name,
		RewardType: rewardDomain.TypeCoupon,
		PointsCost: dto.PointsCost,
	}, "CAMP-123456-ABC", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, f.ledger.Save(ctx, cl))

	require.NoError(t, f.service.RemoveReward(ctx, dto.ID))

	_, err = f.catalog.FindByID(ctx, dto.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// The snapshot still renders the removed reward.
	stored, err := f.ledger.FindByID(ctx, cl.ID())
	require.NoError(t, err)
	assert.Equal(t, dto.Name, stored.Reward().Name)
}

func TestSetAvailability_ClampsAndAllowsRestockAboveTotal(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	dto, err := f.service.AddReward(ctx, validAddRequest())
	require.NoError(t, err)

	updated, err := f.service.SetAvailability(ctx, dto.ID, -10)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Availability)

	updated, err = f.service.SetAvailability(ctx, dto.ID, 75)
	require.NoError(t, err)
	assert.Equal(t, 75, updated.Availability)
	assert.Equal(t, 50, updated.TotalAvailable)
}

func TestSetAvailability_UnknownID(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.service.SetAvailability(context.Background(), uuid.New(), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetStats(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	inStock, err := f.service.AddReward(ctx, validAddRequest())
	require.NoError(t, err)

	soldOut := validAddRequest()
	soldOut.Name = "Movie Night Tickets"
	soldOutDTO, err := f.service.AddReward(ctx, soldOut)
	require.NoError(t, err)
	_, err = f.service.SetAvailability(ctx, soldOutDTO.ID, 0)
	require.NoError(t, err)

	cl, err := claimDomain.NewClaimedReward(rewardDomain.Snapshot{
		RewardID:   inStock.ID,
		Name:       inStock.Name,
		RewardType: rewardDomain.TypeCoupon,
	}, "", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, f.ledger.Save(ctx, cl))

	stats, err := f.service.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRewards)
	assert.Equal(t, int64(1), stats.ActiveRewards)
	assert.Equal(t, int64(1), stats.ClaimsByStatus["active"])
}
