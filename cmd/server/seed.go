package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/EcoSphere-Campus/service-rewards/internal/application"
	rewardDomain "github.com/EcoSphere-Campus/service-rewards/internal/domain/reward"
)

// seedCatalog populates an empty catalog with the launch reward set. A
// non-empty catalog is left untouched so restocks and removals survive
// restarts on the postgres driver.
func seedCatalog(
	ctx context.Context,
	catalogRepo rewardDomain.CatalogRepository,
	catalogService *application.CatalogService,
	log *zap.Logger,
) error {
	count, err := catalogRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds := []application.AddRewardRequest{
		{
			Name:           "Campus Café 20% Off",
			Description:    "Get 20% off your next purchase at any campus café",
			RewardType:     "coupon",
			PointsCost:     150,
			Category:       "food",
			TotalAvailable: 50,
			ExpiryDate:     "2026-12-31",
			Image:          "/rewards/cafe-discount.jpg",
			Provider:       "Campus Dining Services",
			Terms:          []string{"Valid for one-time use", "Cannot be combined with other offers", "Valid at all campus locations"},
			IsLimited:      true,
			Discount:       "20%",
		},
		{
			Name:           "Eco Warrior Badge",
			Description:    "Exclusive digital badge for completing 10 sustainability challenges",
			RewardType:     "badge",
			PointsCost:     500,
			Category:       "education",
			TotalAvailable: 100,
			ExpiryDate:     "2026-12-31",
			Image:          "/rewards/eco-badge.png",
			Provider:       "EcoSphere",
			Terms:          []string{"Digital badge displayed on profile", "Permanent achievement", "Unlocks special features"},
			IsNew:          true,
		},
		{
			Name:           "Reusable Water Bottle",
			Description:    "Premium stainless steel water bottle with campus logo",
			RewardType:     "merchandise",
			PointsCost:     800,
			Category:       "eco-products",
			TotalAvailable: 25,
			ExpiryDate:     "2026-06-30",
			Image:          "/rewards/water-bottle.jpg",
			Provider:       "Campus Store",
			Terms:          []string{"Physical pickup required", "Available in multiple colors", "Limited edition design"},
			IsLimited:      true,
			IsNew:          true,
		},
		{
			Name:           "Movie Night Tickets",
			Description:    "Two free tickets to campus movie night events",
			RewardType:     "experience",
			PointsCost:     300,
			Category:       "entertainment",
			TotalAvailable: 20,
			ExpiryDate:     "2026-05-31",
			Image:          "/rewards/movie-tickets.jpg",
			Provider:       "Student Activities",
			Terms:          []string{"Valid for any movie night event", "Must be used within 30 days", "Non-transferable"},
			IsLimited:      true,
		},
		{
			Name:           "Sustainability Workshop Access",
			Description:    "Free access to premium sustainability workshops and seminars",
			RewardType:     "experience",
			PointsCost:     600,
			Category:       "education",
			TotalAvailable: 50,
			ExpiryDate:     "2026-12-31",
			Image:          "/rewards/workshop.jpg",
			Provider:       "Environmental Studies Dept",
			Terms:          []string{"Access to all workshops this semester", "Certificate of completion included", "Priority booking"},
		},
		{
			Name:           "Green Transportation Pass",
			Description:    "Free public transportation pass for one month",
			RewardType:     "coupon",
			PointsCost:     400,
			Category:       "eco-products",
			TotalAvailable: 30,
			ExpiryDate:     "2026-08-31",
			Image:          "/rewards/transport-pass.jpg",
			Provider:       "City Transit Authority",
			Terms:          []string{"Valid for 30 days from activation", "Covers all city buses and trains", "Non-transferable"},
			IsLimited:      true,
			IsNew:          true,
		},
	}

	for _, seed := range seeds {
		if _, err := catalogService.AddReward(ctx, seed); err != nil {
			return err
		}
	}

	log.Info("catalog seeded", zap.Int("rewards", len(seeds)))
	return nil
}
