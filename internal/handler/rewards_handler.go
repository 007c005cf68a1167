package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/EcoSphere-Campus/service-rewards/internal/application"
	"github.com/EcoSphere-Campus/service-rewards/internal/auth"
	"github.com/EcoSphere-Campus/service-rewards/internal/middleware"
	"github.com/EcoSphere-Campus/service-rewards/internal/response"
)

// RewardsHandler handles HTTP requests for the student-facing reward surface.
type RewardsHandler struct {
	catalogService    *application.CatalogService
	redemptionService *application.RedemptionService
}

// NewRewardsHandler creates a new RewardsHandler.
func NewRewardsHandler(
	catalogService *application.CatalogService,
	redemptionService *application.RedemptionService,
) *RewardsHandler {
	return &RewardsHandler{
		catalogService:    catalogService,
		redemptionService: redemptionService,
	}
}

// RegisterRoutes registers reward and claim routes.
func (h *RewardsHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	rewards := r.Group("/rewards")
	rewards.Use(authMW)
	{
		rewards.GET("", h.ListRewards)
		rewards.POST("/:id/redeem", h.Redeem)
	}

	claims := r.Group("/claims")
	claims.Use(authMW)
	{
		claims.GET("", h.ListClaimed)
		claims.GET("/history", h.History)
		claims.POST("/:id/use", h.Use)
	}
}

// ListRewards handles GET /api/v1/rewards.
func (h *RewardsHandler) ListRewards(c *gin.Context) {
	rewards, err := h.catalogService.ListRewards(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rewards)
}

// Redeem handles POST /api/v1/rewards/:id/redeem.
func (h *RewardsHandler) Redeem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reward ID")
		return
	}

	result, err := h.redemptionService.Redeem(c.Request.Context(), userID, rewardID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListClaimed handles GET /api/v1/claims.
func (h *RewardsHandler) ListClaimed(c *gin.Context) {
	claims, err := h.redemptionService.ListClaimed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, claims)
}

// History handles GET /api/v1/claims/history.
func (h *RewardsHandler) History(c *gin.Context) {
	claims, err := h.redemptionService.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, claims)
}

// Use handles POST /api/v1/claims/:id/use.
func (h *RewardsHandler) Use(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid claim ID")
		return
	}

	result, err := h.redemptionService.Use(c.Request.Context(), claimID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
