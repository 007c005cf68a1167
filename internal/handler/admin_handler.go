package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/EcoSphere-Campus/service-rewards/internal/application"
	"github.com/EcoSphere-Campus/service-rewards/internal/auth"
	"github.com/EcoSphere-Campus/service-rewards/internal/middleware"
	"github.com/EcoSphere-Campus/service-rewards/internal/response"
)

// AdminRewardsHandler handles admin HTTP requests for catalog management.
type AdminRewardsHandler struct {
	catalogService *application.CatalogService
}

// NewAdminRewardsHandler creates a new AdminRewardsHandler.
func NewAdminRewardsHandler(catalogService *application.CatalogService) *AdminRewardsHandler {
	return &AdminRewardsHandler{catalogService: catalogService}
}

// RegisterRoutes registers admin catalog routes.
func (h *AdminRewardsHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/admin")
	admin.Use(authMW, adminRole)
	{
		admin.POST("/rewards", h.AddReward)
		admin.DELETE("/rewards/:id", h.RemoveReward)
		admin.PATCH("/rewards/:id/availability", h.SetAvailability)
		admin.GET("/stats/rewards", h.Stats)
	}
}

// AddReward handles POST /api/v1/admin/rewards.
func (h *AdminRewardsHandler) AddReward(c *gin.Context) {
	var req application.AddRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.catalogService.AddReward(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// RemoveReward handles DELETE /api/v1/admin/rewards/:id.
func (h *AdminRewardsHandler) RemoveReward(c *gin.Context) {
	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reward ID")
		return
	}

	if err := h.catalogService.RemoveReward(c.Request.Context(), rewardID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": rewardID})
}

// SetAvailability handles PATCH /api/v1/admin/rewards/:id/availability.
func (h *AdminRewardsHandler) SetAvailability(c *gin.Context) {
	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reward ID")
		return
	}

	var req application.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.catalogService.SetAvailability(c.Request.Context(), rewardID, req.Availability)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// Stats handles GET /api/v1/admin/stats/rewards.
func (h *AdminRewardsHandler) Stats(c *gin.Context) {
	stats, err := h.catalogService.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
