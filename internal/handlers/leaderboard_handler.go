package handlers

import (
	"net/http"
	"strconv"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/services"
	"github.com/gin-gonic/gin"
)

// LeaderboardHandler handles leaderboard HTTP requests
type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler
func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// GetLeaderboard handles GET /leaderboard?metric=total|weekly&limit=N
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	metric := models.LeaderboardMetric(c.DefaultQuery("metric", "total"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.leaderboardService.Rank(c.Request.Context(), metric, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric":  metric,
		"entries": entries,
	})
}
