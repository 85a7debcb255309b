package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PointsHandler handles points-related HTTP requests
type PointsHandler struct {
	pointsService *services.PointsService
}

// NewPointsHandler creates a new PointsHandler
func NewPointsHandler(pointsService *services.PointsService) *PointsHandler {
	return &PointsHandler{
		pointsService: pointsService,
	}
}

type createTransactionRequest struct {
	UserID      string `json:"userId" binding:"required"`
	Type        string `json:"type" binding:"required"`
	ReferenceID string `json:"referenceId"`
}

// CreateTransaction handles POST /points/transactions. It creates a
// transaction from the rule table and applies it to the user's ledger in
// one request.
func (h *PointsHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	transaction, err := h.pointsService.CreateTransaction(userID, models.TransactionType(req.Type), req.ReferenceID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransactionType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction: " + err.Error()})
		return
	}

	result, err := h.pointsService.ApplyTransaction(c.Request.Context(), transaction)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownUser):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, services.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, gin.H{"error": "Transaction already processed"})
		case errors.Is(err, repositories.ErrConcurrentModification):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ledger busy, retry later"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply transaction: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction":          transaction,
		"ledger":               result.Snapshot,
		"unlockedAchievements": result.Unlocked,
	})
}

// GetLedger handles GET /points/ledger/:userId
func (h *PointsHandler) GetLedger(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	snapshot, err := h.pointsService.GetLedger(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get ledger: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetTransactions handles GET /points/transactions/:userId
func (h *PointsHandler) GetTransactions(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	transactions, err := h.pointsService.GetTransactions(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transactions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// ResetWeekly handles POST /points/reset/weekly
func (h *PointsHandler) ResetWeekly(c *gin.Context) {
	count, err := h.pointsService.ResetWeekly(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Weekly reset failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ledgersReset": count})
}

// ResetMonthly handles POST /points/reset/monthly
func (h *PointsHandler) ResetMonthly(c *gin.Context) {
	count, err := h.pointsService.ResetMonthly(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Monthly reset failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ledgersReset": count})
}
