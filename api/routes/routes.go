package routes

import (
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/config"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/handlers"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies carries the handlers the router wires up
type HandlerDependencies struct {
	UserHandler        *handlers.UserHandler
	PointsHandler      *handlers.PointsHandler
	LeaderboardHandler *handlers.LeaderboardHandler
	EventHandler       *handlers.EventHandler
}

// SetupRouter sets up the router. Authentication is enforced by the
// fronting gateway; this service only sees trusted traffic.
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	api := router.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		// User routes
		users := api.Group("/users")
		{
			users.GET("", deps.UserHandler.GetAllUsers)
			users.GET("/count", deps.UserHandler.GetUserCount)
			users.GET("/:id", deps.UserHandler.GetUserByID)
			users.GET("/:id/notifications", deps.UserHandler.GetNotifications)
			users.POST("", deps.UserHandler.CreateUser)
			users.PUT("/:id", deps.UserHandler.UpdateUser)
			users.PUT("/:id/verified", deps.UserHandler.SetVerified)
		}

		// Points routes
		points := api.Group("/points")
		{
			points.POST("/transactions", deps.PointsHandler.CreateTransaction)
			points.GET("/transactions/:userId", deps.PointsHandler.GetTransactions)
			points.GET("/ledger/:userId", deps.PointsHandler.GetLedger)
			points.POST("/reset/weekly", deps.PointsHandler.ResetWeekly)
			points.POST("/reset/monthly", deps.PointsHandler.ResetMonthly)
		}

		// Leaderboard
		api.GET("/leaderboard", deps.LeaderboardHandler.GetLeaderboard)

		// Special event routes
		events := api.Group("/events")
		{
			events.GET("", deps.EventHandler.ListEvents)
			events.GET("/:id", deps.EventHandler.GetEvent)
			events.POST("", deps.EventHandler.CreateEvent)
			events.PUT("/:id", deps.EventHandler.UpdateEvent)
			events.DELETE("/:id", deps.EventHandler.DeleteEvent)
		}
	}

	return router
}
