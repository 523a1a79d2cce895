package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identitymodel "auctionhouse-backend/internal/domains/identity/model"
	"auctionhouse-backend/internal/shared/middleware"
	"auctionhouse-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupAuctionRoutes(v1, c)
		setupWatchlistRoutes(v1, c)
		setupNotificationRoutes(v1, c)
		setupInternalRoutes(v1, c)
	}

	return router
}

// ========================================
// AUCTION ROUTES
// ========================================
func setupAuctionRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.JWT.Secret)

	auctions := v1.Group("/auctions")
	{
		// Public bidding view
		auctions.GET("/:id", c.AuctionHandler.GetAuction)
		auctions.GET("/:id/bids", c.AuctionHandler.ListBids)
		auctions.GET("/:id/stream", c.AuctionHandler.StreamAuction)

		// Seller lifecycle
		auctions.POST("", auth, c.AuctionHandler.CreateAuction)
		auctions.POST("/:id/activate", auth, c.AuctionHandler.ActivateAuction)

		// Bidding
		auctions.POST("/:id/bids", auth, c.AuctionHandler.PlaceBid)

		// Watchlist toggles live under the auction they point at
		auctions.POST("/:id/watch", auth, c.WatchlistHandler.Watch)
		auctions.DELETE("/:id/watch", auth, c.WatchlistHandler.Unwatch)
	}
}

// ========================================
// WATCHLIST ROUTES
// ========================================
func setupWatchlistRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.JWT.Secret)

	v1.GET("/watchlist", auth, c.WatchlistHandler.List)
}

// ========================================
// NOTIFICATION ROUTES
// ========================================
func setupNotificationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.JWT.Secret)

	notifications := v1.Group("/notifications", auth)
	{
		notifications.GET("", c.NotificationHandler.List)
		notifications.GET("/unread-count", c.NotificationHandler.UnreadCount)
		notifications.PATCH("/:id/read", c.NotificationHandler.MarkAsRead)
		notifications.PATCH("/read-all", c.NotificationHandler.MarkAllAsRead)
	}
}

// ========================================
// INTERNAL ROUTES
// ========================================
// Operator-only triggers; deploy behind network policy, not public ingress.
func setupInternalRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.JWT.Secret)

	internal := v1.Group("/internal", auth)
	{
		internal.POST("/resolve-expired", c.AuctionHandler.ResolveExpired)

		// Auth provider sync webhook: keeps the local profile mirror
		// (emails for notification delivery) current.
		internal.PUT("/profiles", profileSyncHandler(c))
	}

	// Token minting for local testing only; real tokens come from the
	// auth provider.
	if c.Config.App.Environment == "development" {
		v1.POST("/internal/dev-token", devTokenHandler(c))
	}
}

func profileSyncHandler(c *container.Container) gin.HandlerFunc {
	type profileSyncRequest struct {
		ID          uuid.UUID `json:"id" binding:"required"`
		Email       string    `json:"email" binding:"required,email"`
		DisplayName string    `json:"display_name"`
	}

	return func(ctx *gin.Context) {
		var req profileSyncRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "id and a valid email are required"})
			return
		}

		err := c.ProfileRepo.Upsert(ctx.Request.Context(), &identitymodel.UserProfile{
			ID:          req.ID,
			Email:       req.Email,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync profile"})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"synced": true})
	}
}

func devTokenHandler(c *container.Container) gin.HandlerFunc {
	type devTokenRequest struct {
		UserID string `json:"user_id" binding:"required,uuid"`
		Email  string `json:"email"`
	}

	return func(ctx *gin.Context) {
		var req devTokenRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "user_id (uuid) is required"})
			return
		}

		token, err := c.JWTManager.GenerateAccessToken(req.UserID, req.Email)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"access_token": token})
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		dbStatus := "UP"
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			dbStatus = "DOWN"
		}

		redisStatus := "UP"
		if err := c.Redis.HealthCheck(ctx.Request.Context()); err != nil {
			redisStatus = "DOWN"
		}

		status := http.StatusOK
		if dbStatus == "DOWN" || redisStatus == "DOWN" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":   "UP",
			"service":  c.Config.App.Name,
			"version":  c.Config.App.Version,
			"time":     time.Now().UTC(),
			"database": dbStatus,
			"redis":    redisStatus,
		})
	}
}
