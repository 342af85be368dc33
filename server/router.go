package server

import (
	"time"

	httpHandler "creator-contest/interfaces/http"
	"creator-contest/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	SecretKey    string
	AllowOrigins []string
	OperatorIDs  []string
}

func InitiateRouter(
	cfg RouterConfig,
	healthHandler httpHandler.IHealthHandler,
	contestHandler httpHandler.IContestHandler,
	tiktokAuthHandler httpHandler.ITikTokAuthHandler,
	leaderboardStream gin.HandlerFunc,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	router.GET("/healthz", healthHandler.Healthz)

	// The consent redirect lands here without a bearer token.
	if tiktokAuthHandler != nil {
		router.GET("/auth/tiktok/callback", tiktokAuthHandler.Callback)
	}

	api := router.Group("api")
	api.Use(middleware.Auth(cfg.SecretKey))

	if tiktokAuthHandler != nil {
		tiktok := api.Group("/tiktok")
		{
			tiktok.GET("/connect", tiktokAuthHandler.GetAuthURL)
			tiktok.GET("/status", tiktokAuthHandler.Status)
			tiktok.DELETE("/connection", tiktokAuthHandler.Disconnect)
		}
	}

	contests := api.Group("/contests")
	{
		contests.POST("/:contestId/submissions", contestHandler.SubmitVideo)
		contests.GET("/:contestId/leaderboard", contestHandler.GetLeaderboard)
		if leaderboardStream != nil {
			contests.GET("/:contestId/leaderboard/stream", leaderboardStream)
		}
	}
	api.POST("/metrics/sync", middleware.RequireOperator(cfg.OperatorIDs), contestHandler.SyncMetrics)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// Credentials cannot be combined with a wildcard origin.
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
