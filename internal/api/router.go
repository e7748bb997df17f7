package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"hallpass-backend/config"
	"hallpass-backend/internal/mw"
	"hallpass-backend/internal/pass"
	"hallpass-backend/internal/policy"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, manager *pass.Manager, table *policy.Table, db *gorm.DB, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(manager, table, db, webpushOptions)

	rateLimiter := mw.RateLimiter(
		rate.Limit(cfg.Server.RateLimitPerSec),
		cfg.Server.RateLimitBurst,
		cfg.Server.RequestIPHeader,
	)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/passes", handler.CreatePass)
		api.GET("/passes", handler.ListActivePasses)
		api.POST("/passes/:pass_id/locations", handler.UpdateLocation)
		api.POST("/passes/:pass_id/complete", handler.CompletePass)

		api.GET("/students/:student_id/report", handler.GetStudentReport)

		// Destination metadata changes rarely; cache it.
		api.GET("/destinations", caching, handler.GetDestinations)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
