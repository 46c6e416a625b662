package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sharath018/gencon-schedule-backend/config"
	"github.com/sharath018/gencon-schedule-backend/internal/event"
	"github.com/sharath018/gencon-schedule-backend/internal/importlog"
	"github.com/sharath018/gencon-schedule-backend/internal/metrics"
	"github.com/sharath018/gencon-schedule-backend/internal/notification"
	"github.com/sharath018/gencon-schedule-backend/internal/tournament"
	"github.com/sharath018/gencon-schedule-backend/middleware"
)

// Deps are the services the HTTP layer needs, built once in main.
type Deps struct {
	Events      *event.Service
	Tournaments *tournament.Service
	Runs        importlog.Service
	Redis       *redis.Client
}

func Setup(r *gin.Engine, cfg *config.Config, deps Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": deps.Redis != nil})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, deps.Redis))
	api.Use(middleware.AuditMiddleware())

	// ========== Schedule (public read) ==========
	eventHandler := event.NewHandler(deps.Events)
	api.GET("/events", eventHandler.ListEvents)
	api.GET("/events/:id", eventHandler.GetEvent)
	api.GET("/event-days", eventHandler.ListDays)

	tournamentHandler := tournament.NewHandler(deps.Tournaments, cfg.Location())
	api.GET("/tournaments", tournamentHandler.ListTournaments)
	api.GET("/tournaments/export", tournamentHandler.ExportTournaments)

	// ========== Imports (admin) ==========
	admin := api.Group("")
	admin.Use(middleware.AdminOnly(cfg))
	{
		admin.POST("/data-ingests", eventHandler.Ingest)

		runHandler := importlog.NewHandler(deps.Runs)
		admin.GET("/imports", runHandler.ListRuns)
		admin.GET("/imports/stream", notification.NewHandler(deps.Redis).StreamImports)
		admin.GET("/imports/:id", runHandler.GetRun)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})
}
