package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sharath018/gencon-schedule-backend/config"
	"github.com/sharath018/gencon-schedule-backend/database"
	"github.com/sharath018/gencon-schedule-backend/internal/archive"
	"github.com/sharath018/gencon-schedule-backend/internal/event"
	"github.com/sharath018/gencon-schedule-backend/internal/feedsync"
	"github.com/sharath018/gencon-schedule-backend/internal/gamemaster"
	"github.com/sharath018/gencon-schedule-backend/internal/importlock"
	"github.com/sharath018/gencon-schedule-backend/internal/importlog"
	"github.com/sharath018/gencon-schedule-backend/internal/location"
	"github.com/sharath018/gencon-schedule-backend/internal/metadata"
	"github.com/sharath018/gencon-schedule-backend/internal/notification"
	"github.com/sharath018/gencon-schedule-backend/internal/tournament"
	"github.com/sharath018/gencon-schedule-backend/routes"
	"github.com/sharath018/gencon-schedule-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)
	tz := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init Redis (optional)
	if err := utils.InitRedis(cfg); err != nil {
		log.Printf("⚠️ Redis unavailable: %v", err)
	}
	defer utils.CloseRedis()

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	models := append(metadata.Models(), location.Models()...)
	models = append(models, &event.Event{})
	models = append(models, gamemaster.Models()...)
	models = append(models, &importlog.ImportRun{})
	if err := db.AutoMigrate(models...); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	// Tournament read side, cached in Redis when available
	var cache tournament.Cache
	if utils.IsRedisEnabled() {
		cache = tournament.NewRedisCache(utils.RedisClient, cfg.TournamentCacheTTL)
	}
	tournamentSvc := tournament.NewService(tournament.NewRepository(db), cache)

	// Import notifications: Kafka fan-out, Redis pub/sub for the SSE stream
	var writer notification.MessageWriter
	if w := utils.NewKafkaWriter(cfg, cfg.KafkaImportTopic); w != nil {
		writer = w
		defer w.Close()
	}
	var pub notification.RedisPublisher
	if utils.IsRedisEnabled() {
		pub = utils.RedisClient
	}
	publisher := notification.NewPublisher(writer, pub, tournamentSvc)
	if r := utils.NewKafkaReader(cfg, cfg.KafkaImportTopic); r != nil {
		notification.StartKafkaConsumer(ctx, r, tournamentSvc)
	}

	var archiver event.Archiver
	store, err := archive.New(ctx, archive.Config{
		Bucket:    cfg.ArchiveBucket,
		Region:    cfg.ArchiveRegion,
		Endpoint:  cfg.ArchiveEndpoint,
		PathStyle: cfg.ArchivePathStyle,
	})
	if err != nil {
		log.Printf("⚠️ Feed archive disabled: %v", err)
	} else if store != nil {
		archiver = store
	}

	runs := importlog.NewService(importlog.NewRepository(db))
	lock := importlock.New(utils.RedisClient, cfg.ImportLockTTL)
	eventSvc := event.NewService(db, tz, lock, archiver, runs, publisher)

	// Scheduled feed sync
	if cfg.FeedSyncEnabled && cfg.FeedSyncURL != "" {
		sched, err := feedsync.New(cfg.FeedSyncCron, feedsync.NewSyncer(cfg.FeedSyncURL, eventSvc, tz))
		if err != nil {
			log.Fatalf("❌ Feed sync scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Optional request logger
	router.Use(func(c *gin.Context) {
		log.Printf("REQUEST -> 👉 %s %s from origin %s", c.Request.Method, c.Request.URL.Path, c.Request.Header.Get("Origin"))
		c.Next()
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, cfg, routes.Deps{
		Events:      eventSvc,
		Tournaments: tournamentSvc,
		Runs:        runs,
		Redis:       utils.RedisClient,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Printf("🚀 Server starting on port %s (venue tz %s)", cfg.Port, tz)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
}
