package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vivenda/marketplace-backend/internal/accounts"
	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/internal/cache"
	"github.com/vivenda/marketplace-backend/internal/config"
	"github.com/vivenda/marketplace-backend/internal/contracts"
	"github.com/vivenda/marketplace-backend/internal/events"
	"github.com/vivenda/marketplace-backend/internal/inquiries"
	"github.com/vivenda/marketplace-backend/internal/projects"
	"github.com/vivenda/marketplace-backend/internal/properties"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// TranslateError turns driver-specific unique violations into
	// gorm.ErrDuplicatedKey, which the repositories map onto the
	// constraint error. Without it the live-contract index would surface
	// as a 500 instead of a 409.
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&accounts.User{},
		&properties.Property{},
		&properties.PropertyImage{},
		&properties.SavedProperty{},
		&projects.Project{},
		&projects.SellableAsset{},
		&projects.ProjectImage{},
		&projects.ProjectMilestone{},
		&projects.ProjectUpdate{},
		&contracts.BuyerContract{},
		&contracts.PaymentScheduleItem{},
		&inquiries.Inquiry{},
		&inquiries.InquiryNote{},
	); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, running without cache", zap.Error(err))
			rdb = nil
		}
	}
	listingCache := cache.New(rdb)

	bus := events.NewBus()
	dropFeaturedProperties := func(events.Event) {
		if err := listingCache.Delete(context.Background(), cache.KeyFeaturedProperties); err != nil {
			logger.Warn("failed to invalidate featured properties cache", zap.Error(err))
		}
	}
	bus.Subscribe(events.PropertyActivated, dropFeaturedProperties)
	bus.Subscribe(events.PropertyDeactivated, dropFeaturedProperties)
	bus.Subscribe(events.ContractCancelled, func(e events.Event) {
		logger.Info("contract cancelled", zap.String("contract_id", e.EntityID.String()))
	})

	usersRepo := accounts.NewRepository(db)
	usersService := accounts.NewService(usersRepo, logger)
	usersHandler := accounts.NewHandler(usersService, logger)

	propertiesRepo := properties.NewRepository(db)
	propertiesService := properties.NewService(propertiesRepo, bus, listingCache, logger)
	propertiesHandler := properties.NewHandler(propertiesService, logger)

	projectsRepo := projects.NewRepository(db)
	projectsService := projects.NewService(projectsRepo, listingCache, logger)
	projectsHandler := projects.NewHandler(projectsService, logger)

	contractsRepo := contracts.NewRepository(db)
	contractsService := contracts.NewService(contractsRepo, bus, logger)
	contractsHandler := contracts.NewHandler(contractsService, logger)

	inquiriesRepo := inquiries.NewRepository(db)
	inquiriesService := inquiries.NewService(inquiriesRepo, propertiesRepo, logger)
	inquiriesHandler := inquiries.NewHandler(inquiriesService, logger)

	mw := auth.NewMiddleware(cfg.Auth.JWTSecret, usersService, logger)
	profileHandler := auth.NewHandler(usersService, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
	})

	api := router.Group("/api/v1")

	public := api.Group("")
	{
		usersHandler.RegisterPublicRoutes(public)
		propertiesHandler.RegisterPublicRoutes(public)
		projectsHandler.RegisterPublicRoutes(public)
		inquiriesHandler.RegisterPublicRoutes(public)
	}

	// Any signed-in user: profile, favorites, own contracts.
	authed := api.Group("", mw.Authenticate())
	{
		profileHandler.RegisterMyRoutes(authed)
		propertiesHandler.RegisterSavedRoutes(authed)
		contractsHandler.RegisterBuyerRoutes(authed)
	}

	agent := api.Group("/agent", mw.Authenticate(), mw.RequireVerifiedAgent())
	{
		propertiesHandler.RegisterAgentRoutes(agent)
		inquiriesHandler.RegisterAgentRoutes(agent)
	}

	staff := api.Group("/admin", mw.Authenticate(), mw.RequireStaff())
	{
		propertiesHandler.RegisterAdminRoutes(staff)
	}

	projectAdmin := api.Group("/admin", mw.Authenticate(), mw.RequireProjectAdmin())
	{
		projectsHandler.RegisterAdminRoutes(projectAdmin)
		contractsHandler.RegisterAdminRoutes(projectAdmin)
	}

	sweeper := cron.New()
	if _, err := sweeper.AddFunc("15 2 * * *", func() {
		contractsService.SweepOverdue(context.Background())
	}); err != nil {
		logger.Fatal("failed to schedule overdue sweep", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.Server.Addr()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	return logger
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
