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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/beauty-booking-api/api/swagger"
	"github.com/noah-isme/beauty-booking-api/internal/handler"
	"github.com/noah-isme/beauty-booking-api/internal/middleware"
	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/internal/repository"
	"github.com/noah-isme/beauty-booking-api/internal/service"
	"github.com/noah-isme/beauty-booking-api/pkg/cache"
	"github.com/noah-isme/beauty-booking-api/pkg/config"
	"github.com/noah-isme/beauty-booking-api/pkg/database"
	"github.com/noah-isme/beauty-booking-api/pkg/jobs"
	"github.com/noah-isme/beauty-booking-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/beauty-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/beauty-booking-api/pkg/middleware/requestid"
)

// @title Beauty Booking API
// @version 1.0.0
// @description Provider availability, prayer-aware slot grids and conflict-free booking allocation
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	defaultLoc, err := time.LoadLocation(cfg.Slots.DefaultTimezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid default timezone", "timezone", cfg.Slots.DefaultTimezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metrics := service.NewMetricsService()

	providerRepo := repository.NewProviderRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	settingsRepo := repository.NewAvailabilitySettingsRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	bookingRepo := repository.NewBookingRepository(db, cfg.Booking.AllocationTimeout)
	cacheRepo := repository.NewCacheRepository(redisClient, "booking", logr)
	defer cacheRepo.Close() //nolint:errcheck
	prayerClient := repository.NewPrayerTimeClient(cfg.Prayer, nil)
	publisher := repository.NewKafkaEventPublisher(cfg.Events, logr)
	defer publisher.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.DefaultTTL, logr, redisClient != nil)
	settingsSvc := service.NewAvailabilitySettingsService(settingsRepo, providerRepo, logr)
	prayerTimes := service.NewPrayerTimeService(prayerClient, cacheSvc, cfg.Prayer.CacheTTL, logr)

	rules := service.NewTemporalRulesService(service.TemporalRulesServiceParams{
		Providers:       providerRepo,
		Settings:        settingsSvc,
		Schedules:       scheduleRepo,
		Calendar:        prayerTimes,
		Metrics:         metrics,
		Logger:          logr,
		DefaultLocation: defaultLoc,
	})
	breaks := service.NewPrayerBreakService(service.PrayerBreakServiceParams{
		Providers:       providerRepo,
		Settings:        settingsSvc,
		Ramadan:         rules,
		Prayers:         prayerTimes,
		Metrics:         metrics,
		Logger:          logr,
		DefaultLocation: defaultLoc,
	}, service.PrayerBreakConfig{
		Relevant:        service.RelevantPrayers(cfg.Prayer.Relevant),
		DurationMinutes: cfg.Prayer.DurationMinutes,
	})
	slots := service.NewSlotService(service.SlotServiceParams{
		Providers: providerRepo,
		Services:  serviceRepo,
		Settings:  settingsSvc,
		Rules:     rules,
		Breaks:    breaks,
		Bookings:  bookingRepo,
		Validator: validate,
		Metrics:   metrics,
		Logger:    logr,
	}, service.SlotServiceConfig{
		GranularityMinutes: cfg.Slots.GranularityMinutes,
		DefaultLocation:    defaultLoc,
	})

	events := service.NewEventService(publisher, metrics, logr)
	eventQueue := jobs.NewQueue("booking-events", events.Handle, jobs.QueueConfig{
		Workers:    cfg.Events.Workers,
		BufferSize: cfg.Events.BufferSize,
		MaxRetries: cfg.Events.MaxRetries,
		Logger:     logr,
	})
	eventQueue.Start(ctx)
	defer eventQueue.Stop()
	events.AttachQueue(eventQueue)

	allocator := service.NewBookingAllocatorService(service.BookingAllocatorServiceParams{
		Providers: providerRepo,
		Services:  serviceRepo,
		Settings:  settingsSvc,
		Rules:     rules,
		Breaks:    breaks,
		Store:     bookingRepo,
		Events:    events,
		Validator: validate,
		Metrics:   metrics,
		Logger:    logr,
	}, service.BookingAllocatorConfig{
		InitialStatus:   models.BookingStatus(cfg.Booking.InitialStatus),
		MaxRetries:      cfg.Booking.MaxRetries,
		RetryBackoff:    cfg.Booking.RetryBackoff,
		Timeout:         cfg.Booking.AllocationTimeout,
		DefaultLocation: defaultLoc,
	})
	fees := service.NewFeeService(validate, logr)
	tokens := service.NewTokenService(cfg.JWT.Secret)

	availabilityHandler := handler.NewAvailabilityHandler(slots, breaks, settingsSvc)
	bookingHandler := handler.NewBookingHandler(allocator)
	feeHandler := handler.NewFeeHandler(fees)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
		"database": db,
		"cache":    handler.PingFunc(cacheRepo.Ping),
	})
	limiter := middleware.NewRateLimiter(cfg.Booking.RateLimitPerMinute, cfg.Booking.RateLimitBurst, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	providers := api.Group("/providers/:id")
	providers.GET("/slots", middleware.OptionalJWT(tokens), availabilityHandler.Slots)
	providers.GET("/availability", middleware.OptionalJWT(tokens), availabilityHandler.Availability)
	providers.GET("/prayer-breaks", middleware.OptionalJWT(tokens), availabilityHandler.PrayerBreaks)
	providers.GET("/availability-settings",
		middleware.JWT(tokens),
		middleware.RBAC(string(models.RoleAdmin), middleware.Owner),
		availabilityHandler.Settings,
	)

	api.POST("/bookings",
		middleware.JWT(tokens),
		middleware.RequireRoles(models.RoleCustomer),
		limiter.Middleware(),
		bookingHandler.Allocate,
	)

	feeRoutes := api.Group("/fees")
	feeRoutes.GET("/quote", feeHandler.Quote)
	feeRoutes.POST("/summary",
		middleware.JWT(tokens),
		middleware.RequireRoles(models.RoleAdmin, models.RoleProvider),
		feeHandler.Summary,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
