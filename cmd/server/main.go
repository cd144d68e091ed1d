package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-service/config"
	"shop-service/internal/api"
	"shop-service/internal/auth"
	"shop-service/internal/broker"
	"shop-service/internal/redisclient"
	"shop-service/internal/service"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting shop service", zap.String("env", cfg.Server.Env))

	if cfg.Observ.JaegerEndpoint != "" {
		tp, err := util.InitTracer(util.TracingOptions{
			ServiceName:    "shop-service",
			Environment:    cfg.Server.Env,
			JaegerEndpoint: cfg.Observ.JaegerEndpoint,
			SampleRatio:    cfg.Observ.TraceSampleRatio,
		})
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	db, err := store.NewStore(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	var cache service.CatalogCache
	var locker service.Locker
	if cfg.Redis.Addr != "" {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))

		cache = redisClient
		if cfg.Business.OrderLocks {
			locker = redisClient
		}
	} else if cfg.Business.OrderLocks {
		logger.Warn("ORDER_LOCKS_ENABLED is set but REDIS_ADDR is empty, order locks disabled")
	}

	var producer *broker.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}
	eventPublisher := broker.NewEventPublisher(producer)

	credentials, err := auth.NewCredentialVerifier(cfg.Auth.PasswordScheme)
	if err != nil {
		logger.Fatal("Invalid password scheme", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.TokenTTL())

	catalogService := service.NewCatalogService(db, cache, cfg.Redis.CatalogTTL())
	services := api.Services{
		Auth:     service.NewAuthService(db, tokens, credentials),
		Catalog:  catalogService,
		Cart:     service.NewCartService(db),
		Orders:   service.NewOrderService(db, eventPublisher),
		Payments: service.NewPaymentService(db, eventPublisher, locker, cfg.Business.LockTTL()),
		Coupons:  service.NewCouponService(db, eventPublisher, locker, cfg.Business.LockTTL()),
		Accounts: service.NewAccountService(db, eventPublisher),
	}

	if _, err := catalogService.SeedDefaults(context.Background()); err != nil {
		logger.Fatal("Failed to seed catalog", zap.Error(err))
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, db)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
