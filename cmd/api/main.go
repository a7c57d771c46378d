package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/branchly/inventory-service/config"
	"github.com/branchly/inventory-service/internal/platform/broker"
	"github.com/branchly/inventory-service/internal/platform/cache"
	"github.com/branchly/inventory-service/internal/platform/logger"
	"github.com/branchly/inventory-service/internal/platform/postgres"
	"github.com/branchly/inventory-service/internal/server"

	authRepoPkg "github.com/branchly/inventory-service/internal/auth/repository"
	branchRepoPkg "github.com/branchly/inventory-service/internal/branch/repository"

	branchH "github.com/branchly/inventory-service/internal/branch/handler"
	invH "github.com/branchly/inventory-service/internal/inventory/handler"
	invListenerPkg "github.com/branchly/inventory-service/internal/inventory/listener"
	invRepoPkg "github.com/branchly/inventory-service/internal/inventory/repository"
	invUCPkg "github.com/branchly/inventory-service/internal/inventory/usecase"

	transferH "github.com/branchly/inventory-service/internal/transfer/handler"
	transferRepoPkg "github.com/branchly/inventory-service/internal/transfer/repository"
	transferUCPkg "github.com/branchly/inventory-service/internal/transfer/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.Config{
		Level:             cfg.Logger.Level,
		Encoding:          cfg.Logger.Encoding,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv != "development" && cfg.Server.AppEnv != "dev" {
		logConfig.Encoding = "json"
		logConfig.Level = "info"
	}

	appLogger := logger.Must(logger.New(logConfig))
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	invRepo := invRepoPkg.NewPGRepository(db)
	transferRepo := transferRepoPkg.NewPGRepository(db)
	branchRepo := branchRepoPkg.NewPGRepository(db)
	userResolver := authRepoPkg.NewPGUserResolver(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 6. Initialize UseCases
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, appLogger.Named("inventory"))
	transferUC := transferUCPkg.NewTransferUseCase(transferRepo, redisClient, appLogger.Named("transfer"))

	// 6.5 Initialize Listeners
	saleListener := invListenerPkg.NewSaleListener(kafkaConsumer, invUC, appLogger.Named("listener.sales"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go saleListener.Start(ctx)

	// 7. Initialize Handlers and Router
	engine := server.NewRouter(server.RouterDeps{
		JWTSecret:       cfg.JWT.SecretKey,
		UserResolver:    userResolver,
		TransferHandler: transferH.NewTransferHandler(transferUC, appLogger.Named("handler.transfer")),
		InvHandler:      invH.NewInventoryHandler(invUC, appLogger.Named("handler.inventory")),
		BranchHandler:   branchH.NewBranchHandler(branchRepo, appLogger.Named("handler.branch")),
		Logger:          appLogger.Named("http"),
		AppEnv:          cfg.Server.AppEnv,
	})

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
