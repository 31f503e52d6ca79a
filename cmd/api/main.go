package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"perfume-pos/internal/config"
	"perfume-pos/internal/events"
	"perfume-pos/internal/handler"
	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"
	"perfume-pos/internal/service"
	"perfume-pos/pkg/database"
	"perfume-pos/pkg/jwt"
	"perfume-pos/pkg/logger"
	"perfume-pos/pkg/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Logging and tracing
	zlog := logger.New(cfg.LogLevel, config.ServiceName)
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()
	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.Options{
		Endpoint:       cfg.OtelEndpoint,
		URLPath:        config.TracesPath,
		ServiceName:    config.ServiceName,
		ServiceVersion: config.ServiceVersion,
	})
	if err != nil {
		zlog.Fatal("tracing setup failed", zap.Error(err))
	}
	tracer := otel.Tracer(config.ServiceName)

	// 3. Setup Database
	db, err := database.ConnectDB(cfg.DSN(), cfg.IsDevelopment())
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.SaleLine{},
		&model.CreditInfo{},
		&model.Purchase{},
		&model.User{},
	); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// 4. Event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		zlog.Info("publishing domain events",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	userRepo := repository.NewUserRepo(db)

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	ledger := service.NewInventoryLedger(productRepo, publisher, zlog)
	lines := service.NewLineProcessor(productRepo, ledger, tracer)
	saleService := service.NewSaleService(saleRepo, lines, publisher, tracer, zlog, cfg.Location)
	creditLedger := service.NewCreditLedger(saleRepo, publisher, tracer, zlog)
	orderFlow := service.NewOrderFlow(saleRepo, ledger, publisher, tracer, zlog)
	catalogService := service.NewCatalogService(productRepo, saleRepo, zlog, cfg.Location)
	purchaseService := service.NewPurchaseService(purchaseRepo, publisher, tracer, zlog, cfg.Location)
	statsService := service.NewStatsService(saleRepo, purchaseRepo, productRepo, cfg.Location)
	authService := service.NewAuthService(userRepo, tokens, zlog)
	userService := service.NewUserService(userRepo, zlog)

	// 6. Seed the owner account
	if cfg.OwnerEmail != "" && cfg.OwnerPassword != "" {
		if err := authService.EnsureOwner(ctx, cfg.OwnerEmail, cfg.OwnerPassword); err != nil {
			zlog.Warn("owner account not seeded", zap.Error(err))
		}
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Perfume POS v" + config.ServiceVersion,
	})
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	registerRoutes(app, routeDeps{
		tokens:    tokens,
		users:     userRepo,
		auth:      handler.NewAuthHandler(authService),
		products:  handler.NewProductHandler(catalogService),
		sales:     handler.NewSaleHandler(saleService, creditLedger, orderFlow),
		purchases: handler.NewPurchaseHandler(purchaseService),
		stats:     handler.NewStatsHandler(statsService),
		staff:     handler.NewUserHandler(userService),
	})

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := publisher.Close(); err != nil {
		zlog.Warn("event publisher close failed", zap.Error(err))
	}
	if err := shutdownTracing(flushCtx); err != nil {
		zlog.Warn("trace flush failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	zlog.Info("server exited")
}
