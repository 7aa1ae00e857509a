package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/auth"
	"github.com/fundlane/fundlane/pkg/cache"
	"github.com/fundlane/fundlane/pkg/database"
	"github.com/fundlane/fundlane/pkg/mail"
	middleware "github.com/fundlane/fundlane/pkg/middlewares"
	"github.com/fundlane/fundlane/pkg/repositories"
	"github.com/fundlane/fundlane/pkg/utils"
	"github.com/fundlane/fundlane/services/invest-api/configs"
	"github.com/fundlane/fundlane/services/invest-api/internal/background"
	"github.com/fundlane/fundlane/services/invest-api/internal/handlers"
	"github.com/fundlane/fundlane/services/invest-api/internal/services"
)

// NewApp wires dependencies, builds the Gin engine, and returns an
// *http.Server and a cleanup func. It reads configuration from environment
// variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Storage backend. Memory keeps local development and CI free of
	// postgres and redis.
	var (
		orderRepo   repositories.OrderRepository
		mandateRepo repositories.MandateRepository
		schemeRepo  repositories.SchemeRepository
		sessions    auth.SessionStore
		navCache    cache.NavCache
		redisClient *redis.Client
	)
	switch cfg.StoreBackend {
	case "postgres":
		dbConfig := database.Config{
			PrimaryDSN: cfg.PrimaryDbAddr,
			MaxConns:   cfg.MaxDbCons,
			MinConns:   cfg.MinDbCons,
		}
		if cfg.ReadDbAddr != "" {
			dbConfig.ReadDSNs = []string{cfg.ReadDbAddr}
		}
		db, disconnect, err := database.New(ctx, logger, dbConfig)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, disconnect)

		if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
			cleanup()
			return nil, nil, err
		}

		var aesKey []byte
		if cfg.AesKey != "" {
			aesKey, err = utils.DecodeAESKey(cfg.AesKey)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
		}

		client, closeRedis, err := cache.New(ctx, cache.Config{Addr: cfg.RedisAddr})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, closeRedis)

		redisClient = client
		orderRepo = repositories.NewPgOrderRepository(db, aesKey)
		mandateRepo = repositories.NewPgMandateRepository(db)
		schemeRepo = repositories.NewPgSchemeRepository(db)
		sessions = auth.NewRedisSessionStore(client)
		navCache = cache.NewRedisNavCache(client, cfg.NavCacheTTL)
	case "memory":
		orderRepo = repositories.NewMemoryOrderRepository()
		mandateRepo = repositories.NewMemoryMandateRepository()
		schemeRepo = repositories.NewMemorySchemeRepository()
		sessions = auth.NewMemorySessionStore()
		navCache = cache.NewMemoryNavCache(cfg.NavCacheTTL)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	// Market data with a shared per-minute budget against the provider.
	limiter := pkg.NewDistributedLimiter(redisClient, "global:nav_fetch_rate",
		cfg.NavRatePerMin, cfg.NavRatePerMin, time.Minute, logger)
	market := services.NewMarketDataClient(logger, cfg.NavApiBaseURL, limiter)

	fundService := services.NewFundService(logger, schemeRepo, market, navCache, cfg.NavHistoryLimit)
	riskService := services.NewRiskService()
	calcService := services.NewCalculatorService()
	mandateService := services.NewMandateService(logger, mandateRepo)

	// Receipt hand-off. Kafka when brokers are configured, otherwise an
	// in-process dispatcher that sends and stamps directly.
	var publisher services.ReceiptPublisher
	if cfg.KafkaBrokers != "" {
		publisher = services.NewKafkaReceiptPublisher(logger, ctx, cfg)
	} else {
		mailer := mail.NewSimulatedMailer(logger, cfg.MailFromAddress, cfg.MailProviderLatencyFloor)
		receipts := services.NewLocalReceiptProcessor(logger, orderRepo, mailer, cfg.MailSendTimeout)
		publisher = services.NewLocalReceiptDispatcher(logger, 64, receipts.Process)
	}
	cleanups = append(cleanups, publisher.Close)

	orderService := services.NewOrderService(logger, orderRepo, publisher)

	baseHandler := handlers.NewBaseHandler(logger)
	orderHandler := handlers.NewOrderHandler(logger, orderService)
	mandateHandler := handlers.NewMandateHandler(logger, mandateService)
	fundHandler := handlers.NewFundHandler(logger, fundService)
	riskHandler := handlers.NewRiskHandler(logger, riskService)
	calcHandler := handlers.NewCalculatorHandler(logger, calcService)

	// Router
	r := gin.Default()
	r.HandleMethodNotAllowed = true

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())

	// Fund browsing is public.
	fundHandler.RegisterRoutes(api)

	// Customer surfaces need a session.
	customer := api.Group("")
	customer.Use(middleware.Authenticate(logger, sessions))
	customer.Use(middleware.RequireRole(pkg.RoleCustomer))
	orderHandler.RegisterRoutes(customer)
	mandateHandler.RegisterRoutes(customer)
	riskHandler.RegisterRoutes(customer)
	calcHandler.RegisterRoutes(customer)

	seller := api.Group("/seller")
	seller.Use(middleware.Authenticate(logger, sessions))
	seller.Use(middleware.RequireRole(pkg.RoleSeller))
	orderHandler.RegisterSellerRoutes(seller)

	internal := api.Group("/internal")
	internal.Use(middleware.InternalToken(cfg.InternalToken))
	fundHandler.RegisterInternalRoutes(internal)

	baseHandler.RegisterRoutes(r)
	r.NoMethod(handlers.MethodNotAllowed(r))

	// Periodic NAV refresh.
	tasks := background.NewBackgroundTasks(logger, fundService, cfg.NavRefreshInterval)
	tasks.StartAll(ctx)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	return srv, cleanup, nil
}
