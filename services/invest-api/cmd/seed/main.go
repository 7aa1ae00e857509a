package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/auth"
	"github.com/fundlane/fundlane/pkg/cache"
	"github.com/fundlane/fundlane/pkg/database"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/pkg/repositories"
	"github.com/fundlane/fundlane/services/invest-api/configs"
)

// main seeds a handful of schemes, a demo customer with mandates, and demo
// redis sessions for local development. Safe to re-run: scheme upserts are
// idempotent and sessions are overwritten.
func main() {
	customerToken := flag.String("customerToken", "demo-customer", "Bearer token for the demo customer session")
	sellerToken := flag.String("sellerToken", "demo-seller", "Bearer token for the demo seller session")
	flag.Parse()

	pkg.InitLogger()
	logger := pkg.Logger
	defer logger.Sync()

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, closer, err := database.New(ctx, logger, database.Config{
		PrimaryDSN: cfg.PrimaryDbAddr,
		MaxConns:   cfg.MaxDbCons,
		MinConns:   cfg.MinDbCons,
	})
	if err != nil {
		logger.Fatal("failed to init DB", zap.Error(err))
	}
	defer closer()

	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	redisClient, closeRedis, err := cache.New(ctx, cache.Config{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer closeRedis()

	schemeRepo := repositories.NewPgSchemeRepository(db)
	mandateRepo := repositories.NewPgMandateRepository(db)

	now := time.Now().UTC()
	navDate := now.Truncate(24 * time.Hour)
	schemes := []models.Scheme{
		{SchemeCode: 120503, SchemeName: "Axis Bluechip Fund Direct Plan Growth", FundHouse: "Axis Mutual Fund", Category: "Equity Scheme - Large Cap Fund", LatestNav: decimal.RequireFromString("58.41"), NavDate: navDate},
		{SchemeCode: 118825, SchemeName: "HDFC Mid-Cap Opportunities Fund Direct Growth", FundHouse: "HDFC Mutual Fund", Category: "Equity Scheme - Mid Cap Fund", LatestNav: decimal.RequireFromString("186.02"), NavDate: navDate},
		{SchemeCode: 119598, SchemeName: "SBI Small Cap Fund Direct Growth", FundHouse: "SBI Mutual Fund", Category: "Equity Scheme - Small Cap Fund", LatestNav: decimal.RequireFromString("174.55"), NavDate: navDate},
		{SchemeCode: 120716, SchemeName: "ICICI Prudential Liquid Fund Direct Growth", FundHouse: "ICICI Prudential Mutual Fund", Category: "Debt Scheme - Liquid Fund", LatestNav: decimal.RequireFromString("372.19"), NavDate: navDate},
	}
	for _, s := range schemes {
		if err := schemeRepo.Upsert(ctx, s); err != nil {
			logger.Fatal("failed to seed scheme", zap.Int("schemeCode", s.SchemeCode), zap.Error(err))
		}
		logger.Info("seeded scheme", zap.Int("schemeCode", s.SchemeCode), zap.String("name", s.SchemeName))
	}

	customerID := uuid.New()
	mandates := []models.Mandate{
		{ID: uuid.New(), UserID: customerID, Nickname: "Salary account", Bank: "HDFC Bank", Limit: decimal.RequireFromString("25000"), Status: pkg.MandateStatusActive, CreatedAt: now},
		{ID: uuid.New(), UserID: customerID, Nickname: "Savings", Bank: "SBI", Limit: decimal.RequireFromString("10000"), Status: pkg.MandateStatusPaused, CreatedAt: now.Add(-time.Hour)},
	}
	for _, m := range mandates {
		if err := mandateRepo.Create(ctx, m); err != nil {
			logger.Fatal("failed to seed mandate", zap.String("mandateId", m.ID.String()), zap.Error(err))
		}
	}

	// Demo sessions the auth provider would normally issue.
	sessions := map[string]auth.Identity{
		*customerToken: {UserID: customerID, Name: "Demo Customer", Role: pkg.RoleCustomer},
		*sellerToken:   {UserID: uuid.New(), Name: "Demo Seller", Role: pkg.RoleSeller},
	}
	for token, identity := range sessions {
		raw, err := json.Marshal(identity)
		if err != nil {
			logger.Fatal("failed to marshal session", zap.Error(err))
		}
		if err := redisClient.Set(ctx, fmt.Sprintf("session:%s", token), raw, 0).Err(); err != nil {
			logger.Fatal("failed to seed session", zap.Error(err))
		}
		logger.Info("seeded session", zap.String("token", token), zap.String("role", string(identity.Role)))
	}

	logger.Info("seed complete",
		zap.String("customerId", customerID.String()),
		zap.Int("schemes", len(schemes)),
		zap.Int("mandates", len(mandates)))
}
