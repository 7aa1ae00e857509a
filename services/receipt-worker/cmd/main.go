package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/database"
	"github.com/fundlane/fundlane/pkg/mail"
	"github.com/fundlane/fundlane/pkg/repositories"
	"github.com/fundlane/fundlane/services/receipt-worker/configs"
	"github.com/fundlane/fundlane/services/receipt-worker/internal/services"
)

// main initializes and runs the receipt worker service.
func main() {
	pkg.InitLogger()
	logger := pkg.Logger
	defer logger.Sync()

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	dbConfig := database.Config{
		PrimaryDSN: cfg.PrimaryDbAddr,
		MaxConns:   cfg.MaxDbCons,
		MinConns:   cfg.MinDbCons,
	}
	if cfg.ReadDbAddr != "" {
		dbConfig.ReadDSNs = []string{cfg.ReadDbAddr}
	}
	db, disconnect, err := database.New(context.Background(), logger, dbConfig)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The worker only stamps receipt timestamps, so it never needs the
	// payment-reference key.
	orderRepo := repositories.NewPgOrderRepository(db, nil)
	mailer := mail.NewSimulatedMailer(logger, cfg.MailFromAddress, cfg.MailProviderLatencyFloor)
	processor := services.NewReceiptProcessor(services.ReceiptProcessorConfig{
		Logger:    logger,
		Config:    cfg,
		Mailer:    mailer,
		OrderRepo: orderRepo,
	})

	receiptHandler := services.NewKafkaReceiptConsumer(services.KafkaReceiptConfig{
		Context:          ctx,
		Logger:           logger,
		Config:           cfg,
		ReceiptProcessor: processor,
	})
	closeConsumer := receiptHandler.Start()

	// Prometheus scrape endpoint.
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		logger.Info("metrics server started", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	osSignal := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", osSignal.String()))
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	cancel()
	closeConsumer()
	_ = metricsSrv.Shutdown(shutdownCtx)
	logger.Info("service shutdown completed successfully")
}
