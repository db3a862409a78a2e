package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"panini/internal/amqp"
	"panini/internal/cache"
	"panini/internal/cli"
	apphttp "panini/internal/http"
	plog "panini/internal/log"
	"panini/internal/metrics"
	"panini/internal/services"
	"panini/internal/session"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(plog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	sqliteRepo := cli.InitSQLite(logger.Logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()
	logger.Info("SQLite repository initialized", "path", cfg.SQLiteDBPath)

	m := metrics.New()

	// Publishing is optional; without a broker the mirror simply is not fed.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events will not be published", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	events := services.NewEvents(publisher, m)
	balances := services.NewBalanceService(sqliteRepo, events, cfg.HouseholdMembers, cfg.CacheTTL)

	cacheManager := cache.NewManager()
	cacheManager.Register(balances.Cache())
	cacheManager.StartCleanup(time.Minute)

	svc := apphttp.Services{
		Users:        services.NewUserService(sqliteRepo),
		Categories:   services.NewCategoryService(sqliteRepo),
		Transactions: services.NewTransactionService(sqliteRepo, events),
		Payments:     services.NewPaymentService(sqliteRepo, events, m, cfg.BillingCycle),
		Reminders:    services.NewReminderService(sqliteRepo),
		Balances:     balances,
		Reports:      services.NewReportService(sqliteRepo),
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		Logger:             logger,
		Metrics:            m,
		Sessions:           session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              sqliteRepo.Ping,
	}, svc)
	if err != nil {
		logger.Error("Failed to build HTTP server", "error", err)
		os.Exit(1)
	}

	_, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
	})

	logger.Info("Starting panini server",
		"port", cfg.Port,
		"billing_cycle", cfg.BillingCycle,
		"household_members", cfg.HouseholdMembers)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
