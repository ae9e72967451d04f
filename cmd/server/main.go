package main

import (
	"context"
	"log"

	"payments-api/internal/api"
	"payments-api/internal/config"
	"payments-api/internal/database"
	"payments-api/internal/services"
	"payments-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}
	cfg := config.AppConfig

	// Initialize logging
	logging.InitLogging()

	// Initialize database
	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	store := database.NewStore(db)

	// Outbound channels (both best-effort)
	notifier, err := services.NewTelegramNotifier(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal("Failed to initialize notifier:", err)
	}
	alerter, err := services.NewOperatorAlerter(services.AlerterConfig{
		AdminBotToken:  cfg.AdminBotToken,
		AdminChatID:    cfg.AdminChatID,
		BrevoAPIKey:    cfg.BrevoAPIKey,
		BrevoFromEmail: cfg.BrevoFromEmail,
		AlertEmail:     cfg.AlertEmail,
		ServiceName:    cfg.ServiceName,
	})
	if err != nil {
		log.Fatal("Failed to initialize alerter:", err)
	}

	processor := services.NewPaymentProcessor(
		store, store, store,
		services.NewPriceTable(cfg.PackagePrices, cfg.BoostPrice),
		notifier, alerter,
		services.ProcessorConfig{
			BoostDurationHours:    cfg.BoostDurationHours,
			ReferralCommissionPct: cfg.ReferralCommissionPct,
			ReferralRewardDays:    cfg.ReferralRewardDays,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Queue or inline dispatch, selected at start-up. When Redis is down the
	// service still runs; callbacks just process synchronously.
	var dispatcher services.Dispatcher = services.NewInlineDispatcher()
	if cfg.EnablePaymentQueue {
		redisClient, err := database.InitRedis(cfg)
		if err != nil {
			logging.Warnf("Payment queue unavailable, using inline processing: %v", err)
		} else {
			queueDispatcher := services.NewQueueDispatcher(redisClient, cfg.QueueKeepResultSeconds)
			worker, err := services.NewPaymentWorker(queueDispatcher, alerter, services.WorkerConfig{
				InternalBaseURL:   cfg.InternalBaseURL,
				InternalToken:     cfg.InternalTaskToken,
				MaxAttempts:       cfg.QueueMaxAttempts,
				JobTimeoutSeconds: cfg.QueueJobTimeoutSeconds,
			})
			if err != nil {
				logging.Warnf("Payment queue disabled: %v", err)
			} else {
				dispatcher = queueDispatcher
				go worker.Run(ctx)
			}
		}
	}

	// Expired-subscription sweeper
	go services.NewSubscriptionSweeper(store, cfg.SweepIntervalMinutes).Run(ctx)

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	verifier := services.NewSignatureVerifier(cfg.CallbackSecret, cfg.InternalTaskToken)
	handler := api.NewPaymentCallbackHandler(processor, dispatcher)
	api.SetupRoutes(r, handler, verifier)

	// Start server
	logging.Infof("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
