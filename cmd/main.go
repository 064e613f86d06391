package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safety-service/internal/api"
	"safety-service/internal/config"
	"safety-service/internal/db"
	"safety-service/internal/geocode"
	"safety-service/internal/logging"
	"safety-service/internal/notify"
	"safety-service/internal/providers"
	"safety-service/internal/realtime"
	"safety-service/internal/sos"
	"safety-service/internal/utils"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Connect to database
	dbConn, err := db.New(cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()

	if err := utils.Retry(logger, 3, 2*time.Second, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return dbConn.Ping(ctx)
	}); err != nil {
		logger.Errorf("Database unreachable: %v", err)
		log.Fatalf("Database unreachable: %v", err)
	}

	// Notification channels; missing credentials leave a channel disabled
	var smsSender notify.SMSSender
	if cfg.SMSConfigured() {
		smsSender = providers.NewSMSSender(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber, cfg.Notify.ChannelTimeout)
	} else {
		logger.Warnf("Twilio credentials not configured, SMS channel disabled")
	}
	var emailSender notify.EmailSender
	if cfg.EmailConfigured() {
		emailSender = providers.NewEmailSender(cfg.Email.SMTPServer, cfg.Email.SMTPPort, cfg.Email.Username, cfg.Email.Password)
	} else {
		logger.Warnf("Email credentials not configured, email channel disabled")
	}
	dispatcher := notify.NewDispatcher(smsSender, emailSender, cfg.Geocoding.GoogleAPIKey, cfg.Notify.ChannelTimeout, logger)

	// Realtime sinks
	hub := realtime.NewHub(logger)
	var publisher *realtime.EventPublisher
	if cfg.Kafka.Broker != "" {
		publisher = realtime.NewEventPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic)
		defer publisher.Close()
	}
	broadcaster := realtime.NewBroadcaster(hub, publisher, logger)

	var ops sos.OpsNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.OpsChat != 0 {
		ops = providers.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.OpsChat, logger)
	}

	resolver := geocode.NewResolver(cfg, logger)
	svc := sos.New(dbConn, resolver, dispatcher, broadcaster, ops, logger)

	// Start API server
	handler := api.NewHandler(dbConn, logger, svc, resolver, hub)
	router := api.NewRouter(handler, logger)
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
}
