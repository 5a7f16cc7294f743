package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logistics-contact-backend/config"
	_ "logistics-contact-backend/docs" // Important for Swagger
	v1 "logistics-contact-backend/internal/delivery/http/v1"
	"logistics-contact-backend/internal/domain"
	"logistics-contact-backend/internal/usecase"
	"logistics-contact-backend/pkg/email"
	"logistics-contact-backend/pkg/logger"
	"logistics-contact-backend/pkg/mailrelay"
	"logistics-contact-backend/pkg/redis"

	"github.com/gin-gonic/gin"
)

// mailTransport is what main needs from either relay implementation
type mailTransport interface {
	domain.MailRelay
	usecase.MailTransport
}

// @title           Logistics Contact API
// @version         1.0
// @description     Contact form backend for the logistics company website.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting contact backend", "port", cfg.Port, "mail_transport", cfg.MailTransport)

	// 3. Load site contact information
	site, err := config.LoadSiteInfo(cfg.SiteInfoPath)
	if err != nil {
		logger.Log.Error("Failed to load site info", "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional, rate limiting falls back to memory)
	var redisCheck func(ctx context.Context) error
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable - using in-memory rate limiting", "error", err)
		} else {
			redisCheck = redis.HealthCheck
			defer redis.Close()
		}
	}

	// 5. Setup Mail Transport
	var relay mailTransport
	switch cfg.MailTransport {
	case config.TransportSMTP:
		relay = email.NewEmailService(cfg)
	default:
		relay = mailrelay.NewClient(cfg)
	}
	if !relay.IsConfigured() {
		logger.Log.Warn("Mail transport not fully configured - contact submissions will fail")
	}

	// 6. Setup UseCases
	contactUC := usecase.NewContactUsecase(relay, site, usecase.ContactOptions{
		TemplateID:    cfg.MailRelayTemplateID,
		FallbackEmail: cfg.ContactFallbackEmail,
		FormTTL:       time.Duration(cfg.ContactFormTTLMinutes) * time.Minute,
	})
	healthUC := usecase.NewHealthUsecase(relay, redisCheck)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		HealthUC:  healthUC,
		Config:    cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
