package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kilim/internal/config"
	httpapi "kilim/internal/http"
	"kilim/internal/mail"
	"kilim/internal/payment"
	"kilim/internal/repository"
	"kilim/internal/service"

	_ "kilim/docs"
)

func main() {
	cfg := config.Load()

	var orders repository.OrderRepository
	if cfg.DatabaseURL != "" {
		pg, err := repository.NewPostgresOrders(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		orders = pg
	} else {
		log.Printf("DATABASE_URL not set, using in-memory order store")
		orders = repository.NewMemoryOrders()
	}

	provider := payment.NewStripeProvider(payment.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	})

	var mailer mail.Mailer = mail.Disabled{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	ordersSvc := service.NewOrderService(orders, provider, service.CheckoutConfig{
		SuccessURL:       cfg.SuccessURL,
		CancelURL:        cfg.CancelURL,
		Currency:         cfg.Currency,
		AllowedCountries: cfg.AllowedCountries,
	})
	webhookSvc := service.NewWebhookService(orders, mailer, cfg.MailTo)

	srv := httpapi.NewServer(ordersSvc, webhookSvc, provider, cfg.APIKey)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
