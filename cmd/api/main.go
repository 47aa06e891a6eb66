package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-order-service/internal/client"
	"storefront-order-service/internal/config"
	"storefront-order-service/internal/invoice"
	"storefront-order-service/internal/logging"
	"storefront-order-service/internal/middleware"
	"storefront-order-service/internal/notification"
	"storefront-order-service/internal/repository"
	"storefront-order-service/internal/server"
	"storefront-order-service/internal/service"
	"storefront-order-service/internal/shipping"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log).With("env", cfg.Environment.Name)

	db, err := client.OpenDB(cfg.Database)
	if err != nil {
		logger.Error("open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	paypalClient := client.NewPaypalClient(&cfg.Paypal)

	smtpSender, err := notification.NewSMTPSender(cfg.SMTP)
	if err != nil {
		logger.Error("init smtp sender", "error", err)
		os.Exit(1)
	}
	mailer := notification.NewMailer(smtpSender, cfg.AdminEmail)

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	captureRepo := repository.NewCaptureRepository(db)
	failureRepo := repository.NewFailureLogRepository(db)

	products := service.NewProductLookup(productRepo)
	calculator := shipping.NewCalculator(shipping.RatesFromConfig(cfg.Shipping), products)

	orderService := service.NewOrderService(service.OrderDeps{
		DB:            db,
		Products:      products,
		Calculator:    calculator,
		OrderRepo:     orderRepo,
		UserRepo:      userRepo,
		InventoryRepo: inventoryRepo,
		CaptureRepo:   captureRepo,
		FailureRepo:   failureRepo,
		COD:           service.NewCODStrategy(),
		Paypal:        service.NewPaypalStrategy(paypalClient, cfg.FrontendURL),
		Notifier:      mailer,
		Invoices:      invoice.NewRenderer(cfg.Invoice.Dir),
		Logger:        logger,
	})
	productService := service.NewProductService(productRepo, logger)
	analyticsService := service.NewAnalyticsService(orderRepo)

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.AdminEmail)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(orderService, productService, analyticsService, auth, logger)

	logger.Info("starting HTTP server", "addr", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
