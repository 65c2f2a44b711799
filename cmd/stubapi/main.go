package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/infrastructure/config"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
	"github.com/sweetshop/sweetshop/infrastructure/stubapi"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadStub()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "sweetshop-stubapi",
	})

	if cfg.AdminPassword == "" {
		structuredLogger.Warn(ctx, "STUB_ADMIN_PASSWORD not set, no admin account will exist", nil)
	}

	api, err := stubapi.New(ctx, stubapi.Config{
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
		AdminEmail:     cfg.AdminEmail,
		AdminPassword:  cfg.AdminPassword,
	}, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to build stub API", err, nil)
		log.Fatalf("Failed to build stub API: %v", err)
	}

	if _, err := api.SeedSweets(ctx, demoCatalog...); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting stub API", map[string]interface{}{"addr": cfg.ListenAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{"addr": cfg.ListenAddr})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}

var demoCatalog = []entity.SweetInput{
	{Name: "Gulab Jamun", Category: "Traditional", Description: "Soft, syrupy fried dough balls soaked in cardamom syrup.", Price: 50, Quantity: 20},
	{Name: "Jalebi", Category: "Traditional", Description: "Crispy, spiral sweet soaked in saffron sugar syrup.", Price: 40, Quantity: 25},
	{Name: "Milk Barfi", Category: "Milk Sweet", Description: "Creamy fudge made from condensed milk and sugar.", Price: 45, Quantity: 18},
	{Name: "Kalakand", Category: "Milk Sweet", Description: "Grainy, rich milk cake topped with pistachios.", Price: 60, Quantity: 0},
}
