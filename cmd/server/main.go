package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/efactura/efactura/internal/config"
	"github.com/efactura/efactura/internal/db"
	"github.com/efactura/efactura/internal/logging"
	"github.com/efactura/efactura/internal/server"
	"github.com/efactura/efactura/internal/vat"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	log := logging.NewForEnvironment(cfg.Env, os.Getenv("LOG_LEVEL"))
	defer func() { _ = log.Sync() }()

	dbConn, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("database connection failed", zap.String("dsn", db.MaskDSN(cfg.DatabaseDSN)), zap.Error(err))
	}
	if *migrateOnlyFlag {
		log.Info("migrations completed; exiting as requested")
		return
	}

	validator := vat.NewAIValidator(cfg.VATAIURL, cfg.VATAIKey, cfg.VATAIModel)
	handler := server.New(dbConn, validator, log)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
