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

	"github.com/safar/go-inventory-store/internal/auth"
	"github.com/safar/go-inventory-store/internal/config"
	"github.com/safar/go-inventory-store/internal/kv"
	"github.com/safar/go-inventory-store/internal/logging"
	"github.com/safar/go-inventory-store/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	backend, err := kv.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Open storage: %v", err)
	}

	hasher, err := auth.NewHasher(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("Password hasher: %v", err)
	}

	s := store.New(backend, store.Options{Logger: logger, Hasher: hasher})
	defer s.Close()

	if err := s.Maintenance.Initialize(ctx); err != nil {
		log.Fatalf("Initialize storage: %v", err)
	}
	logger.Info("storage ready", "driver", cfg.Storage.Driver)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newAPI(s, logger).routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
