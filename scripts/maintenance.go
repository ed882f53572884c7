package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/safar/go-inventory-store/internal/config"
	"github.com/safar/go-inventory-store/internal/kv"
	"github.com/safar/go-inventory-store/internal/logging"
	"github.com/safar/go-inventory-store/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/maintenance.go [init|info|clear]")
	}

	command := os.Args[1]
	if command != "init" && command != "info" && command != "clear" {
		log.Fatal("Command must be 'init', 'info' or 'clear'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	ctx := context.Background()
	backend, err := kv.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Open storage: %v", err)
	}

	s := store.New(backend, store.Options{Logger: logging.New(cfg.LogLevel)})
	defer s.Close()

	switch command {
	case "init":
		if err := s.Maintenance.Initialize(ctx); err != nil {
			log.Fatalf("Initialize: %v", err)
		}
		log.Printf("Storage initialized (%s)", cfg.Storage.Driver)

	case "info":
		info, err := s.Maintenance.Info(ctx)
		if err != nil {
			log.Fatalf("Info: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			log.Fatalf("Encode info: %v", err)
		}

	case "clear":
		if len(os.Args) < 3 || os.Args[2] != "-yes" {
			log.Fatal("Refusing to clear storage without -yes")
		}
		if err := s.Maintenance.ClearAll(ctx); err != nil {
			log.Fatalf("Clear: %v", err)
		}
		log.Printf("Storage cleared (%s)", cfg.Storage.Driver)
	}
}
