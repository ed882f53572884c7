package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("PASSWORD_HASHER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load config: %v", err)
	}

	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Expected driver %q, got %q", DriverSQLite, cfg.Storage.Driver)
	}
	if cfg.Storage.KeyPrefix != "inventory_app:" {
		t.Errorf("Expected key prefix inventory_app:, got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Auth.PasswordHasher != "legacy" {
		t.Errorf("Expected legacy hasher, got %q", cfg.Auth.PasswordHasher)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "90s")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("PASSWORD_HASHER", "bcrypt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load config: %v", err)
	}

	if cfg.Storage.Driver != DriverRedis {
		t.Errorf("Expected driver redis, got %q", cfg.Storage.Driver)
	}
	if cfg.Redis.Addr != "cache:6380" {
		t.Errorf("Expected redis addr cache:6380, got %q", cfg.Redis.Addr)
	}
	if cfg.Database.ConnMaxLifetime != 90*time.Second {
		t.Errorf("Expected 90s lifetime, got %s", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("Expected bcrypt cost 12, got %d", cfg.Auth.BcryptCost)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "leveldb")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for unknown driver")
	}
}
