package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "CART_TTL_MINUTES", "STORE_TIMEZONE", "WEEK_START", "MAX_BODY_BYTES", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Address() != ":3000" {
		t.Fatalf("expected :3000, got %s", cfg.Address())
	}
	if cfg.StoreBackend != BackendFile || cfg.DataFile != "data/db.json" {
		t.Fatalf("expected file backend on data/db.json, got %s %s", cfg.StoreBackend, cfg.DataFile)
	}
	if cfg.CartTTL != 12*time.Hour {
		t.Fatalf("expected 12h cart ttl, got %s", cfg.CartTTL)
	}
	if cfg.WeekStart != time.Sunday || cfg.Location != time.Local {
		t.Fatalf("unexpected calendar defaults: %s %v", cfg.WeekStart, cfg.Location)
	}
	if cfg.MaxBodyBytes != 10<<20 {
		t.Fatalf("expected 10MiB body limit, got %d", cfg.MaxBodyBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("CART_TTL_MINUTES", "30")
	t.Setenv("STORE_TIMEZONE", "UTC")
	t.Setenv("WEEK_START", "Monday")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()
	if cfg.StoreBackend != BackendSQLite {
		t.Fatalf("expected sqlite backend, got %s", cfg.StoreBackend)
	}
	if cfg.CartTTL != 30*time.Minute || cfg.RedisDB != 2 {
		t.Fatalf("unexpected ttl/db: %s %d", cfg.CartTTL, cfg.RedisDB)
	}
	if cfg.Location != time.UTC || cfg.WeekStart != time.Monday {
		t.Fatalf("unexpected calendar: %v %s", cfg.Location, cfg.WeekStart)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORE_BACKEND", "oracle")
	t.Setenv("CART_TTL_MINUTES", "-5")
	t.Setenv("STORE_TIMEZONE", "Mars/Olympus")
	t.Setenv("WEEK_START", "someday")
	t.Setenv("MAX_BODY_BYTES", "12")

	cfg := Load()
	if cfg.StoreBackend != BackendFile || cfg.CartTTL != 12*time.Hour {
		t.Fatalf("expected fallbacks, got %s %s", cfg.StoreBackend, cfg.CartTTL)
	}
	if cfg.Location != time.Local || cfg.WeekStart != time.Sunday || cfg.MaxBodyBytes != 10<<20 {
		t.Fatalf("unexpected fallbacks: %v %s %d", cfg.Location, cfg.WeekStart, cfg.MaxBodyBytes)
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{StoreBackend: BackendPostgres}).Validate(); err == nil {
		t.Fatalf("expected postgres without DATABASE_URL to fail")
	}
	if err := (Config{StoreBackend: BackendMySQL}).Validate(); err == nil {
		t.Fatalf("expected mysql without MYSQL_DSN to fail")
	}
	if err := (Config{StoreBackend: BackendFile}).Validate(); err != nil {
		t.Fatalf("file backend needs nothing extra, got %v", err)
	}
}
