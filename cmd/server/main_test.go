package main

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"skmart/backend/internal/config"
	"skmart/backend/internal/store/storetest"
)

func TestOpenRepositoryMemory(t *testing.T) {
	repo, closeFn, err := openRepository(context.Background(), config.Config{StoreBackend: config.BackendMemory})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if closeFn != nil {
		t.Fatalf("memory backend should not need closing")
	}
	if _, err := repo.UpsertProduct(context.Background(), storetest.SampleProduct("P1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}

func TestOpenRepositoryFileCreatesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	repo, closeFn, err := openRepository(context.Background(), config.Config{StoreBackend: config.BackendFile, DataFile: path})
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	t.Cleanup(func() { _ = closeFn() })

	products, err := repo.ListProducts(context.Background())
	if err != nil || len(products) != 0 {
		t.Fatalf("expected empty catalog, got %d (%v)", len(products), err)
	}
}

func TestOpenRepositorySQLite(t *testing.T) {
	cfg := config.Config{StoreBackend: config.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "pos.db")}
	repo, closeFn, err := openRepository(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = closeFn() })

	if _, err := repo.ListSales(context.Background()); err != nil {
		t.Fatalf("list sales: %v", err)
	}
}

func TestOpenRepositoryUnknownBackend(t *testing.T) {
	if _, _, err := openRepository(context.Background(), config.Config{StoreBackend: "oracle"}); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.Config{LogLevel: "warn"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected log output: %s", buf.String())
	}
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %s", logger.GetLevel())
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger := newLogger(config.Config{LogLevel: "loud"}, &bytes.Buffer{})
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", logger.GetLevel())
	}
}

func TestListenAndServeClosedServerIsClean(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:0"}
	if err := server.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := listenAndServe(server); err != nil {
		t.Fatalf("expected closed server to exit cleanly, got %v", err)
	}
}

func TestListenAndServeReportsBindFailure(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:-1"}
	if err := listenAndServe(server); err == nil {
		t.Fatalf("expected invalid address to fail")
	}
}
