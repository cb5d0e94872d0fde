package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"skmart/backend/internal/cache"
	"skmart/backend/internal/config"
	"skmart/backend/internal/httpapi"
	"skmart/backend/internal/media"
	"skmart/backend/internal/service"
	"skmart/backend/internal/store"
	filestore "skmart/backend/internal/store/file"
	"skmart/backend/internal/store/gormstore"
	"skmart/backend/internal/store/memory"
	pgstore "skmart/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	log.Logger = newLogger(cfg, os.Stdout)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("repository unavailable")
	}
	if closeRepo != nil {
		closers = append(closers, closeRepo)
	}
	log.Info().Str("backend", cfg.StoreBackend).Msg("repository ready")

	carts := cache.CartCache(cache.NewMemoryCartCache())
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCartCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, keeping carts in memory")
			_ = redisCache.Close()
		} else {
			carts = redisCache
			closers = append(closers, redisCache.Close)
			log.Info().Str("addr", cfg.RedisAddr).Msg("cart cache: redis")
		}
	} else {
		log.Info().Msg("cart cache: memory")
	}

	images, err := media.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("upload dir unavailable")
	}

	svc := service.New(repo, carts, images, service.Options{
		Location:  cfg.Location,
		WeekStart: cfg.WeekStart,
		CartTTL:   cfg.CartTTL,
	})
	api := httpapi.New(svc, httpapi.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		UploadDir:     images.Dir(),
		StaticDir:     cfg.StaticDir,
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Msg("SK Mart POS listening")
		if err := listenAndServe(server); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

// listenAndServe treats a server closed by Shutdown as a clean exit.
func listenAndServe(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openRepository builds the backend named by cfg.StoreBackend. The returned
// close func is nil for backends holding no external resources.
func openRepository(ctx context.Context, cfg config.Config) (store.Repository, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memory.New(), nil, nil
	case config.BackendFile:
		fs, err := filestore.Open(cfg.DataFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open data file %s: %w", cfg.DataFile, err)
		}
		return fs, fs.Close, nil
	case config.BackendPostgres:
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return pg, pg.Close, nil
	case config.BackendMySQL:
		db, err := gormstore.OpenMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql: %w", err)
		}
		return db, db.Close, nil
	case config.BackendSQLite:
		db, err := gormstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
