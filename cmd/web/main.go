// cmd/web/main.go
//
// Process entry point for the pre-order service.
//
// Context
// -------
// Boot order matters: logging first (everything after can log), then the
// optional Vault client, then configuration (which may pull secrets from
// Vault), then the database and schema, then the HTTP surface.  Any
// failure before the listener is up is fatal.
//
// Notes
// -----
//   • Vault is optional.  Without VAULT_ADDR the config loader still
//     works as long as no value carries a `vault:` reference.
//   • Shutdown drains in-flight requests for up to ten seconds.

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

	"go.uber.org/zap"

	"github.com/yanizio/preorder/internal/api"
	"github.com/yanizio/preorder/internal/config"
	"github.com/yanizio/preorder/internal/database"
	"github.com/yanizio/preorder/internal/logger"
	"github.com/yanizio/preorder/internal/middleware"
	"github.com/yanizio/preorder/internal/preorder"
	"github.com/yanizio/preorder/internal/requestinfo"
	"github.com/yanizio/preorder/internal/server"
	"github.com/yanizio/preorder/internal/shop"
	"github.com/yanizio/preorder/internal/vault"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(".", true)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	var secrets *vault.Client
	if os.Getenv("VAULT_ADDR") != "" {
		secrets, err = vault.New(ctx)
		if err != nil {
			return fmt.Errorf("init vault: %w", err)
		}
		log.Infow("vault client ready")
	}

	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Infow("config loaded", "listen", cfg.HTTP.ListenAddr, "root", cfg.Paths.Root)

	if cfg.GeoIP.Path != "" {
		if err := requestinfo.InitGeo(cfg.GeoIP.Path); err != nil {
			log.Warnw("geoip disabled", "error", err)
		}
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	settings := preorder.NewStore(db)
	shops := shop.NewStore(db)

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	cache := preorder.NewCache(settings.List, ttl, cfg.Cache.MaxShops)

	handler := api.NewServer(cfg, settings, cache, shops).Router()
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	srv := server.New(cfg.HTTP.ListenAddr, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	zap.S().Infow("stopped")
	return nil
}
