package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/safar/medstore/internal/admin"
	"github.com/safar/medstore/internal/auth"
	"github.com/safar/medstore/internal/cache"
	"github.com/safar/medstore/internal/catalog"
	"github.com/safar/medstore/internal/config"
	"github.com/safar/medstore/internal/contact"
	"github.com/safar/medstore/internal/database"
	"github.com/safar/medstore/internal/httpapi"
	"github.com/safar/medstore/internal/ordering"
	"github.com/safar/medstore/migrations"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply pending migrations before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	if names := cfg.Auth.InsecureDefaults(); len(names) > 0 {
		log.Printf("WARNING: %s still set to the built-in default; set them before exposing this server", strings.Join(names, ", "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	if *migrate {
		n, err := database.Migrate(ctx, db, migrations.FS, database.Up)
		if err != nil {
			log.Fatalf("Run migrations: %v", err)
		}
		log.Printf("Applied %d migration(s)", n)
	}

	rdb := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CatalogTTL)
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := rdb.Ping(pingCtx); err != nil {
		log.Printf("WARNING: redis unavailable at %s, catalog reads go straight to the database: %v", cfg.Redis.Addr, err)
	}
	cancel()

	sessions := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionMaxAge)
	admins := auth.AdminCredentials{Username: cfg.Auth.AdminUsername, Password: cfg.Auth.AdminPassword}

	srv := httpapi.NewServer(httpapi.Services{
		Orders:   ordering.NewService(db),
		Accounts: auth.NewAccounts(db),
		Catalog:  catalog.NewService(db, rdb),
		Contact:  contact.NewService(db),
		Admin:    admin.NewService(db),
	}, sessions, admins)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown: %v", err)
	}
}
