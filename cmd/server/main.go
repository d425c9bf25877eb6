package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"scores-keeper/internal/backup"
	"scores-keeper/internal/config"
	"scores-keeper/internal/db"
	"scores-keeper/internal/leaderboard"
	"scores-keeper/internal/live"
	"scores-keeper/internal/server"
	"scores-keeper/internal/session"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := db.NewNotifier()
	store := db.NewStore(conn, notifier)
	manager := session.NewManager(store)
	projector := live.New(manager, notifier)

	var standings *leaderboard.Cache
	if cfg.RedisAddr != "" {
		logger := slog.Default()
		cache, err := leaderboard.NewCache(cfg.RedisAddr, cfg.RedisDB, logger)
		if err != nil {
			log.Printf("standings cache disabled: %v", err)
		} else {
			standings = cache
			defer cache.Close()
			worker := leaderboard.NewWorker(cache, manager, notifier, logger)
			go worker.Run(ctx)
		}
	}

	if cfg.SyncAccount != "" {
		service := backup.NewLocalService(cfg.BackupDir, store.Snapshot, store.RestoreSnapshot)
		sync := backup.NewSyncManager(service, notifier, cfg.SyncAccount,
			time.Duration(cfg.SyncDebounceSeconds)*time.Second)
		sync.Start(ctx)
		defer sync.Stop()
	}

	srv := server.New(store, manager, projector, standings)
	httpServer := &http.Server{Addr: cfg.Addr, Handler: srv.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("scores-keeper server listening on %s", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
