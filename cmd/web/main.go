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

	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/config"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/drafts"
	apphttp "github.com/ShahHussain182/ecommerce-admin-gateway/internal/http"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/http/handlers"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/imagesync"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/listcache"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/notify"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx := context.Background()

	spoolRes, err := storage.FromEnv(ctx)
	if err != nil {
		log.Fatalf("spool storage: %v", err)
	}
	logger.Info("spool storage ready", "driver", spoolRes.Driver)

	client := catalog.NewHTTPClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	// Redis is optional: without it the listing cache stays in-process
	// and the reconciler runs its pure-polling variant.
	var (
		cache listcache.Store
		feed  notify.Feed
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		cache = listcache.NewRedis(rdb, 5*time.Minute)
		feed = notify.NewRedisFeed(rdb, logger)
		logger.Info("redis ready", "addr", cfg.Redis.Addr)
	} else {
		cache = listcache.NewMemory()
		logger.Info("redis not configured; using in-memory cache and polling reconciler")
	}

	draftSvc := drafts.NewService(drafts.NewRepo(db), client, logger)

	registry := imagesync.NewRegistry(imagesync.Deps{
		Client:      client,
		Cache:       cache,
		Feed:        feed,
		Spool:       spoolRes.Storage,
		Log:         logger,
		OnProcessed: draftSvc.Autosave,
		Timing: imagesync.Timing{
			FallbackAfter: cfg.Sync.FallbackAfter,
			PollInitial:   cfg.Sync.PollInitial,
			PollMax:       cfg.Sync.PollMax,
			PollCeiling:   cfg.Sync.PollCeiling,
		},
	})

	ph := handlers.NewProductsHandler(client, cache, draftSvc, logger)
	ih := handlers.NewImagesHandler(registry, logger)
	r := apphttp.NewRouter(logger, cfg.Auth.AdminTokenHash, ph, ih)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}

	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	// Sessions first: reconcilers stop, rooms are left, spool drains.
	registry.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
