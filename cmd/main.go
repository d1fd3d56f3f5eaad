package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cristianortiz/liveAuction/internal/auction/application"
	"github.com/cristianortiz/liveAuction/internal/auction/domain"
	"github.com/cristianortiz/liveAuction/internal/auction/infra/events"
	"github.com/cristianortiz/liveAuction/internal/auction/infra/httpapi"
	"github.com/cristianortiz/liveAuction/internal/auction/infra/repository/memory"
	"github.com/cristianortiz/liveAuction/internal/auction/infra/repository/postgres"
	"github.com/cristianortiz/liveAuction/internal/auction/infra/repository/redisstore"
	auctionws "github.com/cristianortiz/liveAuction/internal/auction/infra/websocket"
	"github.com/cristianortiz/liveAuction/internal/shared/config"
	"github.com/cristianortiz/liveAuction/internal/shared/db"
	"github.com/cristianortiz/liveAuction/internal/shared/db/migrations"
	"github.com/cristianortiz/liveAuction/internal/shared/httpserver"
	"github.com/cristianortiz/liveAuction/internal/shared/logger"
	sharedws "github.com/cristianortiz/liveAuction/internal/shared/websocket"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	cfg := config.Load()
	log.Info("Starting liveAuction server...",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.StoreBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := buildStore(ctx, cfg)

	// Seeding must finish before the gateway accepts any connection; it is the
	// only place unconditional writes are allowed.
	if err := application.SeedCatalog(ctx, store, application.DefaultCatalog(time.Now())); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}

	hub := sharedws.NewHub()
	// Anchor the fan-out ordering gate at the seeded revisions before any
	// update can flow.
	seeded, err := store.List(ctx)
	if err != nil {
		log.Fatal("Listing seeded items failed", zap.Error(err))
	}
	for _, item := range seeded {
		hub.SetBaseline(item.ID, item.Revision)
	}
	go hub.Run(ctx)

	broadcaster := buildBroadcaster(cfg, hub)

	service := application.NewAuctionService(
		application.NewPlaceBidUseCase(store, broadcaster),
		application.NewListItemsUseCase(store),
	)

	gateway := auctionws.NewAuctionWSHandler(service, hub)
	go gateway.ListenForMessages(ctx)

	server := httpserver.NewServer()
	httpapi.RegisterRoutes(ctx, server.App(), service, hub)

	if err := server.Start(cfg.Addr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}

// buildStore selects the ItemStore backend. Memory is the default; redis and
// postgres share the same CAS contract over their native primitives.
func buildStore(ctx context.Context, cfg config.Config) domain.ItemStore {
	log := logger.GetLogger()

	switch cfg.StoreBackend {
	case "postgres":
		log.Info("Running database migrations...")
		if err := migrations.RunMigrations(); err != nil {
			log.Fatal("Database migration failed", zap.Error(err))
		}
		pool, err := db.GetPostgresDBPool(ctx)
		if err != nil {
			log.Fatal("Database connection failed", zap.Error(err))
		}
		return postgres.NewItemStore(pool)

	case "redis":
		store, err := redisstore.NewItemStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("Redis connection failed", zap.Error(err))
		}
		return store

	default:
		return memory.NewItemStore()
	}
}

// buildBroadcaster wires the websocket hub fan-out, plus the NATS event
// publisher when configured.
func buildBroadcaster(cfg config.Config, hub *sharedws.Hub) domain.Broadcaster {
	hubBroadcaster := auctionws.NewHubBroadcaster(hub)
	if cfg.NATSURL == "" {
		return hubBroadcaster
	}

	publisher, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		logger.GetLogger().Fatal("NATS connection failed", zap.Error(err))
	}
	return application.NewFanoutBroadcaster(hubBroadcaster, publisher)
}
