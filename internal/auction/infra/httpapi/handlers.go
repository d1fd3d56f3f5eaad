package httpapi

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cristianortiz/liveAuction/internal/auction/application"
	auctionws "github.com/cristianortiz/liveAuction/internal/auction/infra/websocket"
	"github.com/cristianortiz/liveAuction/internal/shared/logger"
	sharedws "github.com/cristianortiz/liveAuction/internal/shared/websocket"
)

var log = logger.GetLogger()

// RegisterRoutes mounts the auction module's HTTP surface: the read-only
// listing projection and the websocket session endpoint. ctx bounds the
// lifetime of every session spawned from /ws.
func RegisterRoutes(ctx context.Context, app *fiber.App, svc application.AuctionService, hub *sharedws.Hub) {
	app.Get("/items", handleListItems(svc))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		serveSession(ctx, conn, svc, hub)
	}))
}

// handleListItems serves the catalog projection straight from the store.
func handleListItems(svc application.AuctionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListItems(c.Context())
		if err != nil {
			log.Error("failed to list items", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch items",
			})
		}
		return c.JSON(items)
	}
}

// serveSession runs one websocket session: register with the hub, push the
// initial catalog snapshot, then pump until disconnect. Runs on the upgraded
// connection's goroutine; ReadPump blocks until the peer goes away.
func serveSession(ctx context.Context, conn *websocket.Conn, svc application.AuctionService, hub *sharedws.Hub) {
	client := sharedws.NewClient(hub, conn, uuid.NewString())
	hub.RegisterClient(client)

	if items, err := svc.ListItems(ctx); err == nil {
		if data, err := json.Marshal(auctionws.NewInitialStateMessage(items)); err == nil {
			client.TrySend(data)
		}
	} else {
		log.Warn("failed to build initial state for session",
			zap.String("clientID", client.ID),
			zap.Error(err),
		)
	}

	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
