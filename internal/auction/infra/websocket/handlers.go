package websocket

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/cristianortiz/liveAuction/internal/auction/application"
	"github.com/cristianortiz/liveAuction/internal/auction/domain"
	"github.com/cristianortiz/liveAuction/internal/shared/logger"
	"github.com/cristianortiz/liveAuction/internal/shared/websocket"
)

var log = logger.GetLogger()

// AuctionWSHandler is the session gateway: it consumes inbound frames from the
// hub, routes bids into the acceptance protocol, and answers rejections to the
// submitting session only. Accepted bids reach the submitter through the
// broadcast fan-out like every other observer.
type AuctionWSHandler struct {
	auctionService application.AuctionService
	hub            *websocket.Hub
}

// NewAuctionWSHandler creates the gateway handler.
func NewAuctionWSHandler(auctionService application.AuctionService, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		auctionService: auctionService,
		hub:            hub,
	}
}

// ListenForMessages consumes the hub's inbound channel until the context ends.
// Each frame is processed on its own goroutine, one conceptual flow per bid.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("Auction gateway listening for inbound messages")
	for {
		select {
		case <-ctx.Done():
			log.Info("Auction gateway stopped")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, domain.ReasonBadRequest, "invalid message format")
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientBid:
		h.handleClientBid(ctx, client, data)
	default:
		h.sendErrorToClient(client, domain.ReasonBadRequest, "unknown message type")
	}
}

func (h *AuctionWSHandler) handleClientBid(ctx context.Context, client *websocket.Client, data []byte) {
	req, err := parseBidRequest(data)
	if err != nil {
		h.sendErrorToClient(client, domain.ReasonBadRequest, "malformed bid")
		return
	}

	outcome := h.auctionService.PlaceBid(ctx, req)
	if outcome.Accepted {
		// The broadcaster already fanned the update out to every session,
		// including this one. Nothing to reply.
		return
	}
	h.sendErrorToClient(client, outcome.Reason, rejectionText(outcome.Reason))
}

// sendErrorToClient serializes a rejection and queues it for one session.
// The session may have disconnected while the bid was in flight; TrySend
// reports that instead of touching a closed queue, and the rejection is
// simply dropped with the connection.
func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, reason domain.RejectReason, message string) {
	data, err := json.Marshal(newErrorMessage(reason, message))
	if err != nil {
		log.Error("failed to marshal error message", zap.Error(err))
		return
	}
	if !client.TrySend(data) {
		log.Warn("client gone or not draining, dropping rejection",
			zap.String("clientID", client.ID),
		)
	}
}

func rejectionText(reason domain.RejectReason) string {
	switch reason {
	case domain.ReasonItemNotFound:
		return "unknown auction item"
	case domain.ReasonTooLow:
		return "bid too low"
	case domain.ReasonOutbid:
		return "outbid, someone else just placed a bid"
	case domain.ReasonStoreUnavailable:
		return "bid could not be processed, try again"
	default:
		return "bad request"
	}
}

// HubBroadcaster adapts the shared hub to domain.Broadcaster: it serializes
// one server_bid_update frame per accepted bid and hands it to the hub with
// the committed revision for ordering.
type HubBroadcaster struct {
	hub *websocket.Hub
}

func NewHubBroadcaster(hub *websocket.Hub) *HubBroadcaster {
	return &HubBroadcaster{hub: hub}
}

// Publish implements domain.Broadcaster.
func (b *HubBroadcaster) Publish(update domain.BidUpdate) {
	data, err := json.Marshal(newBidUpdateMessage(update))
	if err != nil {
		log.Error("failed to marshal bid update", zap.Error(err))
		return
	}
	b.hub.Broadcast(update.ItemID, update.Revision, data)
}
