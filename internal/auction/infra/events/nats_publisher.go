package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/cristianortiz/liveAuction/internal/auction/domain"
	"github.com/cristianortiz/liveAuction/internal/shared/logger"
)

var log = logger.GetLogger()

// BidEvent is the wire shape published for each accepted bid, for downstream
// consumers (archival, analytics) outside the websocket fan-out.
type BidEvent struct {
	ItemID    string    `json:"item_id"`
	NewBid    int64     `json:"new_bid"`
	BidderID  string    `json:"bidder_id"`
	Revision  uint64    `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSPublisher implements domain.Broadcaster over NATS core publish, subject
// bid.events.<itemID>. Best effort: a publish failure is logged, never
// surfaced to the bidder, and never blocks the accept path.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the given NATS URL.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("liveAuction"))
	if err != nil {
		return nil, fmt.Errorf("nats publisher: connect: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish implements domain.Broadcaster.
func (p *NATSPublisher) Publish(update domain.BidUpdate) {
	event := BidEvent{
		ItemID:    update.ItemID,
		NewBid:    update.NewBid,
		BidderID:  update.BidderID,
		Revision:  update.Revision,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal bid event", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("bid.events.%s", update.ItemID)
	if err := p.conn.Publish(subject, data); err != nil {
		log.Warn("failed to publish bid event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
