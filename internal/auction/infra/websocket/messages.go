package websocket

import (
	"encoding/json"
	"errors"

	"github.com/cristianortiz/liveAuction/internal/auction/application"
	"github.com/cristianortiz/liveAuction/internal/auction/domain"
)

// MessageType identifies a websocket frame.
type MessageType string

const (
	MessageTypeClientBid          MessageType = "client_bid"           // client submits a bid
	MessageTypeServerBidUpdate    MessageType = "server_bid_update"    // broadcast: a bid was accepted
	MessageTypeServerError        MessageType = "server_error"         // rejection, sent only to the submitter
	MessageTypeServerInitialState MessageType = "server_initial_state" // catalog snapshot on connect
)

// BaseMessage is the envelope all frames share.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is a bid submitted by the client.
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		ItemID   string `json:"item_id"`
		Amount   int64  `json:"amount"`
		BidderID string `json:"bidder_id"`
	} `json:"payload"`
}

// ServerBidUpdateMessage announces an accepted bid to every session.
type ServerBidUpdateMessage struct {
	BaseMessage
	Payload struct {
		ItemID   string `json:"item_id"`
		NewBid   int64  `json:"new_bid"`
		BidderID string `json:"bidder_id"`
	} `json:"payload"`
}

// ServerErrorMessage reports a rejection to the submitting session.
type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Reason  domain.RejectReason `json:"reason"`
		Message string              `json:"message"`
	} `json:"payload"`
}

// ServerInitialStateMessage carries the full catalog to a session that just
// connected, so it can render without an extra HTTP round trip.
type ServerInitialStateMessage struct {
	BaseMessage
	Payload struct {
		Items []application.ItemDTO `json:"items"`
	} `json:"payload"`
}

var errBadBidMessage = errors.New("malformed bid message")

// parseBidRequest decodes and validates a client_bid frame. Missing fields and
// non-numeric amounts fail here, before the protocol ever runs.
func parseBidRequest(data []byte) (domain.BidRequest, error) {
	var msg ClientBidMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return domain.BidRequest{}, errBadBidMessage
	}
	if msg.Payload.ItemID == "" || msg.Payload.BidderID == "" || msg.Payload.Amount <= 0 {
		return domain.BidRequest{}, errBadBidMessage
	}
	return domain.BidRequest{
		ItemID:   msg.Payload.ItemID,
		Amount:   msg.Payload.Amount,
		BidderID: msg.Payload.BidderID,
	}, nil
}

func newBidUpdateMessage(update domain.BidUpdate) ServerBidUpdateMessage {
	msg := ServerBidUpdateMessage{BaseMessage: BaseMessage{Type: MessageTypeServerBidUpdate}}
	msg.Payload.ItemID = update.ItemID
	msg.Payload.NewBid = update.NewBid
	msg.Payload.BidderID = update.BidderID
	return msg
}

func newErrorMessage(reason domain.RejectReason, message string) ServerErrorMessage {
	msg := ServerErrorMessage{BaseMessage: BaseMessage{Type: MessageTypeServerError}}
	msg.Payload.Reason = reason
	msg.Payload.Message = message
	return msg
}

// NewInitialStateMessage builds the snapshot frame pushed on connect.
func NewInitialStateMessage(items []application.ItemDTO) ServerInitialStateMessage {
	msg := ServerInitialStateMessage{BaseMessage: BaseMessage{Type: MessageTypeServerInitialState}}
	msg.Payload.Items = items
	return msg
}
