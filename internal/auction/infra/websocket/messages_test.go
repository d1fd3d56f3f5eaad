package websocket

import (
	"testing"

	"github.com/cristianortiz/liveAuction/internal/auction/domain"
)

// TestParseBidRequestValid ensures a well-formed frame maps to a BidRequest.
func TestParseBidRequestValid(t *testing.T) {
	data := []byte(`{"type":"client_bid","payload":{"item_id":"1","amount":1010,"bidder_id":"u1"}}`)
	req, err := parseBidRequest(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := domain.BidRequest{ItemID: "1", Amount: 1010, BidderID: "u1"}
	if req != want {
		t.Fatalf("got %+v want %+v", req, want)
	}
}

// TestParseBidRequestMalformed rejects every malformed variant before the
// protocol runs.
func TestParseBidRequestMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":           `{{`,
		"non-numeric amount": `{"type":"client_bid","payload":{"item_id":"1","amount":"lots","bidder_id":"u1"}}`,
		"missing item id":    `{"type":"client_bid","payload":{"amount":10,"bidder_id":"u1"}}`,
		"missing bidder id":  `{"type":"client_bid","payload":{"item_id":"1","amount":10}}`,
		"missing amount":     `{"type":"client_bid","payload":{"item_id":"1","bidder_id":"u1"}}`,
		"negative amount":    `{"type":"client_bid","payload":{"item_id":"1","amount":-5,"bidder_id":"u1"}}`,
	}
	for name, frame := range cases {
		if _, err := parseBidRequest([]byte(frame)); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}
