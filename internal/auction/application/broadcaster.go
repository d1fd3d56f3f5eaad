package application

import "github.com/cristianortiz/liveAuction/internal/auction/domain"

// FanoutBroadcaster forwards each accepted bid to several broadcasters, e.g.
// the websocket hub plus an event publisher. Order within the slice is the
// publish order.
type FanoutBroadcaster struct {
	targets []domain.Broadcaster
}

func NewFanoutBroadcaster(targets ...domain.Broadcaster) *FanoutBroadcaster {
	return &FanoutBroadcaster{targets: targets}
}

// Publish implements domain.Broadcaster.
func (f *FanoutBroadcaster) Publish(update domain.BidUpdate) {
	for _, t := range f.targets {
		t.Publish(update)
	}
}
