package websocket

import (
	"bytes"
	"context"
	"sync"
	"testing"
)

// TestHubUnregisterTearsDownSessionSafely registers a session, unregisters it,
// then races late sends against the teardown: nothing may panic and the gone
// session must not receive the broadcast.
func TestHubUnregisterTearsDownSessionSafely(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	hub.SetBaseline("X", 1)
	go hub.Run(ctx)

	client := NewClient(hub, nil, "gone")
	hub.RegisterClient(client)
	hub.UnregisterClient(client)

	// The hub closes the queue when it processes the unregister; draining
	// until closed is the deterministic way to observe the teardown.
	for {
		if _, ok := <-client.Send; !ok {
			break
		}
	}

	// Late writers racing the disconnect: rejections from the gateway and a
	// committed update fanning out. None may panic.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if client.TrySend([]byte("rejection")) {
				t.Error("send to torn-down session must report failure")
			}
		}()
	}
	hub.Broadcast("X", 2, []byte("update"))
	wg.Wait()
}

// TestHubBroadcastSkipsUnregisteredClient ensures an update committed after a
// session left is delivered to the remaining session only.
func TestHubBroadcastSkipsUnregisteredClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	hub.SetBaseline("X", 1)
	go hub.Run(ctx)

	gone := NewClient(hub, nil, "gone")
	staying := NewClient(hub, nil, "staying")
	hub.RegisterClient(gone)
	hub.RegisterClient(staying)
	hub.UnregisterClient(gone)
	for {
		if _, ok := <-gone.Send; !ok {
			break
		}
	}

	hub.Broadcast("X", 2, []byte("update"))

	got := <-staying.Send
	if !bytes.Equal(got, []byte("update")) {
		t.Fatalf("remaining session got %q, want update", got)
	}
	select {
	case data, ok := <-gone.Send:
		if ok {
			t.Fatalf("gone session received %q after unregister", data)
		}
	default:
	}
}

// TestHubShutdownClosesAllSessions ensures cancelling the hub context tears
// every session down and later sends stay safe.
func TestHubShutdownClosesAllSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	client := NewClient(hub, nil, "c1")
	hub.RegisterClient(client)

	cancel()
	for {
		if _, ok := <-client.Send; !ok {
			break
		}
	}
	if client.TrySend([]byte("late")) {
		t.Fatal("send after shutdown must report failure")
	}
}
