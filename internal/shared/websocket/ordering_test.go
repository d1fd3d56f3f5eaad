package websocket

import (
	"bytes"
	"testing"
)

func deliver(t *testing.T, g *revisionGate, item string, rev uint64, data string) [][]byte {
	t.Helper()
	return g.sequence(item, rev, []byte(data))
}

// TestGateDeliversMonotonicRevisions ensures in-order updates pass one by one.
func TestGateDeliversMonotonicRevisions(t *testing.T) {
	g := newRevisionGate()
	g.setBaseline("X", 1)
	for rev := uint64(2); rev <= 5; rev++ {
		out := deliver(t, g, "X", rev, "u")
		if len(out) != 1 {
			t.Fatalf("revision %d: expected 1 frame, got %d", rev, len(out))
		}
	}
}

// TestGateDropsStaleRevisions ensures an update older than one already
// delivered for the same item never goes out.
func TestGateDropsStaleRevisions(t *testing.T) {
	g := newRevisionGate()
	g.setBaseline("X", 1)
	if out := deliver(t, g, "X", 2, "a"); len(out) != 1 {
		t.Fatalf("setup delivery failed: %v", out)
	}
	if out := deliver(t, g, "X", 2, "dup"); out != nil {
		t.Fatalf("duplicate revision must be dropped, got %d frames", len(out))
	}
}

// TestGateHoldsGapAndFlushesInOrder covers two publishes racing: the later
// commit arrives first, is held, and both go out in commit order once the
// earlier one lands.
func TestGateHoldsGapAndFlushesInOrder(t *testing.T) {
	g := newRevisionGate()
	g.setBaseline("X", 1)

	if out := deliver(t, g, "X", 3, "second"); out != nil {
		t.Fatalf("frame ahead of a gap must be held, got %d frames", len(out))
	}
	out := deliver(t, g, "X", 2, "first")
	if len(out) != 2 {
		t.Fatalf("expected gap flush of 2 frames, got %d", len(out))
	}
	if !bytes.Equal(out[0], []byte("first")) || !bytes.Equal(out[1], []byte("second")) {
		t.Fatalf("frames out of commit order: %q, %q", out[0], out[1])
	}

	// Nothing left pending; the next revision flows alone.
	if out := deliver(t, g, "X", 4, "third"); len(out) != 1 {
		t.Fatalf("expected single frame after flush, got %d", len(out))
	}
}

// TestGateFlushesMultiplePending ensures a deeper race (two held frames)
// drains fully when the gap fills.
func TestGateFlushesMultiplePending(t *testing.T) {
	g := newRevisionGate()
	g.setBaseline("X", 1)

	if out := deliver(t, g, "X", 4, "c"); out != nil {
		t.Fatal("revision 4 must be held")
	}
	if out := deliver(t, g, "X", 3, "b"); out != nil {
		t.Fatal("revision 3 must be held")
	}
	out := deliver(t, g, "X", 2, "a")
	if len(out) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(out))
	}
	for i, want := range []string{"a", "b", "c"} {
		if !bytes.Equal(out[i], []byte(want)) {
			t.Fatalf("frame %d: got %q want %q", i, out[i], want)
		}
	}
}

// TestGateTracksItemsIndependently ensures unrelated items never gate each
// other.
func TestGateTracksItemsIndependently(t *testing.T) {
	g := newRevisionGate()
	g.setBaseline("X", 1)
	g.setBaseline("Y", 1)
	if out := deliver(t, g, "X", 9, "x"); out != nil {
		t.Fatal("X ahead of gap must be held")
	}
	if out := deliver(t, g, "Y", 2, "y"); len(out) != 1 {
		t.Fatal("item Y must flow regardless of X")
	}
}

// TestGatePassesUnrevisionedTraffic ensures zero-revision messages are never
// filtered or held.
func TestGatePassesUnrevisionedTraffic(t *testing.T) {
	g := newRevisionGate()
	g.setBaseline("X", 1)
	if out := deliver(t, g, "X", 0, "info"); len(out) != 1 {
		t.Fatal("unrevisioned message must pass")
	}
}

// TestGateAnchorsUnknownItemOnFirstFrame ensures an item that was never given
// a baseline still flows, anchored at its first observed revision.
func TestGateAnchorsUnknownItemOnFirstFrame(t *testing.T) {
	g := newRevisionGate()
	if out := deliver(t, g, "Z", 7, "first"); len(out) != 1 {
		t.Fatal("first frame of unseeded item must be delivered")
	}
	if out := deliver(t, g, "Z", 8, "next"); len(out) != 1 {
		t.Fatal("successor must be delivered")
	}
	if out := deliver(t, g, "Z", 7, "old"); out != nil {
		t.Fatal("older frame must be dropped after anchoring")
	}
}
