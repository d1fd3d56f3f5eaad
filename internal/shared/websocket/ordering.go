package websocket

// revisionGate sequences broadcast frames per item so every observer sees
// updates in store commit order. The hub loop is the single caller, so the
// order it emits is the order every client queue receives.
//
// Revisions are contiguous: each commit bumps by exactly one from the item's
// seeded baseline. A frame arriving ahead of a gap (its predecessor's publish
// still in flight) is held back and released the moment the gap fills, so a
// racing pair of publishes is reordered, not dropped. Duplicates and frames
// older than one already delivered are discarded.
type revisionGate struct {
	last    map[string]uint64
	pending map[string]map[uint64][]byte
}

func newRevisionGate() *revisionGate {
	return &revisionGate{
		last:    make(map[string]uint64),
		pending: make(map[string]map[uint64][]byte),
	}
}

// setBaseline records the revision an item was seeded at, anchoring the
// sequence before any update flows. Not safe concurrently with sequence.
func (g *revisionGate) setBaseline(itemID string, revision uint64) {
	g.last[itemID] = revision
}

// sequence accepts one frame and returns the frames now deliverable, in
// order: nil when the frame is stale or held for a predecessor, one or more
// when it (and any pending successors) can go out. Revision zero bypasses the
// gate (non-item traffic).
func (g *revisionGate) sequence(itemID string, revision uint64, data []byte) [][]byte {
	if revision == 0 {
		return [][]byte{data}
	}

	last, known := g.last[itemID]
	switch {
	case known && revision <= last:
		return nil
	case known && revision > last+1:
		if g.pending[itemID] == nil {
			g.pending[itemID] = make(map[uint64][]byte)
		}
		g.pending[itemID][revision] = data
		return nil
	}

	// In sequence, or the first frame of an unseeded item (no baseline to
	// hold against, deliver and anchor there).
	out := [][]byte{data}
	g.last[itemID] = revision
	for {
		next, ok := g.pending[itemID][g.last[itemID]+1]
		if !ok {
			break
		}
		delete(g.pending[itemID], g.last[itemID]+1)
		g.last[itemID]++
		out = append(out, next)
	}
	return out
}
