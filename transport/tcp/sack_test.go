package tcp_test

import (
	"testing"
	"time"

	"github.com/nilsmagnus/tcpsndwnd/checker"
	"github.com/nilsmagnus/tcpsndwnd/transport/tcp"
)

func queueThree(t *testing.T, w *tcp.Window, now time.Time) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if out := w.QueueSegment(now, plainBuild, payload(500)); !out.Emit {
			t.Fatalf("QueueSegment %d: expected emission", i)
		}
	}
}

// S4 (adjusted per DESIGN.md's resolution of the S4/S5 numeric
// inconsistency): a SACK block strictly containing only the middle
// segment marks it, leaving the others in the retransmit list.
func TestHandleSackMarksMiddleSegment(t *testing.T) {
	t0 := time.Now()
	w := mustWindow(t, 1000, 4000, 0, t0)
	queueThree(t, w, t0) // A=[1000,1500) B=[1500,2000) C=[2000,2500)

	retransmit := w.HandleSack([]tcp.SackBlock{{Left: 1400, Right: 2100}})

	segs := w.Segments()
	checker.Segment(t, segs[0], checker.SACKed(false))
	checker.Segment(t, segs[1], checker.SACKed(true))
	checker.Segment(t, segs[2], checker.SACKed(false))

	if len(retransmit) != 2 {
		t.Fatalf("retransmit list: got %d entries, want 2 (A and C)", len(retransmit))
	}
	if retransmit[0].Header.SeqNum != 1000 || retransmit[1].Header.SeqNum != 2000 {
		t.Fatalf("retransmit list: got seqs %v, %v; want 1000, 2000",
			retransmit[0].Header.SeqNum, retransmit[1].Header.SeqNum)
	}
}

// S5: a SACK block whose right edge exactly equals a segment's right edge
// does not cover it (strict less-than on the exclusive right edge).
func TestHandleSackBoundaryStrictness(t *testing.T) {
	t0 := time.Now()
	w := mustWindow(t, 1500, 4000, 0, t0)
	w.QueueSegment(t0, plainBuild, payload(500)) // B=[1500,2000)

	retransmit := w.HandleSack([]tcp.SackBlock{{Left: 1500, Right: 2000}})

	checker.Segment(t, w.Front(), checker.SACKed(false))
	if len(retransmit) != 1 {
		t.Fatalf("retransmit list: got %d entries, want 1 (B remains outstanding)", len(retransmit))
	}
	if retransmit[0].Header.SeqNum != 1500 {
		t.Fatalf("retransmit list: got seq %v, want 1500", retransmit[0].Header.SeqNum)
	}
}

// Property 6: handleSack is idempotent given the same block list.
func TestHandleSackIdempotent(t *testing.T) {
	t0 := time.Now()
	w := mustWindow(t, 1000, 4000, 0, t0)
	queueThree(t, w, t0)

	blocks := []tcp.SackBlock{{Left: 1400, Right: 2100}}
	first := w.HandleSack(blocks)
	second := w.HandleSack(blocks)

	if len(first) != len(second) {
		t.Fatalf("HandleSack not idempotent: got %d then %d entries", len(first), len(second))
	}
	for i := range first {
		if first[i].Header.SeqNum != second[i].Header.SeqNum {
			t.Fatalf("HandleSack not idempotent at entry %d: got %v then %v",
				i, first[i].Header.SeqNum, second[i].Header.SeqNum)
		}
	}
}

// Invalid SACK blocks (inverted or entirely outside the current window)
// are discarded by the scanning algorithm and match no segments.
func TestHandleSackDiscardsInvalidBlocks(t *testing.T) {
	t0 := time.Now()
	w := mustWindow(t, 1000, 4000, 0, t0)
	queueThree(t, w, t0)

	retransmit := w.HandleSack([]tcp.SackBlock{
		{Left: 1500, Right: 1500}, // inverted/empty: Left == Right
		{Left: 1900, Right: 1800}, // inverted: Left > Right
		{Left: 5000, Right: 6000}, // entirely outside [sndUna, sndNxt]
	})

	for _, seg := range w.Segments() {
		checker.Segment(t, seg, checker.SACKed(false))
	}
	if len(retransmit) != 3 {
		t.Fatalf("retransmit list: got %d entries, want 3 (all segments still outstanding)", len(retransmit))
	}
}

// A segment that only partially overlaps a SACK block is not marked.
func TestHandleSackPartialOverlapNotMarked(t *testing.T) {
	t0 := time.Now()
	w := mustWindow(t, 1000, 4000, 0, t0)
	queueThree(t, w, t0) // A=[1000,1500) B=[1500,2000) C=[2000,2500)

	// Block overlaps only the back half of B and the front half of C.
	w.HandleSack([]tcp.SackBlock{{Left: 1750, Right: 2250}})

	for _, seg := range w.Segments() {
		checker.Segment(t, seg, checker.SACKed(false))
	}
}
