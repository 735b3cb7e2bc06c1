// Package checker provides composable assertion helpers for tests against
// the transport/tcp package, built the same way a functional-options test
// helper is: a checker is a closure over the expected value, and callers
// combine as many as they need in one call.
package checker

import (
	"testing"

	"github.com/nilsmagnus/tcpsndwnd/seqnum"
	"github.com/nilsmagnus/tcpsndwnd/transport/tcp"
)

// WindowChecker is a function that checks one property of a Window.
type WindowChecker func(*testing.T, *tcp.Window)

// Window runs every checker against w. For example, to assert SND.UNA and
// the retransmit queue depth in one call:
//
//	checker.Window(t, w, checker.SndUna(x), checker.QueueLen(n))
func Window(t *testing.T, w *tcp.Window, checkers ...WindowChecker) {
	t.Helper()
	for _, c := range checkers {
		c(t, w)
	}
}

// SndNxt checks Window.SndNxt.
func SndNxt(want seqnum.Value) WindowChecker {
	return func(t *testing.T, w *tcp.Window) {
		t.Helper()
		if got := w.SndNxt(); got != want {
			t.Errorf("SndNxt: got %v, want %v", got, want)
		}
	}
}

// SndUna checks Window.SndUna.
func SndUna(want seqnum.Value) WindowChecker {
	return func(t *testing.T, w *tcp.Window) {
		t.Helper()
		if got := w.SndUna(); got != want {
			t.Errorf("SndUna: got %v, want %v", got, want)
		}
	}
}

// SndWnd checks Window.SndWnd.
func SndWnd(want seqnum.Size) WindowChecker {
	return func(t *testing.T, w *tcp.Window) {
		t.Helper()
		if got := w.SndWnd(); got != want {
			t.Errorf("SndWnd: got %v, want %v", got, want)
		}
	}
}

// SndAvail checks Window.SndAvail.
func SndAvail(want int64) WindowChecker {
	return func(t *testing.T, w *tcp.Window) {
		t.Helper()
		if got := w.SndAvail(); got != want {
			t.Errorf("SndAvail: got %v, want %v", got, want)
		}
	}
}

// QueueLen checks Window.QueueLen.
func QueueLen(want int) WindowChecker {
	return func(t *testing.T, w *tcp.Window) {
		t.Helper()
		if got := w.QueueLen(); got != want {
			t.Errorf("QueueLen: got %v, want %v", got, want)
		}
	}
}

// NullWindow checks Window.NullWindow.
func NullWindow(want bool) WindowChecker {
	return func(t *testing.T, w *tcp.Window) {
		t.Helper()
		if got := w.NullWindow(); got != want {
			t.Errorf("NullWindow: got %v, want %v", got, want)
		}
	}
}

// Probing checks Window.Probing.
func Probing(want bool) WindowChecker {
	return func(t *testing.T, w *tcp.Window) {
		t.Helper()
		if got := w.Probing(); got != want {
			t.Errorf("Probing: got %v, want %v", got, want)
		}
	}
}

// SegmentChecker is a function that checks one property of a Segment.
type SegmentChecker func(*testing.T, *tcp.Segment)

// Segment runs every checker against seg. For example:
//
//	checker.Segment(t, seg, checker.LeftEdge(x), checker.SACKed(true))
func Segment(t *testing.T, seg *tcp.Segment, checkers ...SegmentChecker) {
	t.Helper()
	for _, c := range checkers {
		c(t, seg)
	}
}

// LeftEdge checks Segment.LeftEdge.
func LeftEdge(want seqnum.Value) SegmentChecker {
	return func(t *testing.T, seg *tcp.Segment) {
		t.Helper()
		if got := seg.LeftEdge(); got != want {
			t.Errorf("LeftEdge: got %v, want %v", got, want)
		}
	}
}

// RightEdge checks Segment.RightEdge.
func RightEdge(want seqnum.Value) SegmentChecker {
	return func(t *testing.T, seg *tcp.Segment) {
		t.Helper()
		if got := seg.RightEdge(); got != want {
			t.Errorf("RightEdge: got %v, want %v", got, want)
		}
	}
}

// SACKed checks Segment.SACKed.
func SACKed(want bool) SegmentChecker {
	return func(t *testing.T, seg *tcp.Segment) {
		t.Helper()
		if got := seg.SACKed(); got != want {
			t.Errorf("SACKed: got %v, want %v", got, want)
		}
	}
}

// RetransmitCount checks Segment.RetransmitCount.
func RetransmitCount(want uint32) SegmentChecker {
	return func(t *testing.T, seg *tcp.Segment) {
		t.Helper()
		if got := seg.RetransmitCount(); got != want {
			t.Errorf("RetransmitCount: got %v, want %v", got, want)
		}
	}
}
