package tcp

import (
	"time"

	"github.com/nilsmagnus/tcpsndwnd/buffer"
	"github.com/nilsmagnus/tcpsndwnd/seqnum"
	"github.com/nilsmagnus/tcpsndwnd/tmutex"
)

// GuardedWindow pairs a Window with the per-connection lock an enclosing
// network stack must provide: all events on a given connection need to be
// serialized, either behind a lock like this one or a single-writer
// mailbox. Window itself stays lock-free; GuardedWindow is a thin
// single-writer wrapper built on tmutex.Mutex for callers that want one.
type GuardedWindow struct {
	mu tmutex.Mutex
	w  *Window
}

// NewGuardedWindow wraps w with a per-connection lock.
func NewGuardedWindow(w *Window) *GuardedWindow {
	g := &GuardedWindow{w: w}
	g.mu.Init()
	return g
}

func (g *GuardedWindow) QueueSegment(now time.Time, build HeaderBuilder, payload buffer.View) QueueOutput {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.w.QueueSegment(now, build, payload)
}

func (g *GuardedWindow) AckSegment(now time.Time, ack seqnum.Value) AckOutput {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.w.AckSegment(now, ack)
}

func (g *GuardedWindow) RetransmitTimeout() RetransmitOutput {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.w.RetransmitTimeout()
}

func (g *GuardedWindow) HandleSack(blocks []SackBlock) []Retransmission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.w.HandleSack(blocks)
}
