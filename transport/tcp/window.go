package tcp

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nilsmagnus/tcpsndwnd/buffer"
	"github.com/nilsmagnus/tcpsndwnd/header"
	"github.com/nilsmagnus/tcpsndwnd/ilist"
	"github.com/nilsmagnus/tcpsndwnd/seqnum"
	"github.com/nilsmagnus/tcpsndwnd/tsclock"
)

// Window holds SND.NXT, SND.WND, SND.AVAIL and the ordered retransmit queue
// for one TCP connection. It is mutated in place through the
// methods below — the spec's design notes (§9) explicitly prefer in-place
// mutation behind a per-connection lock over record-update-style copying in
// a systems language, which is the idiom this type follows: each method is
// the Go rendition of the spec's pure (Window, event) -> (Window, output)
// entry point, expressed as a mutating method that returns the output half
// of that pair.
//
// A Window is owned by exactly one connection; the enclosing stack must
// serialize all calls on a given Window (see GuardedWindow for a
// ready-made single-writer wrapper).
type Window struct {
	retransmitQueue ilist.List
	queueLen        int

	sndNxt seqnum.Value
	sndWnd seqnum.Size

	// sndAvail is signed because a peer window shrink (UpdateSndWnd) can
	// transiently drive it negative; callers must not read it
	// as a byte count without checking its sign first.
	sndAvail int64

	cfg     tsclock.Config
	tsClock tsclock.Clock

	log *logrus.Entry
}

// NewWindow constructs a Window with the given initial SND.NXT, SND.WND and
// Timestamp Clock configuration. log may be nil, in which case the Window
// emits no log lines — logging is the enclosing stack's responsibility
// this is an optional hook, not a requirement.
func NewWindow(cfg tsclock.Config, sndNxt seqnum.Value, sndWnd seqnum.Size, clock tsclock.Clock, log *logrus.Entry) (*Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Window{
		sndNxt:   sndNxt,
		sndWnd:   sndWnd,
		sndAvail: int64(sndWnd),
		cfg:      cfg,
		tsClock:  clock,
		log:      log,
	}, nil
}

// SndNxt is the next sequence number to assign to new data.
func (w *Window) SndNxt() seqnum.Value { return w.sndNxt }

// SndWnd is the last advertised receive window of the peer.
func (w *Window) SndWnd() seqnum.Size { return w.sndWnd }

// SndAvail is the currently usable window. It may be negative immediately
// after a peer window shrink.
func (w *Window) SndAvail() int64 { return w.sndAvail }

// SndUna is the derived left edge of the send window: the head of the
// retransmit queue, or SndNxt if the queue is empty.
func (w *Window) SndUna() seqnum.Value {
	if front := w.front(); front != nil {
		return front.LeftEdge()
	}
	return w.sndNxt
}

// NullWindow reports whether the retransmit queue is empty.
func (w *Window) NullWindow() bool { return w.queueLen == 0 }

// QueueLen reports the number of outstanding (unacknowledged) segments.
func (w *Window) QueueLen() int { return w.queueLen }

// Probing reports whether the connection is blocked behind a zero (or
// shrunk-negative) send window with data already outstanding — the signal
// an enclosing stack would use to decide whether to start sending zero
// window probes. It is a pure function of existing state; it introduces
// no new state of its own.
func (w *Window) Probing() bool {
	return w.sndAvail <= 0 && w.queueLen > 0
}

// Front returns the oldest outstanding segment (the retransmit queue head),
// or nil if the queue is empty.
func (w *Window) Front() *Segment { return w.front() }

// Segments returns every outstanding segment in queue order (oldest
// first). The returned slice is a snapshot; mutating the Window
// afterwards does not affect it.
func (w *Window) Segments() []*Segment {
	segs := make([]*Segment, 0, w.queueLen)
	for e := w.retransmitQueue.Front(); e != nil; e = e.Next() {
		segs = append(segs, e.(*Segment))
	}
	return segs
}

func (w *Window) front() *Segment {
	e := w.retransmitQueue.Front()
	if e == nil {
		return nil
	}
	return e.(*Segment)
}

// SetSndNxt assigns sndNxt, but only while the retransmit queue is empty
// used during handshake/reset. Returns whether the assignment
// was accepted.
func (w *Window) SetSndNxt(n seqnum.Value) bool {
	if !w.NullWindow() {
		return false
	}
	w.sndNxt = n
	return true
}

// UpdateSndWnd records a newly advertised peer receive window, adjusting
// SndAvail by the delta. A peer window shrink can transiently
// drive SndAvail negative; this is expected and the caller must tolerate
// it (queueSegment simply treats SndAvail <= 0 as "blocked").
func (w *Window) UpdateSndWnd(newWnd seqnum.Size) {
	delta := int64(newWnd) - int64(w.sndWnd)
	w.sndWnd = newWnd
	w.sndAvail += delta
}

// FlushWindow empties the retransmit queue without any other side effect
// used on connection abort.
func (w *Window) FlushWindow() {
	w.retransmitQueue.Reset()
	w.queueLen = 0
}

// HeaderBuilder is invoked by QueueSegment with the fresh timestamp value
// and the sequence number that will be assigned to the new segment; it
// must return the header to send.
type HeaderBuilder func(tsVal uint32, seq seqnum.Value) header.TCP

// QueueOutput is the optional emission produced by QueueSegment.
type QueueOutput struct {
	// Emit is false when the caller should not send anything at all: the
	// window is closed, and the header returned by the builder is neither
	// queued nor returned.
	Emit bool
	// StartRTO is true iff the retransmit queue transitioned from empty
	// to non-empty as a result of this call — the signal to start the
	// (externally owned) retransmit timer.
	StartRTO bool
	Header   header.TCP
	Body     buffer.View
}

// QueueSegment advances the Timestamp Clock to
// now, asks build for a header stamped with the fresh timestamp and the
// current SndNxt, and then either emits a bare control segment (zero
// sequence length), emits nothing on a closed window (it returns at once;
// it never waits for the window to open), or queues a new outstanding
// Segment trimmed to the currently available window.
func (w *Window) QueueSegment(now time.Time, build HeaderBuilder, payload buffer.View) QueueOutput {
	w.tsClock = tsclock.Update(w.cfg, now, w.tsClock)
	hdr := build(w.tsClock.Value, w.sndNxt)

	if hdr.SeqLen(len(payload)) == 0 {
		// Pure control segment (e.g. a bare ACK): nothing to queue.
		return QueueOutput{Emit: true, Header: hdr}
	}

	if w.sndAvail <= 0 {
		w.logDebug("queueSegment: window closed, dropping payload", logrus.Fields{
			"sndAvail": w.sndAvail,
		})
		return QueueOutput{}
	}

	trimmed := buffer.Take(int(w.sndAvail), payload)
	seg := newSegment(hdr, trimmed, now)
	seqLen := seg.logicalLen()

	startRTO := w.NullWindow()
	w.retransmitQueue.PushBack(seg)
	w.queueLen++
	w.sndAvail -= int64(seqLen)
	w.sndNxt = w.sndNxt.Add(seqLen)

	return QueueOutput{
		Emit:     true,
		StartRTO: startRTO,
		Header:   seg.Header(),
		Body:     seg.Body(),
	}
}

// AckOutput is the optional emission produced by AckSegment.
type AckOutput struct {
	// Valid is false when the ACK was out of window: the Window was left
	// unchanged and the remaining fields are meaningless.
	Valid bool
	// QueueEmpty is true iff the retransmit queue is empty after applying
	// this ACK.
	QueueEmpty bool
	// HasRTT reports whether RTT carries a usable sample.
	HasRTT bool
	RTT    time.Duration
	// DupAck is true when this ACK acknowledged no new data on an
	// already-non-empty queue. Congestion control built atop this core
	// can use it to drive fast retransmit; this core makes no decision
	// based on it itself.
	DupAck bool
}

// AckSegment processes a cumulative ACK. An ACK is
// in-window iff SndUna <= ack <= SndNxt (modular); out-of-window ACKs are a
// silent no-op.
func (w *Window) AckSegment(now time.Time, ack seqnum.Value) AckOutput {
	sndUnaBefore := w.SndUna()
	if !inWindowInclusive(sndUnaBefore, ack, w.sndNxt) {
		return AckOutput{}
	}

	if ack == sndUnaBefore {
		return AckOutput{Valid: true, QueueEmpty: w.NullWindow(), DupAck: !w.NullWindow()}
	}

	var acked []*Segment
	for {
		front := w.front()
		if front == nil {
			break
		}
		if front.RightEdge().LessThanEq(ack) {
			w.retransmitQueue.Remove(front)
			w.queueLen--
			acked = append(acked, front)
			continue
		}
		if front.LeftEdge().LessThan(ack) {
			front.setLeftEdge(ack)
		}
		break
	}

	w.sndAvail += int64(sndUnaBefore.Size(ack))
	w.tsClock = tsclock.Update(w.cfg, now, w.tsClock)

	out := AckOutput{Valid: true, QueueEmpty: w.NullWindow()}
	if newest := mostRecentlyAcked(acked); newest != nil {
		if ts, ok := newest.Header().TS(); ok {
			out.RTT = tsclock.MeasureRTT(w.cfg, ts.TSecr, w.tsClock)
			out.HasRTT = true
		} else if oldest := oldestWithSentAt(acked); oldest != nil {
			out.RTT = now.Sub(oldest.sentAt)
			out.HasRTT = true
		}
	}
	return out
}

// mostRecentlyAcked returns the acked segment with the highest RightEdge —
// since acked is walked oldest-to-newest and segments are strictly ordered,
// that is simply the last element.
func mostRecentlyAcked(acked []*Segment) *Segment {
	if len(acked) == 0 {
		return nil
	}
	return acked[len(acked)-1]
}

// oldestWithSentAt returns the first (oldest) acked segment that still
// carries a sentAt timestamp, i.e. was never retransmitted (Karn's
// algorithm).
func oldestWithSentAt(acked []*Segment) *Segment {
	for _, seg := range acked {
		if seg.hasSentAt {
			return seg
		}
	}
	return nil
}

func inWindowInclusive(lo, v, hi seqnum.Value) bool {
	return lo.LessThanEq(v) && v.LessThanEq(hi)
}

// RetransmitOutput is the optional emission produced by RetransmitTimeout.
type RetransmitOutput struct {
	Ok     bool
	Header header.TCP
	Body   buffer.View
}

// RetransmitTimeout resends the oldest outstanding segment. It is idempotent on an empty
// queue. It never advances the Timestamp Clock (see DESIGN.md's Open
// Question decision: advancing it here would skew subsequent RTT samples).
func (w *Window) RetransmitTimeout() RetransmitOutput {
	head := w.front()
	if head == nil {
		return RetransmitOutput{}
	}

	for e := w.retransmitQueue.Front(); e != nil; e = e.Next() {
		e.(*Segment).clearSACK()
	}
	head.markRetransmitted()

	w.logDebug("retransmitTimeout: resending head segment", logrus.Fields{
		"seq":   head.LeftEdge(),
		"count": head.RetransmitCount(),
	})

	return RetransmitOutput{Ok: true, Header: head.Header(), Body: head.Body()}
}

func (w *Window) logDebug(msg string, fields logrus.Fields) {
	if w.log == nil {
		return
	}
	w.log.WithFields(fields).Debug(msg)
}
