// Package tcp implements the sender-side transmission control core: the
// retransmit queue, flow-control window bookkeeping, RTT sampling and SACK
// processing for one TCP connection. It is a pure state machine — every
// exported entry point mutates a Window in place and returns whatever
// should be emitted; it performs no wire I/O, no timer scheduling and no
// socket-API work of its own.
package tcp

import (
	"time"

	"github.com/nilsmagnus/tcpsndwnd/buffer"
	"github.com/nilsmagnus/tcpsndwnd/header"
	"github.com/nilsmagnus/tcpsndwnd/ilist"
	"github.com/nilsmagnus/tcpsndwnd/seqnum"
)

// Segment is an immutable-in-shape record describing one outstanding
// transmission. It can be linked into an intrusive list via its embedded
// segmentEntry.
type Segment struct {
	segmentEntry

	hdr       header.TCP
	rightEdge seqnum.Value
	body      buffer.View

	// sentAt is the wall-clock time of the original transmission. It is
	// cleared (hasSentAt = false) when the segment is retransmitted, so it
	// no longer yields an RTT sample (Karn's algorithm).
	sentAt    time.Time
	hasSentAt bool

	// sacked is true iff the segment has been covered by a received SACK
	// block. Only the SACK processor sets it; only retransmitTimeout
	// clears it.
	sacked bool

	// retransmitCount counts how many times retransmitTimeout has resent
	// this segment. Informational only — the core never reads it to make
	// scheduling decisions, since retransmit timer scheduling is external
	// to this core.
	retransmitCount uint32
}

// segmentEntry lets *Segment be linked into an ilist.List without a separate
// allocation.
type segmentEntry struct {
	ilist.Entry
}

// newSegment builds a Segment for freshly queued data. hdr.SeqNum must
// already be set to the sequence number this segment starts at; rightEdge
// is computed from hdr's flags and the length of body:
// rightEdge = seqNum + len(body) + (SYN?1:0) + (FIN?1:0).
func newSegment(hdr header.TCP, body buffer.View, sentAt time.Time) *Segment {
	s := &Segment{
		hdr:       hdr,
		body:      body,
		sentAt:    sentAt,
		hasSentAt: true,
	}
	s.rightEdge = hdr.SeqNum.Add(hdr.SeqLen(len(body)))
	return s
}

// Header returns the segment's header, the thing the caller should emit.
func (s *Segment) Header() header.TCP { return s.hdr }

// Body returns the segment's payload, the thing the caller should emit.
func (s *Segment) Body() buffer.View { return s.body }

// LeftEdge is the sequence number of this segment's first byte.
func (s *Segment) LeftEdge() seqnum.Value { return s.hdr.SeqNum }

// RightEdge is the cached sequence number of the first byte after this
// segment's contribution (read-only; always the cached
// value, never recomputed from hdr).
func (s *Segment) RightEdge() seqnum.Value { return s.rightEdge }

// logicalLen is the segment's contribution to the sequence number space.
func (s *Segment) logicalLen() seqnum.Size {
	return s.LeftEdge().Size(s.rightEdge)
}

// SACKed reports whether this segment has been marked covered by a SACK
// block.
func (s *Segment) SACKed() bool { return s.sacked }

// RetransmitCount reports how many times this segment has been handed back
// to the caller by retransmitTimeout.
func (s *Segment) RetransmitCount() uint32 { return s.retransmitCount }

// setLeftEdge trims the segment's left edge to sn. If
// sn <= the current left edge the segment is unchanged. Otherwise the SYN
// flag (if set) is consumed as the first sequence-number unit, the
// remaining bytes are dropped from the front of body, and hdr.SeqNum
// becomes sn. rightEdge is never touched: it is a cached value describing
// the segment's original extent in sequence space.
func (s *Segment) setLeftEdge(sn seqnum.Value) {
	if sn.LessThanEq(s.LeftEdge()) {
		return
	}
	length := int(s.LeftEdge().Size(sn))
	if s.hdr.SYN() {
		s.hdr.ClearSYN()
		length--
	}
	if length > 0 {
		s.body.TrimFront(length)
	}
	s.hdr.SeqNum = sn
}

// clearSACK clears the segment's SACK flag, as retransmitTimeout does for
// every queued segment.
func (s *Segment) clearSACK() { s.sacked = false }

// markRetransmitted clears sentAt (Karn's algorithm) and bumps
// retransmitCount, as retransmitTimeout does for the segment it resends.
func (s *Segment) markRetransmitted() {
	s.hasSentAt = false
	s.retransmitCount++
}
