package tcp

import (
	"sort"

	"github.com/nilsmagnus/tcpsndwnd/buffer"
	"github.com/nilsmagnus/tcpsndwnd/header"
	"github.com/nilsmagnus/tcpsndwnd/seqnum"
)

// SackBlock is one selective-ack block: Left is the first acknowledged
// sequence number, Right is the first sequence number after the
// acknowledged range (exclusive, per the glossary).
type SackBlock struct {
	Left  seqnum.Value
	Right seqnum.Value
}

// valid discards blocks the scanning algorithm must silently ignore: an
// inverted/empty range, or a range that does not intersect the current
// send window at all.
func (b SackBlock) valid(sndUna, sndNxt seqnum.Value) bool {
	if !b.Left.LessThan(b.Right) {
		return false
	}
	return sndUna.LessThan(b.Right) && b.Left.LessThan(sndNxt)
}

// Retransmission is one segment the caller should resend, as reported by
// HandleSack.
type Retransmission struct {
	Header header.TCP
	Body   buffer.View
}

// HandleSack is the SACK processor sub-algorithm of the
// Send Window. It never removes segments from the retransmit queue — only
// a cumulative ACK (AckSegment) retires segments; SACK is advisory only.
func (w *Window) HandleSack(blocks []SackBlock) []Retransmission {
	sndUna, sndNxt := w.SndUna(), w.sndNxt

	sorted := make([]SackBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.valid(sndUna, sndNxt) {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Left.LessThan(sorted[j].Left)
	})

	blockIdx := 0
	for e := w.retransmitQueue.Front(); e != nil; e = e.Next() {
		seg := e.(*Segment)

		for blockIdx < len(sorted) && !seg.LeftEdge().LessThan(sorted[blockIdx].Right) {
			// segment begins at or after this block's right edge: the
			// block can never cover this or any later segment.
			blockIdx++
		}
		if blockIdx >= len(sorted) {
			continue
		}

		b := sorted[blockIdx]
		covered := b.Left.LessThanEq(seg.LeftEdge()) && seg.RightEdge().LessThan(b.Right)
		if covered {
			seg.sacked = true
		}
	}

	var out []Retransmission
	for e := w.retransmitQueue.Front(); e != nil; e = e.Next() {
		seg := e.(*Segment)
		if !seg.sacked {
			out = append(out, Retransmission{Header: seg.Header(), Body: seg.Body()})
		}
	}
	return out
}
