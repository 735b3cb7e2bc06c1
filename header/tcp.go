// Package header provides the TCP header contract consumed by the
// sender-side transmission control core (see transport/tcp). It is the
// "codec layer" collaborator the core never reaches past: it never
// marshals or parses wire bytes, only the parsed field/option view a real
// wire codec would hand the core once a segment is built or received.
package header

import (
	"github.com/nilsmagnus/tcpsndwnd/seqnum"
)

// Flags that may be set in a TCP segment.
type Flags uint8

const (
	FlagFin Flags = 1 << iota
	FlagSyn
	FlagRst
	FlagPsh
	FlagAck
	FlagUrg
)

// Contains reports whether f has every bit of other set.
func (f Flags) Contains(other Flags) bool {
	return f&other == other
}

// TimestampOption is the parsed form of the TCP Timestamp option (RFC 7323):
// TSval is the sender's own clock value at the time the segment carrying it
// was built; TSecr is the echo of a previously received TSval, used to
// compute RTT.
type TimestampOption struct {
	TSval uint32
	TSecr uint32
}

// TCP is the parsed/builder-side view of a TCP header that the sender-side
// core operates on. It is a value type, not a raw byte slice decoded lazily
// field-by-field: wire encoding of this header into bytes, and decoding
// bytes into this shape, are the external codec layer's job.
type TCP struct {
	SeqNum    seqnum.Value
	AckNum    seqnum.Value
	Flags     Flags
	Window    seqnum.Size
	Timestamp TimestampOption
	HasTS     bool
}

// SYN reports whether the SYN flag is set.
func (h TCP) SYN() bool { return h.Flags.Contains(FlagSyn) }

// FIN reports whether the FIN flag is set.
func (h TCP) FIN() bool { return h.Flags.Contains(FlagFin) }

// ClearSYN clears the SYN flag in place.
func (h *TCP) ClearSYN() { h.Flags &^= FlagSyn }

// TS returns the header's Timestamp option, if present.
func (h TCP) TS() (ts TimestampOption, ok bool) {
	return h.Timestamp, h.HasTS
}

// SeqLen is the "segment sequence length" per the glossary: payloadLen
// (the length of the body about to be sent) plus one for each of SYN/FIN.
func (h TCP) SeqLen(payloadLen int) seqnum.Size {
	l := seqnum.Size(payloadLen)
	if h.SYN() {
		l++
	}
	if h.FIN() {
		l++
	}
	return l
}
