package observability_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nilsmagnus/tcpsndwnd/header"
	"github.com/nilsmagnus/tcpsndwnd/observability"
	"github.com/nilsmagnus/tcpsndwnd/seqnum"
	"github.com/nilsmagnus/tcpsndwnd/transport/tcp"
	"github.com/nilsmagnus/tcpsndwnd/tsclock"
)

func TestCollectorReportsWindowState(t *testing.T) {
	t0 := time.Now()
	w, err := tcp.NewWindow(tsclock.Config{Frequency: 1000}, 1000, 4000, tsclock.New(0, t0), nil)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	build := func(tsVal uint32, seq seqnum.Value) header.TCP {
		return header.TCP{SeqNum: seq, Flags: header.FlagAck}
	}
	w.QueueSegment(t0, build, make([]byte, 500))

	c := observability.NewCollector("tcpsnd", []string{"conn"}, nil)
	c.Add("conn-1", w, []string{"conn-1"})

	if got := testutil.CollectAndCount(c, "tcpsnd_snd_nxt", "tcpsnd_retransmit_queue_len"); got != 2 {
		t.Fatalf("CollectAndCount: got %d samples, want 2", got)
	}

	c.Remove("conn-1")
	if got := testutil.CollectAndCount(c, "tcpsnd_snd_nxt"); got != 0 {
		t.Fatalf("CollectAndCount after Remove: got %d, want 0", got)
	}
}

func TestObserveRTTAndRTOStart(t *testing.T) {
	c := observability.NewCollector("tcpsnd", []string{"conn"}, nil)
	c.ObserveRTT([]string{"conn-1"}, 0.05)
	c.ObserveRTOStart([]string{"conn-1"})

	if got := testutil.CollectAndCount(c, "tcpsnd_rto_starts_total"); got != 1 {
		t.Fatalf("CollectAndCount rto_starts_total: got %d, want 1", got)
	}
	if got := testutil.CollectAndCount(c, "tcpsnd_rtt_seconds"); got != 1 {
		t.Fatalf("CollectAndCount rtt_seconds: got %d, want 1", got)
	}
}
