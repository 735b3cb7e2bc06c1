// Command tcpsenddemo drives a transport/tcp.Window the way an enclosing
// network stack would: it queues payload, simulates a peer sending back a
// cumulative ack for each round, and logs what the core reports back.
// It is not a real network client — it never touches a socket — it only
// exercises the send-window core end to end for observation.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/nilsmagnus/tcpsndwnd/header"
	"github.com/nilsmagnus/tcpsndwnd/observability"
	"github.com/nilsmagnus/tcpsndwnd/seqnum"
	"github.com/nilsmagnus/tcpsndwnd/transport/tcp"
	"github.com/nilsmagnus/tcpsndwnd/tsclock"
	"github.com/nilsmagnus/tcpsndwnd/waiter"
)

func main() {
	sndWnd := flag.Int("sndwnd", 8192, "initial peer receive window, in bytes")
	segSize := flag.Int("segsize", 1460, "payload bytes queued per iteration")
	iterations := flag.Int("iterations", 6, "number of send/ack rounds to simulate")
	tickHz := flag.Float64("tick-hz", 1000, "timestamp clock tick frequency")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9400)")
	flag.Parse()

	cfg := tsclock.Config{Frequency: *tickHz}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "tcpsenddemo:", err)
		os.Exit(1)
	}

	connID := xid.New().String()
	log := logrus.WithFields(logrus.Fields{"conn": connID})

	now := time.Now()
	w, err := tcp.NewWindow(cfg, 1, seqnum.Size(*sndWnd), tsclock.New(0, now), log)
	if err != nil {
		log.WithError(err).Fatal("tcpsenddemo: NewWindow failed")
	}
	guarded := tcp.NewGuardedWindow(w)

	var rtoQueue waiter.Queue
	rtoEntry, rtoCh := waiter.NewChannelEntry(nil)
	rtoQueue.EventRegister(&rtoEntry, waiter.EventRTOStart)
	defer rtoQueue.EventUnregister(&rtoEntry)

	collector := observability.NewCollector("tcpsenddemo", []string{"conn"}, nil)
	collector.Add(connID, w, []string{connID})
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collector)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			log.WithField("addr", *metricsAddr).Info("tcpsenddemo: serving /metrics")
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.WithError(err).Error("tcpsenddemo: metrics server stopped")
			}
		}()
	}

	build := func(tsVal uint32, seq seqnum.Value) header.TCP {
		return header.TCP{
			SeqNum:    seq,
			Flags:     header.FlagAck,
			Timestamp: header.TimestampOption{TSval: tsVal, TSecr: 0},
			HasTS:     true,
		}
	}

	for i := 0; i < *iterations; i++ {
		sendTime := time.Now()
		out := guarded.QueueSegment(sendTime, build, make([]byte, *segSize))
		if !out.Emit {
			log.WithField("sndAvail", w.SndAvail()).Warn("tcpsenddemo: window closed, skipping round")
			continue
		}
		log.WithFields(logrus.Fields{
			"seq": out.Header.SeqNum,
			"len": len(out.Body),
		}).Info("tcpsenddemo: queued segment")

		if out.StartRTO {
			rtoQueue.Notify(waiter.EventRTOStart)
			collector.ObserveRTOStart([]string{connID})
			select {
			case <-rtoCh:
				log.Debug("tcpsenddemo: retransmit timer armed")
			default:
			}
		}

		// Simulate the peer acknowledging everything queued so far.
		ackTime := sendTime.Add(20 * time.Millisecond)
		ack := guarded.AckSegment(ackTime, w.SndNxt())
		if ack.HasRTT {
			collector.ObserveRTT([]string{connID}, ack.RTT.Seconds())
			log.WithField("rtt", ack.RTT).Info("tcpsenddemo: rtt sample")
		}
		if ack.QueueEmpty {
			log.Debug("tcpsenddemo: retransmit queue drained")
		}
	}

	log.WithFields(logrus.Fields{
		"sndNxt": w.SndNxt(),
		"sndUna": w.SndUna(),
	}).Info("tcpsenddemo: done")
}
