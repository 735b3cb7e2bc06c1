package tsclock

import (
	"testing"
	"time"
)

func TestUpdateAdvancesByFrequency(t *testing.T) {
	cfg := Config{Frequency: 1000} // 1 tick per millisecond, RFC 7323's usual choice.
	t0 := time.Now()
	c := New(5000, t0)

	c = Update(cfg, t0.Add(10*time.Millisecond), c)
	if c.Value != 5010 {
		t.Fatalf("got %d, want 5010", c.Value)
	}
}

func TestUpdateIsMonotonic(t *testing.T) {
	cfg := Config{Frequency: 1000}
	t0 := time.Now()
	c := New(100, t0)

	// Present an earlier timestamp: Value must not move backwards.
	c = Update(cfg, t0.Add(-time.Second), c)
	if c.Value != 100 {
		t.Fatalf("clock moved backwards: got %d, want 100", c.Value)
	}
	if !c.LastUpdate.Equal(t0.Add(-time.Second)) {
		t.Fatalf("LastUpdate should still advance even when Value doesn't")
	}
}

func TestMeasureRTT(t *testing.T) {
	cfg := Config{Frequency: 1000}
	c := Clock{Value: 5100}

	rtt := MeasureRTT(cfg, 5000, c)
	if rtt != 100*time.Millisecond {
		t.Fatalf("got %v, want 100ms", rtt)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Frequency: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero frequency")
	}
	if err := (Config{Frequency: 1000}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
