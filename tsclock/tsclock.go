// Package tsclock implements the TCP Timestamp option clock (RFC 7323):
// a monotonically advancing 32-bit counter, ticking at a configured
// frequency, used both to stamp outgoing segments and to turn an echoed
// value back into an RTT sample.
package tsclock

import (
	"errors"
	"time"
)

// Config is the only configuration this core recognizes:
// the clock's tick frequency, in ticks per second.
type Config struct {
	Frequency float64
}

// Validate reports an error if the configuration cannot be used to advance
// a clock (a zero or negative frequency would make every tick infinite or
// backwards).
func (c Config) Validate() error {
	if c.Frequency <= 0 {
		return errors.New("tsclock: frequency must be positive")
	}
	return nil
}

// Clock is a monotonically advancing 32-bit counter and the wall-clock time
// it was last observed at.
type Clock struct {
	Value      uint32
	LastUpdate time.Time
}

// New constructs a Clock at the given initial value and wall-clock time.
func New(value uint32, now time.Time) Clock {
	return Clock{Value: value, LastUpdate: now}
}

// Update advances the clock to now, incrementing Value by
// floor((now - LastUpdate) * frequency). If now is before LastUpdate (a
// clock that runs backwards, or a caller presenting events out of order),
// Value is left unchanged and LastUpdate is still advanced to now — the
// clock never runs Value backwards.
func Update(cfg Config, now time.Time, c Clock) Clock {
	delta := now.Sub(c.LastUpdate)
	if delta <= 0 {
		return Clock{Value: c.Value, LastUpdate: now}
	}
	ticks := uint32(delta.Seconds() * cfg.Frequency)
	return Clock{Value: c.Value + ticks, LastUpdate: now}
}

// MeasureRTT returns the duration elapsed since echoedValue was the clock's
// own Value, i.e. (c.Value - echoedValue) / frequency. The caller must
// guarantee echoedValue <= c.Value in the 32-bit modular sense (the value
// was read from this same clock at an earlier point in time); violating
// that guarantee yields a meaningless (very large, wrapped) duration.
func MeasureRTT(cfg Config, echoedValue uint32, c Clock) time.Duration {
	ticks := c.Value - echoedValue
	seconds := float64(ticks) / cfg.Frequency
	return time.Duration(seconds * float64(time.Second))
}
