// Package waiter provides a small event notification queue: waiters
// register to be woken up when an event of interest happens, the way a
// connection's retransmit-timer goroutine would learn that the retransmit
// queue just went from empty to non-empty.
package waiter

import (
	"sync"

	"github.com/nilsmagnus/tcpsndwnd/ilist"
)

// EventMask identifies the event(s) a waiter is interested in.
type EventMask uint8

const (
	// EventRTOStart is the event a caller notifies when a QueueSegment
	// call (on a Window or a GuardedWindow) reports StartRTO, i.e. that the
	// retransmit queue transitioned from empty to non-empty — the signal an
	// external retransmit timer needs to arm itself.
	EventRTOStart EventMask = 0x01
)

// EntryCallback is invoked when a registered Entry is notified. It must do
// minimal work and must not call back into the Queue it was registered
// with — the queue's lock is held while the callback runs.
type EntryCallback interface {
	Callback(e *Entry)
}

// Entry represents one registered waiter. It can only be in one queue at a
// time and is added to the queue intrusively, with no extra allocation.
type Entry struct {
	// Context stores whatever state the waiter wants available at wake-up
	// time; use of this field is optional.
	Context interface{}

	Callback EntryCallback

	mask EventMask
	ilist.Entry
}

type channelCallback struct{}

func (*channelCallback) Callback(e *Entry) {
	ch := e.Context.(chan struct{})
	select {
	case ch <- struct{}{}:
	default:
	}
}

// NewChannelEntry returns an Entry that does a non-blocking send on c (or a
// newly allocated channel, if c is nil) when notified.
func NewChannelEntry(c chan struct{}) (Entry, chan struct{}) {
	if c == nil {
		c = make(chan struct{}, 1)
	}
	return Entry{Context: c, Callback: &channelCallback{}}, c
}

// Queue holds the set of registered waiters. The zero value is a ready to
// use, empty queue.
type Queue struct {
	list ilist.List
	mu   sync.RWMutex
}

// EventRegister adds e to the queue; e will be notified for any event in
// mask.
func (q *Queue) EventRegister(e *Entry, mask EventMask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e.mask = mask
	q.list.PushBack(e)
}

// EventUnregister removes e from the queue.
func (q *Queue) EventUnregister(e *Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.Remove(e)
}

// Notify wakes every registered waiter whose mask overlaps with mask.
func (q *Queue) Notify(mask EventMask) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for it := q.list.Front(); it != nil; it = it.Next() {
		e := it.(*Entry)
		if mask&e.mask != 0 {
			e.Callback.Callback(e)
		}
	}
}
