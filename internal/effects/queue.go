// Package effects schedules the time-delayed visual transitions the server
// never sends explicitly: clearing a finished trick, dropping a declaration
// banner, returning to idle after game over. Each kind has at most one live
// timer; re-arming supersedes, and stale fires are dropped by generation.
package effects

import "time"

type Kind int

const (
	KindTrickClear Kind = iota
	KindBannerClear
	KindSessionExpiry
)

// Fired is delivered to the sink when a timer elapses. The generation lets
// the consumer reject fires that were superseded or cancelled in flight.
type Fired struct {
	Kind Kind
	Gen  uint64
}

// Queue owns the timers. All methods must be called from the one goroutine
// that also consumes the sink; only the AfterFunc callback runs elsewhere,
// and it touches nothing but the sink.
type Queue struct {
	sink   func(Fired)
	gen    uint64
	live   map[Kind]uint64
	timers map[Kind]*time.Timer
}

func NewQueue(sink func(Fired)) *Queue {
	return &Queue{
		sink:   sink,
		live:   make(map[Kind]uint64),
		timers: make(map[Kind]*time.Timer),
	}
}

// Schedule arms kind after d, superseding any pending timer of that kind.
func (q *Queue) Schedule(kind Kind, d time.Duration) {
	if t := q.timers[kind]; t != nil {
		t.Stop()
	}
	q.gen++
	gen := q.gen
	q.live[kind] = gen
	q.timers[kind] = time.AfterFunc(d, func() {
		q.sink(Fired{Kind: kind, Gen: gen})
	})
}

// Cancel drops a pending timer of the given kind, if any.
func (q *Queue) Cancel(kind Kind) {
	if t := q.timers[kind]; t != nil {
		t.Stop()
		delete(q.timers, kind)
	}
	delete(q.live, kind)
}

// CancelAll drops every pending timer. A fire already in flight is still
// rejected by Accept afterwards.
func (q *Queue) CancelAll() {
	for kind := range q.timers {
		q.Cancel(kind)
	}
}

// Pending reports whether a timer of the given kind is still armed.
func (q *Queue) Pending(kind Kind) bool {
	_, ok := q.live[kind]
	return ok
}

// Accept reports whether a fire is current, and consumes it if so. A fire
// whose generation was superseded or cancelled returns false and must not
// reach the store.
func (q *Queue) Accept(f Fired) bool {
	gen, ok := q.live[f.Kind]
	if !ok || gen != f.Gen {
		return false
	}
	delete(q.live, f.Kind)
	delete(q.timers, f.Kind)
	return true
}
