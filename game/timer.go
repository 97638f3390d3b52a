package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TimerEngine runs at most one countdown per room. Starting a countdown
// for a room that already has one cancels the old one first; Cancel on a
// room without a countdown is a no-op. Once Cancel returns, neither the
// tick nor the expiry callback of the cancelled countdown will begin.
//
// Callbacks run on the countdown's own goroutine with no engine lock
// held, so they are free to take room locks.
type TimerEngine struct {
	clock  clockwork.Clock
	mu     sync.Mutex
	active map[string]*countdown
}

type countdown struct {
	stop    chan struct{}
	stopped bool
}

func NewTimerEngine(clock clockwork.Clock) *TimerEngine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TimerEngine{clock: clock, active: make(map[string]*countdown)}
}

// Start begins a countdown of the given number of seconds. onTick is
// invoked after every elapsed second with the remaining count; onExpire
// is invoked exactly once when the count reaches zero, after which the
// countdown retires itself. Either callback may be nil.
func (e *TimerEngine) Start(roomID string, seconds int, onTick func(remaining int), onExpire func()) {
	e.mu.Lock()
	if old, ok := e.active[roomID]; ok {
		old.stopped = true
		close(old.stop)
	}
	c := &countdown{stop: make(chan struct{})}
	e.active[roomID] = c
	e.mu.Unlock()

	go e.run(roomID, c, seconds, onTick, onExpire)
}

// Cancel stops the room's countdown, if any.
func (e *TimerEngine) Cancel(roomID string) {
	e.mu.Lock()
	if c, ok := e.active[roomID]; ok {
		c.stopped = true
		close(c.stop)
		delete(e.active, roomID)
	}
	e.mu.Unlock()
}

func (e *TimerEngine) run(roomID string, c *countdown, seconds int, onTick func(int), onExpire func()) {
	ticker := e.clock.NewTicker(time.Second)
	defer ticker.Stop()

	remaining := seconds
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.Chan():
			e.mu.Lock()
			if c.stopped || e.active[roomID] != c {
				e.mu.Unlock()
				return
			}
			remaining--
			expired := remaining <= 0
			if expired {
				c.stopped = true
				delete(e.active, roomID)
			}
			e.mu.Unlock()

			if expired {
				if onExpire != nil {
					onExpire()
				}
				return
			}
			if onTick != nil {
				onTick(remaining)
			}
		}
	}
}

// startCountdown arms the room's countdown and stamps callbacks with the
// current timer epoch. A callback that was already in flight when the
// room transitioned (and bumped the epoch) finds the stamp stale and does
// nothing, so a tardy tick can never re-fire a transition. Caller holds
// r.mu.
func (r *Room) startCountdown(seconds int, onTick func(remaining int), onExpire func()) {
	r.timerEpoch++
	epoch := r.timerEpoch
	var tick func(int)
	if onTick != nil {
		tick = func(remaining int) {
			r.withEpoch(epoch, func() { onTick(remaining) })
		}
	}
	r.reg.timers.Start(r.ID, seconds, tick, func() {
		r.withEpoch(epoch, onExpire)
	})
}

// cancelCountdown invalidates in-flight callbacks and stops the engine's
// countdown for this room. Caller holds r.mu.
func (r *Room) cancelCountdown() {
	r.timerEpoch++
	r.reg.timers.Cancel(r.ID)
}

func (r *Room) withEpoch(epoch uint64, fn func()) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timerEpoch != epoch || r.destroyed {
		return
	}
	fn()
}
