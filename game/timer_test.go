package game

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countdownProbe struct {
	mu      sync.Mutex
	ticks   []int
	expires int
}

func (p *countdownProbe) onTick(remaining int) {
	p.mu.Lock()
	p.ticks = append(p.ticks, remaining)
	p.mu.Unlock()
}

func (p *countdownProbe) onExpire() {
	p.mu.Lock()
	p.expires++
	p.mu.Unlock()
}

func (p *countdownProbe) tickCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ticks)
}

func (p *countdownProbe) expireCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expires
}

func TestCountdownTicksThenExpiresOnce(t *testing.T) {
	fc := clockwork.NewFakeClock()
	e := NewTimerEngine(fc)
	probe := &countdownProbe{}

	e.Start("room", 3, probe.onTick, probe.onExpire)
	fc.BlockUntil(1)

	fc.Advance(time.Second)
	require.Eventually(t, func() bool { return probe.tickCount() == 1 }, time.Second, time.Millisecond)

	fc.Advance(time.Second)
	require.Eventually(t, func() bool { return probe.tickCount() == 2 }, time.Second, time.Millisecond)

	fc.Advance(time.Second)
	require.Eventually(t, func() bool { return probe.expireCount() == 1 }, time.Second, time.Millisecond)

	probe.mu.Lock()
	assert.Equal(t, []int{2, 1}, probe.ticks)
	probe.mu.Unlock()
}

func TestCountdownCancel(t *testing.T) {
	fc := clockwork.NewFakeClock()
	e := NewTimerEngine(fc)
	probe := &countdownProbe{}

	e.Start("room", 2, probe.onTick, probe.onExpire)
	fc.BlockUntil(1)
	e.Cancel("room")

	fc.Advance(5 * time.Second)
	assert.Never(t, func() bool {
		return probe.tickCount() > 0 || probe.expireCount() > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestCountdownRestartSupersedes(t *testing.T) {
	fc := clockwork.NewFakeClock()
	e := NewTimerEngine(fc)
	first := &countdownProbe{}
	second := &countdownProbe{}

	e.Start("room", 30, first.onTick, first.onExpire)
	fc.BlockUntil(1)
	e.Start("room", 1, second.onTick, second.onExpire)

	require.Eventually(t, func() bool {
		fc.Advance(time.Second)
		return second.expireCount() == 1
	}, time.Second, 10*time.Millisecond)

	assert.Zero(t, first.tickCount())
	assert.Zero(t, first.expireCount())
}

func TestCountdownsRunPerRoom(t *testing.T) {
	fc := clockwork.NewFakeClock()
	e := NewTimerEngine(fc)
	a := &countdownProbe{}
	b := &countdownProbe{}

	e.Start("room-a", 1, nil, a.onExpire)
	e.Start("room-b", 1, nil, b.onExpire)
	fc.BlockUntil(2)

	fc.Advance(time.Second)
	require.Eventually(t, func() bool {
		return a.expireCount() == 1 && b.expireCount() == 1
	}, time.Second, time.Millisecond)

	// Cancelling one room never touches the other's countdown.
	e.Start("room-a", 30, a.onTick, a.onExpire)
	e.Start("room-b", 30, b.onTick, b.onExpire)
	e.Cancel("room-a")

	require.Eventually(t, func() bool {
		fc.Advance(time.Second)
		return b.tickCount() >= 1
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, a.tickCount())
}
