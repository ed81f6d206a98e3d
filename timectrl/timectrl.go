package timectrl

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/signalsfoundry/omnivox/simtime"
)

// ErrInvalidTick is returned by Run when the tick is not positive.
var ErrInvalidTick = errors.New("tick must be positive")

// SimClock is an interface for accessing simulation time. Components that
// only read the clock depend on this rather than on a TimeController.
type SimClock interface {
	// Now returns the current simulation time.
	Now() simtime.SimTime
	// After returns a channel that receives the simulation time once at
	// least d of simulated time has elapsed.
	After(d simtime.SimDuration) <-chan simtime.SimTime
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime waits Interval of wall-clock time between ticks.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still stepping by Tick.
	Accelerated
)

type timer struct {
	at simtime.SimTime
	ch chan simtime.SimTime
}

// TimeController drives simulation time and notifies registered listeners.
// It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime simtime.SimTime
	Tick      simtime.SimDuration
	// Interval is the wall-clock pause between ticks in RealTime mode.
	Interval time.Duration
	Mode     Mode

	currentTime simtime.SimTime
	listeners   []func(simtime.SimTime)
	timers      []timer
}

// NewTimeController constructs a controller. In RealTime mode the
// wall-clock interval defaults to the tick itself when that fits in a
// time.Duration, and to one second otherwise.
func NewTimeController(start simtime.SimTime, tick simtime.SimDuration, mode Mode) *TimeController {
	interval := time.Second
	if ns, ok := tick.Nanos(); ok && ns > 0 {
		interval = time.Duration(ns)
	}
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Interval:    interval,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() simtime.SimTime {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps the clock to t without notifying listeners. Pending timers
// that are due at t fire.
func (tc *TimeController) SetTime(t simtime.SimTime) {
	tc.mu.Lock()
	tc.currentTime = t
	due := tc.dueTimers(t)
	tc.mu.Unlock()
	fire(due, t)
}

// After returns a channel that receives the simulation time once the clock
// has advanced by at least d. Implements SimClock.
func (tc *TimeController) After(d simtime.SimDuration) <-chan simtime.SimTime {
	ch := make(chan simtime.SimTime, 1)
	tc.mu.Lock()
	now := tc.currentTime
	at := now.Add(d)
	if at.After(now) {
		tc.timers = append(tc.timers, timer{at: at, ch: ch})
		tc.mu.Unlock()
		return ch
	}
	tc.mu.Unlock()
	ch <- now
	return ch
}

// dueTimers removes and returns the timers due at t. Callers hold the lock.
func (tc *TimeController) dueTimers(t simtime.SimTime) []timer {
	var due []timer
	kept := tc.timers[:0]
	for _, tm := range tc.timers {
		if tm.at.After(t) {
			kept = append(kept, tm)
		} else {
			due = append(due, tm)
		}
	}
	tc.timers = kept
	return due
}

func fire(due []timer, t simtime.SimTime) {
	for _, tm := range due {
		tm.ch <- t
	}
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn func(simtime.SimTime)) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Step advances the clock by one tick and runs the listeners on the
// caller's goroutine. It returns the new time.
func (tc *TimeController) Step() simtime.SimTime {
	tc.mu.Lock()
	t := tc.currentTime.Add(tc.Tick)
	tc.currentTime = t
	due := tc.dueTimers(t)
	listeners := append([]func(simtime.SimTime){}, tc.listeners...)
	tc.mu.Unlock()

	fire(due, t)
	for _, fn := range listeners {
		fn(t)
	}
	return t
}

// Run resets the clock to StartTime and steps until duration of simulated
// time has elapsed or ctx is done. A non-positive duration runs until ctx
// is done.
func (tc *TimeController) Run(ctx context.Context, duration simtime.SimDuration) error {
	if tc.Tick.Sign() <= 0 {
		return ErrInvalidTick
	}
	tc.mu.Lock()
	tc.currentTime = tc.StartTime
	tc.mu.Unlock()

	var tick <-chan time.Time
	if tc.Mode == RealTime {
		ticker := time.NewTicker(tc.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	end := tc.StartTime.Add(duration)
	bounded := duration.Sign() > 0
	for {
		if bounded && !tc.Now().Before(end) {
			return nil
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		tc.Step()
	}
}

// Start runs the controller for the specified duration in a separate goroutine.
// It returns a channel that is closed when the controller finishes.
func (tc *TimeController) Start(duration simtime.SimDuration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = tc.Run(context.Background(), duration)
	}()
	return done
}
