package timectrl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/signalsfoundry/omnivox/simtime"
)

func TestTimeControllerSetTime(t *testing.T) {
	start := simtime.Date(2025, time.January, 1, 0, 0, 0, 0)
	tc := NewTimeController(start, simtime.Seconds(1), RealTime)

	newNow := start.Add(simtime.Seconds(42))
	tc.SetTime(newNow)

	if got := tc.Now(); got != newNow {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestTimeControllerStartUpdatesNow(t *testing.T) {
	start := simtime.Date(2025, time.January, 1, 0, 0, 0, 0)
	tc := NewTimeController(start, simtime.Seconds(5), Accelerated)

	var ticks []simtime.SimTime
	tc.AddListener(func(now simtime.SimTime) { ticks = append(ticks, now) })

	done := tc.Start(simtime.Seconds(15))
	<-done

	expected := start.Add(simtime.Seconds(15))
	if got := tc.Now(); got != expected {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
	if len(ticks) != 3 || ticks[0] != start.Add(simtime.Seconds(5)) {
		t.Fatalf("listener saw %v, want three ticks from %v", ticks, start.Add(simtime.Seconds(5)))
	}
}

func TestTimeControllerRealTimeUsesInterval(t *testing.T) {
	// A year per tick, paced by a short wall-clock interval.
	tc := NewTimeController(simtime.Epoch, simtime.Years(1), RealTime)
	tc.Interval = time.Millisecond

	if err := tc.Run(context.Background(), simtime.Years(3)); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := tc.Now().SimDate().Year; got != 3 {
		t.Fatalf("year = %d, want 3", got)
	}
}

func TestTimeControllerAfter(t *testing.T) {
	tc := NewTimeController(simtime.Epoch, simtime.Minutes(1), Accelerated)
	ch := tc.After(simtime.Seconds(90))

	tc.Step()
	select {
	case <-ch:
		t.Fatalf("timer fired after one minute")
	default:
	}

	tc.Step()
	select {
	case got := <-ch:
		if want := simtime.Epoch.Add(simtime.Minutes(2)); got != want {
			t.Fatalf("timer fired at %v, want %v", got, want)
		}
	default:
		t.Fatalf("timer did not fire after two minutes")
	}

	// Non-positive delays fire immediately.
	select {
	case <-tc.After(simtime.SimDuration{}):
	default:
		t.Fatalf("zero timer did not fire")
	}
}

func TestTimeControllerRunCancelled(t *testing.T) {
	tc := NewTimeController(simtime.Epoch, simtime.Seconds(1), Accelerated)
	ctx, cancel := context.WithCancel(context.Background())
	tc.AddListener(func(now simtime.SimTime) {
		if now == simtime.FromSeconds(10) {
			cancel()
		}
	})
	if err := tc.Run(ctx, simtime.SimDuration{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if got := tc.Now(); got != simtime.FromSeconds(10) {
		t.Fatalf("Now() = %v, want 10s", got)
	}

	tc.Tick = simtime.SimDuration{}
	if err := tc.Run(context.Background(), simtime.Seconds(1)); !errors.Is(err, ErrInvalidTick) {
		t.Fatalf("Run error = %v, want ErrInvalidTick", err)
	}
}
