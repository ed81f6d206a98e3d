// Package sweep evaluates pure functions over evenly spaced time or
// altitude steps. Steps run on a bounded set of goroutines and results come
// back in step order, so a sweep is as deterministic as the function it
// runs.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/field"
	"github.com/signalsfoundry/omnivox/simtime"
)

// MaxSteps bounds the number of steps a single sweep may produce.
const MaxSteps = 1_000_000

var (
	// ErrInvalidStep is returned for non-positive step sizes.
	ErrInvalidStep = errors.New("sweep step must be positive")
	// ErrTooManySteps is returned when a range would exceed MaxSteps.
	ErrTooManySteps = errors.New("sweep has too many steps")
)

// Times returns start, start+step, ... up to and including end. An end
// before start yields no times.
func Times(start, end simtime.SimTime, step simtime.SimDuration) ([]simtime.SimTime, error) {
	if step.Sign() <= 0 {
		return nil, fmt.Errorf("time sweep step %s ns: %w", step, ErrInvalidStep)
	}
	if end.Before(start) {
		return nil, nil
	}
	n, ok := end.Sub(start).Steps(step)
	if !ok || n >= MaxSteps {
		return nil, fmt.Errorf("time sweep from %s to %s by %s: %w", start, end, step, ErrTooManySteps)
	}
	res := make([]simtime.SimTime, 0, n+1)
	t := start
	for i := int64(0); i <= n; i++ {
		res = append(res, t)
		t = t.Add(step)
	}
	return res, nil
}

// Run calls fn for every index in [0, n) on at most workers goroutines and
// returns the results in index order. workers <= 0 uses GOMAXPROCS. The
// first error cancels the remaining steps and is returned.
func Run[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]T, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, i)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may have stopped early on a cancelled parent context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// AltitudeSample is the environment at one altitude.
type AltitudeSample struct {
	Altitude float64      `json:"altitude_m"`
	Sample   field.Sample `json:"sample"`
}

// Altitudes samples env straight above c at t, from one altitude to
// another (both metres above the reference surface, inclusive) in
// increments of step.
func Altitudes(ctx context.Context, env *field.Environment, c coord.Coord, t simtime.SimTime, from, to, step float64) ([]AltitudeSample, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("altitude sweep step %v m: %w", step, ErrInvalidStep)
	}
	if to < from {
		return nil, nil
	}
	span := (to - from) / step
	if span >= MaxSteps {
		return nil, fmt.Errorf("altitude sweep from %v to %v by %v: %w", from, to, step, ErrTooManySteps)
	}
	n := int(span) + 1
	ref := env.Surface().ReferenceRadius()
	return Run(ctx, n, 0, func(_ context.Context, i int) (AltitudeSample, error) {
		alt := from + float64(i)*step
		at := coord.New(coord.MetresToMicros(ref+alt), c.Lat, c.Lon)
		s, err := env.Sample(at, t)
		if err != nil {
			return AltitudeSample{}, err
		}
		return AltitudeSample{Altitude: alt, Sample: s}, nil
	})
}
