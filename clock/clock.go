// Package clock implements the fixed-timestep accumulator that turns
// variable wall-clock frame deltas into a whole number of logical ticks.
//
// Each real frame the host reports its elapsed time. The clock adds it to the
// accumulator and runs one step of exactly TargetFrameTime for every whole
// target frame it holds, so a single real frame may run zero, one or many
// steps. After Advance returns, 0 <= Accumulated() < TargetFrameTime().
//
// If a step consistently takes longer than TargetFrameTime the accumulator
// grows without bound. MaxSteps caps the steps run per real frame; when the
// cap is reached the remaining whole steps are dropped and counted, and only
// the sub-step remainder is carried over. A zero MaxSteps leaves catch-up
// unbounded.
package clock

import (
	"fmt"
	"math"
)

// DefaultFrameRate is used when a script does not configure one.
const DefaultFrameRate = 60

// stepEpsilon absorbs rounding when counting dropped steps.
const stepEpsilon = 1e-9

// Config configures a FrameClock.
type Config struct {
	FrameRate int // logical ticks per second
	MaxSteps  int // steps per Advance, 0 = unbounded
}

// DefaultConfig returns 60 ticks per second with unbounded catch-up.
func DefaultConfig() Config {
	return Config{FrameRate: DefaultFrameRate}
}

// FrameClock is owned by the host loop and mutated once per real frame.
type FrameClock struct {
	target      float64
	accumulated float64
	maxSteps    int

	steps   uint64
	dropped uint64
}

// New returns a clock for cfg. FrameRate must be positive.
func New(cfg Config) (*FrameClock, error) {
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %d", cfg.FrameRate)
	}
	if cfg.MaxSteps < 0 {
		return nil, fmt.Errorf("max steps must not be negative, got %d", cfg.MaxSteps)
	}
	return &FrameClock{
		target:   1.0 / float64(cfg.FrameRate),
		maxSteps: cfg.MaxSteps,
	}, nil
}

// TargetFrameTime returns the fixed step size in seconds.
func (c *FrameClock) TargetFrameTime() float64 { return c.target }

// Accumulated returns the wall time not yet consumed by a step.
func (c *FrameClock) Accumulated() float64 { return c.accumulated }

// Steps returns the total number of steps run.
func (c *FrameClock) Steps() uint64 { return c.steps }

// Dropped returns the total number of steps discarded by the cap.
func (c *FrameClock) Dropped() uint64 { return c.dropped }

// Advance consumes elapsed seconds of wall time and calls step with the fixed
// delta once per whole target frame. Negative, NaN and infinite deltas are
// ignored. It returns the number of steps run and the number dropped.
func (c *FrameClock) Advance(elapsed float64, step func(dt float64)) (ran, dropped int) {
	if elapsed > 0 && !math.IsInf(elapsed, 1) {
		c.accumulated += elapsed
	}

	for c.accumulated >= c.target {
		if c.maxSteps > 0 && ran >= c.maxSteps {
			whole := math.Floor(c.accumulated/c.target + stepEpsilon)
			c.accumulated -= whole * c.target
			if c.accumulated < 0 || c.accumulated >= c.target {
				c.accumulated = 0
			}
			dropped = int(whole)
			c.dropped += uint64(dropped)
			break
		}
		c.accumulated -= c.target
		ran++
		c.steps++
		if step != nil {
			step(c.target)
		}
	}

	return ran, dropped
}

// Reset discards the accumulated time.
func (c *FrameClock) Reset() {
	c.accumulated = 0
}
