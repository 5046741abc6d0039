// Package walking turns a raw position stream into a monotonically increasing
// distance walked, rejecting GPS jitter and teleports.
package walking

import (
	"math"
	"sync"
	"time"

	"backend-arquest/internal/sensor"
	"backend-arquest/internal/shared/geo"
)

const (
	// MinInterval is the minimum spacing between processed samples.
	MinInterval = 2 * time.Second
	// MinStepM is the smallest movement counted as walking.
	MinStepM = 1.0
	// MaxSpeedMps is the fastest plausible walking pace (36 km/h).
	MaxSpeedMps = 10.0
)

// Outcome is what a sample did to the accumulator.
type Outcome string

const (
	Initialized Outcome = "initialized"
	Throttled   Outcome = "throttled"
	Jitter      Outcome = "jitter"
	Jump        Outcome = "jump"
	Accepted    Outcome = "accepted"
)

type Accumulator struct {
	mu           sync.Mutex
	totalMeters  float64
	lastPosition *geo.Point
	lastUpdate   time.Time
	lastFix      time.Time
}

func New() *Accumulator {
	return &Accumulator{}
}

// Observe folds one sample into the total. now is the arrival time and drives
// throttling; the sample timestamp drives the speed check and falls back to
// now when absent.
func (a *Accumulator) Observe(sample sensor.PositionSample, now time.Time) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	fix := sample.Timestamp
	if fix.IsZero() {
		fix = now
	}

	if a.lastPosition == nil {
		a.moveTo(sample.Point, now, fix)
		return Initialized
	}
	if now.Sub(a.lastUpdate) < MinInterval {
		return Throttled
	}

	d := geo.Distance(*a.lastPosition, sample.Point)
	if d < MinStepM {
		return Jitter
	}

	elapsed := fix.Sub(a.lastFix).Seconds()
	if elapsed <= 0 || d/elapsed > MaxSpeedMps {
		a.moveTo(sample.Point, now, fix)
		return Jump
	}

	a.totalMeters += d
	a.moveTo(sample.Point, now, fix)
	return Accepted
}

func (a *Accumulator) moveTo(p geo.Point, now, fix time.Time) {
	a.lastPosition = &p
	a.lastUpdate = now
	a.lastFix = fix
}

func (a *Accumulator) TotalMeters() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalMeters
}

// TotalMetersInt is the total rounded down, for display.
func (a *Accumulator) TotalMetersInt() int {
	return int(math.Floor(a.TotalMeters()))
}

func (a *Accumulator) LastPosition() (geo.Point, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastPosition == nil {
		return geo.Point{}, false
	}
	return *a.lastPosition, true
}

// Reset zeroes the total and forgets the last position.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalMeters = 0
	a.lastPosition = nil
	a.lastUpdate = time.Time{}
	a.lastFix = time.Time{}
}
