package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PositionReading is a raw fix as delivered by the device.
type PositionReading struct {
	Lat       float64   `json:"latitude"`
	Lng       float64   `json:"longitude"`
	AccuracyM float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// OrientationReading is a raw orientation event. CompassHeading is only present
// on platforms that expose a native compass heading.
type OrientationReading struct {
	Alpha          *float64  `json:"alpha"`
	CompassHeading *float64  `json:"webkitCompassHeading,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Platform is the device boundary for one sensor: a permission prompt and a
// continuous subscription. Cancelling the subscription stops further callbacks.
type Platform[T any] interface {
	RequestPermission(ctx context.Context) error
	Watch(onReading func(T), onError func(error)) (cancel func(), err error)
}

type PositionPlatform = Platform[PositionReading]

type HeadingPlatform interface {
	Platform[OrientationReading]
	Supported() bool
}

// Outcome is a permission prompt result reported by the device.
type Outcome string

const (
	OutcomeGranted     Outcome = "granted"
	OutcomeDenied      Outcome = "denied"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeUnsupported Outcome = "unsupported"
)

func (o Outcome) err() error {
	switch o {
	case OutcomeGranted:
		return nil
	case OutcomeDenied:
		return ErrPermissionDenied
	case OutcomeUnsupported:
		return ErrUnsupported
	}
	return ErrUnavailable
}

type watcher[T any] struct {
	onReading func(T)
	onError   func(error)
}

// Feed is a Platform driven by a remote device: the device reports its
// permission outcome and pushes readings, and the feed fans them out to
// whoever is watching.
type Feed[T any] struct {
	mu       sync.Mutex
	outcome  Outcome
	decided  chan struct{}
	watchers map[int]watcher[T]
	nextID   int
}

func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{
		decided:  make(chan struct{}),
		watchers: map[int]watcher[T]{},
	}
}

// Report records the device's permission outcome. A later report replaces an
// earlier one, which is how a device retries after a transient failure.
func (f *Feed[T]) Report(o Outcome) error {
	switch o {
	case OutcomeGranted, OutcomeDenied, OutcomeUnavailable, OutcomeUnsupported:
	default:
		return fmt.Errorf("unknown permission outcome %q", o)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	first := f.outcome == ""
	f.outcome = o
	if first {
		close(f.decided)
	}
	return nil
}

func (f *Feed[T]) Supported() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome != OutcomeUnsupported
}

// RequestPermission waits for the device to report an outcome.
func (f *Feed[T]) RequestPermission(ctx context.Context) error {
	select {
	case <-f.decided:
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome.err()
}

func (f *Feed[T]) Watch(onReading func(T), onError func(error)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.outcome.err(); err != nil {
		return nil, err
	}

	id := f.nextID
	f.nextID++
	f.watchers[id] = watcher[T]{onReading: onReading, onError: onError}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.watchers, id)
			f.mu.Unlock()
		})
	}, nil
}

// Push delivers a reading to every watcher and reports how many received it.
func (f *Feed[T]) Push(reading T) int {
	ws := f.snapshot()
	for _, w := range ws {
		w.onReading(reading)
	}
	return len(ws)
}

// Fail delivers a platform error to every watcher.
func (f *Feed[T]) Fail(err error) int {
	ws := f.snapshot()
	for _, w := range ws {
		if w.onError != nil {
			w.onError(err)
		}
	}
	return len(ws)
}

func (f *Feed[T]) snapshot() []watcher[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]watcher[T], 0, len(f.watchers))
	for _, w := range f.watchers {
		out = append(out, w)
	}
	return out
}

var (
	_ PositionPlatform = (*Feed[PositionReading])(nil)
	_ HeadingPlatform  = (*Feed[OrientationReading])(nil)
)
