package sensor

import (
	"context"
	"sync"
	"time"
)

// PermissionTimeout bounds how long a stream waits on a permission prompt.
const PermissionTimeout = 10 * time.Second

// stream is the permission-gated subscription shared by the position and
// heading streams. process turns a raw reading into a sample, or rejects it.
type stream[R, S any] struct {
	sensor    Sensor
	platform  Platform[R]
	supported func() bool
	process   func(R) (S, bool)
	timeout   time.Duration

	mu      sync.Mutex
	m       machine
	latest  S
	hasData bool
	cancel  func()
	subs    map[int]func(S)
	nextSub int
}

func newStream[R, S any](s Sensor, p Platform[R]) *stream[R, S] {
	return &stream[R, S]{
		sensor:   s,
		platform: p,
		timeout:  PermissionTimeout,
		m:        newMachine(),
		subs:     map[int]func(S){},
	}
}

// Start requests permission and subscribes to the platform. It is a no-op
// while the stream is initializing, active, or in a terminal state, and it
// never returns an error: failures are captured in the returned state.
func (s *stream[R, S]) Start(ctx context.Context) State {
	s.mu.Lock()
	if s.supported != nil && !s.supported() {
		s.m.to(StateFromError(s.sensor, ErrUnsupported))
	}
	if !s.m.to(State{Kind: KindInitializing}) {
		st := s.m.state
		s.mu.Unlock()
		return st
	}
	s.mu.Unlock()

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.platform.RequestPermission(pctx)
	cancel()
	if err != nil {
		return s.fail(err)
	}

	stop, err := s.platform.Watch(s.handleReading, s.handleError)
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.m.to(State{Kind: KindActive}) {
		// stopped while the prompt was open
		stop()
		return s.m.state
	}
	s.cancel = stop
	return s.m.state
}

func (s *stream[R, S]) fail(err error) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.to(StateFromError(s.sensor, err))
	return s.m.state
}

func (s *stream[R, S]) handleReading(r R) {
	s.mu.Lock()
	if s.m.state.Kind != KindActive {
		s.mu.Unlock()
		return
	}
	sample, ok := s.process(r)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.latest = sample
	s.hasData = true
	subs := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sample)
	}
}

// handleError moves an active stream into a retryable state and drops the
// platform subscription; Start subscribes again.
func (s *stream[R, S]) handleError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := StateFromError(s.sensor, err)
	if next.Kind.Terminal() {
		next = StateFromError(s.sensor, ErrUnavailable)
	}
	if s.m.to(next) && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Stop drops the platform subscription and every subscriber. Terminal states
// are kept so a denied sensor stays denied.
func (s *stream[R, S]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.m.to(State{Kind: KindPrompt})
	s.subs = map[int]func(S){}
}

func (s *stream[R, S]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.state
}

// Latest returns the most recent accepted sample, if any.
func (s *stream[R, S]) Latest() (S, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasData
}

// Subscribe registers fn for every accepted sample.
func (s *stream[R, S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
