package game

import (
	"context"
	"sync"
	"time"

	"backend-arquest/internal/interaction"
	"backend-arquest/internal/sensor"
	"backend-arquest/internal/shared/geo"
	"backend-arquest/internal/walking"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Session is one open client view: its sensor feeds and streams, its walking
// total, and its interaction cache.
type Session struct {
	ID        string
	PlayerID  string
	CreatedAt time.Time

	positionFeed *sensor.Feed[sensor.PositionReading]
	headingFeed  *sensor.Feed[sensor.OrientationReading]
	position     *sensor.PositionStream
	heading      *sensor.HeadingStream
	walking      *walking.Accumulator
	cache        *interaction.Cache
	stopWalking  func()

	mu       sync.RWMutex
	remote   *interaction.Snapshot
	xp       int64
	syncedAt time.Time
	lastWalk walking.Outcome
}

func newSession(ctx context.Context, playerID string, storage interaction.Storage, bus interaction.Bus, now func() time.Time) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		PlayerID:     playerID,
		CreatedAt:    now(),
		positionFeed: sensor.NewFeed[sensor.PositionReading](),
		headingFeed:  sensor.NewFeed[sensor.OrientationReading](),
		walking:      walking.New(),
	}
	s.position = sensor.NewPositionStream(s.positionFeed)
	s.heading = sensor.NewHeadingStream(s.headingFeed)
	s.cache = interaction.NewCache(ctx, playerID, storage, bus)
	s.stopWalking = s.position.Subscribe(func(sample sensor.PositionSample) {
		out := s.walking.Observe(sample, now())
		s.mu.Lock()
		s.lastWalk = out
		s.mu.Unlock()
	})
	return s
}

// startSensors reports the device's permission outcomes and starts both
// streams concurrently.
func (s *Session) startSensors(ctx context.Context, req SensorRequest) (SensorStatus, error) {
	if req.Position != "" {
		if err := s.positionFeed.Report(req.Position); err != nil {
			return SensorStatus{}, err
		}
	}
	if req.Heading != "" {
		if err := s.headingFeed.Report(req.Heading); err != nil {
			return SensorStatus{}, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if req.Position != "" {
		g.Go(func() error {
			s.position.Start(gctx)
			return nil
		})
	}
	if req.Heading != "" {
		g.Go(func() error {
			s.heading.Start(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SensorStatus{}, err
	}
	return s.sensorStatus(), nil
}

func (s *Session) sensorStatus() SensorStatus {
	return SensorStatus{Position: s.position.State(), Heading: s.heading.State()}
}

// currentPosition is the latest fix while the position stream is active.
func (s *Session) currentPosition() *geo.Point {
	if s.position.State().Kind != sensor.KindActive {
		return nil
	}
	sample, ok := s.position.Latest()
	if !ok {
		return nil
	}
	p := sample.Point
	return &p
}

// currentHeading is the latest heading while the heading stream is active.
func (s *Session) currentHeading() *float64 {
	if s.heading.State().Kind != sensor.KindActive {
		return nil
	}
	sample, ok := s.heading.Latest()
	if !ok {
		return nil
	}
	h := sample.Degrees
	return &h
}

func (s *Session) walkingStatus() WalkingStatus {
	s.mu.RLock()
	last := s.lastWalk
	s.mu.RUnlock()
	return WalkingStatus{
		TotalMeters: s.walking.TotalMeters(),
		Meters:      s.walking.TotalMetersInt(),
		LastOutcome: last,
	}
}

func (s *Session) applyRemote(ctx context.Context, snap interaction.Snapshot, xp int64, at time.Time) {
	s.mu.Lock()
	s.remote = &snap
	s.xp = xp
	s.syncedAt = at
	s.mu.Unlock()
	s.cache.SyncFromRemoteState(ctx, snap.Locks, snap.Captures)
}

func (s *Session) remoteSnapshot() *interaction.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remote
}

func (s *Session) currentXP() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.xp
}

func (s *Session) info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionInfo{
		ID:        s.ID,
		PlayerID:  s.PlayerID,
		CreatedAt: s.CreatedAt,
		XP:        s.xp,
		Synced:    s.remote != nil,
	}
}

func (s *Session) close() {
	s.stopWalking()
	s.position.Stop()
	s.heading.Stop()
	s.cache.Close()
}
