package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"backend-arquest/internal/interaction"
	"backend-arquest/internal/ledger"
	"backend-arquest/internal/sensor"
	"backend-arquest/internal/spawn"
	"backend-arquest/internal/visibility"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrWrongCategory     = errors.New("spawn has the wrong category for this action")
	ErrForbidden         = errors.New("session belongs to another player")
	ErrInvalidInput      = errors.New("invalid input")
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)

type Options struct {
	FOVDegrees float64
	MaxVisible int
}

// Service owns the open game sessions.
type Service struct {
	catalog *spawn.Catalog
	ledger  ledger.Client
	storage interaction.Storage
	bus     interaction.Bus
	opts    Options
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(catalog *spawn.Catalog, client ledger.Client, storage interaction.Storage, bus interaction.Bus, opts Options) *Service {
	if storage == nil {
		storage = interaction.NewMemoryStorage()
	}
	if opts.FOVDegrees <= 0 {
		opts.FOVDegrees = visibility.DefaultFOV
	}
	return &Service{
		catalog:  catalog,
		ledger:   client,
		storage:  storage,
		bus:      bus,
		opts:     opts,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// CreateSession opens a view for playerID and tries one remote fetch. A failed
// fetch is not fatal: the cache serves reads until the next refresh.
func (s *Service) CreateSession(ctx context.Context, playerID string) (SessionInfo, error) {
	if playerID == "" {
		return SessionInfo{}, fmt.Errorf("%w: player id required", ErrInvalidInput)
	}
	sess := newSession(ctx, playerID, s.storage, s.bus, s.now)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if err := s.refresh(ctx, sess); err != nil {
		log.Printf("initial ledger fetch for %s failed: %v", playerID, err)
	}
	return sess.info(), nil
}

func (s *Service) session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// owned returns the session when it belongs to playerID.
func (s *Service) owned(id, playerID string) (*Session, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if sess.PlayerID != playerID {
		return nil, ErrForbidden
	}
	return sess, nil
}

func (s *Service) Session(id string) (SessionInfo, error) {
	sess, err := s.session(id)
	if err != nil {
		return SessionInfo{}, err
	}
	return sess.info(), nil
}

func (s *Service) EndSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.close()
	return nil
}

// Close ends every open session.
func (s *Service) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = map[string]*Session{}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.close()
	}
}

func (s *Service) StartSensors(ctx context.Context, id string, req SensorRequest) (SensorStatus, error) {
	sess, err := s.session(id)
	if err != nil {
		return SensorStatus{}, err
	}
	status, err := sess.startSensors(ctx, req)
	if err != nil {
		return SensorStatus{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return status, nil
}

func (s *Service) SensorStatus(id string) (SensorStatus, error) {
	sess, err := s.session(id)
	if err != nil {
		return SensorStatus{}, err
	}
	return sess.sensorStatus(), nil
}

func (s *Service) PushPosition(id string, in PositionInput) (ReadingAck, error) {
	sess, err := s.session(id)
	if err != nil {
		return ReadingAck{}, err
	}
	var n int
	if in.Error != "" {
		n = sess.positionFeed.Fail(deviceError(in.Error))
	} else {
		n = sess.positionFeed.Push(in.PositionReading)
	}
	return ReadingAck{Delivered: n, State: sess.position.State()}, nil
}

func (s *Service) PushHeading(id string, in HeadingInput) (ReadingAck, error) {
	sess, err := s.session(id)
	if err != nil {
		return ReadingAck{}, err
	}
	var n int
	switch {
	case in.Error != "":
		n = sess.headingFeed.Fail(deviceError(in.Error))
	case in.Alpha == nil && in.CompassHeading == nil:
		return ReadingAck{}, fmt.Errorf("%w: alpha or webkitCompassHeading required", ErrInvalidInput)
	default:
		n = sess.headingFeed.Push(in.OrientationReading)
	}
	return ReadingAck{Delivered: n, State: sess.heading.State()}, nil
}

func deviceError(code string) error {
	if err := sensor.ErrorFromCode(code); err != nil {
		return err
	}
	return sensor.ErrUnavailable
}

func (s *Service) Walking(id string) (WalkingStatus, error) {
	sess, err := s.session(id)
	if err != nil {
		return WalkingStatus{}, err
	}
	return sess.walkingStatus(), nil
}

func (s *Service) ResetWalking(id string) (WalkingStatus, error) {
	sess, err := s.session(id)
	if err != nil {
		return WalkingStatus{}, err
	}
	sess.walking.Reset()
	sess.mu.Lock()
	sess.lastWalk = ""
	sess.mu.Unlock()
	return sess.walkingStatus(), nil
}

// Visible computes which spawns the session's camera view currently shows.
func (s *Service) Visible(id string) (VisibleView, error) {
	sess, err := s.session(id)
	if err != nil {
		return VisibleView{}, err
	}

	xp := sess.currentXP()
	view := VisibleView{
		Position:     sess.currentPosition(),
		Heading:      sess.currentHeading(),
		XP:           xp,
		RadiusM:      visibility.RadiusForXP(xp),
		ToleranceDeg: visibility.ToleranceForXP(xp),
		FOVDegrees:   s.opts.FOVDegrees,
	}
	view.Results = visibility.ComputeVisible(visibility.Params{
		Position:     view.Position,
		Heading:      view.Heading,
		RadiusM:      view.RadiusM,
		ToleranceDeg: view.ToleranceDeg,
		FOVDegrees:   view.FOVDegrees,
	}, s.catalog.All())
	if s.opts.MaxVisible > 0 {
		view.Results = visibility.Nearest(view.Results, s.opts.MaxVisible)
	}
	return view, nil
}

// Refresh fetches the player's ledger state and overwrites the session cache.
func (s *Service) Refresh(ctx context.Context, id string) (PlayerView, error) {
	sess, err := s.session(id)
	if err != nil {
		return PlayerView{}, err
	}
	if err := s.refresh(ctx, sess); err != nil {
		return PlayerView{}, err
	}
	return s.playerView(sess), nil
}

func (s *Service) refresh(ctx context.Context, sess *Session) error {
	if s.ledger == nil {
		return ErrLedgerUnavailable
	}
	state, err := s.ledger.GetPlayerState(ctx, sess.PlayerID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	sess.applyRemote(ctx, interaction.Snapshot{Locks: state.Locks(), Captures: state.Captures()}, state.XP, s.now())
	return nil
}

func (s *Service) playerView(sess *Session) PlayerView {
	view := PlayerView{XP: sess.currentXP(), Cached: sess.cache.Snapshot()}
	if remote := sess.remoteSnapshot(); remote != nil {
		view.Remote = *remote
	}
	sess.mu.RLock()
	view.SyncedAt = sess.syncedAt
	sess.mu.RUnlock()
	return view
}

func (s *Service) LockCoin(ctx context.Context, id, playerID, spawnID string) (InteractionView, error) {
	return s.act(ctx, id, playerID, spawnID, spawn.CategoryCoin, ledger.Client.LockCoin, func(sess *Session) {
		sess.cache.SetLocked(ctx, spawnID, true)
	})
}

func (s *Service) UnlockCoin(ctx context.Context, id, playerID, spawnID string) (InteractionView, error) {
	return s.act(ctx, id, playerID, spawnID, spawn.CategoryCoin, ledger.Client.UnlockCoin, func(sess *Session) {
		sess.cache.SetLocked(ctx, spawnID, false)
	})
}

func (s *Service) CaptureMonster(ctx context.Context, id, playerID, spawnID string) (InteractionView, error) {
	return s.act(ctx, id, playerID, spawnID, spawn.CategoryMonster, ledger.Client.CaptureMonster, func(sess *Session) {
		sess.cache.SetCaptured(ctx, spawnID, true)
	})
}

type ledgerAction func(c ledger.Client, ctx context.Context, playerID, spawnID string) (ledger.Result, error)

// act runs a ledger mutation. Only a successful result touches the cache,
// after which the remote state is fetched again.
func (s *Service) act(ctx context.Context, id, playerID, spawnID string, want spawn.Category, action ledgerAction, optimistic func(*Session)) (InteractionView, error) {
	sess, err := s.owned(id, playerID)
	if err != nil {
		return InteractionView{}, err
	}
	obj, err := s.catalog.Get(spawnID)
	if err != nil {
		return InteractionView{}, err
	}
	if obj.Category != want {
		return InteractionView{}, fmt.Errorf("%w: %s is a %s", ErrWrongCategory, spawnID, obj.Category)
	}

	if s.ledger == nil {
		return InteractionView{}, ErrLedgerUnavailable
	}

	err = ledger.Check(action(s.ledger, ctx, sess.PlayerID, spawnID))
	var actionErr *ledger.ActionError
	if errors.As(err, &actionErr) {
		return InteractionView{}, err
	}
	if err != nil {
		return InteractionView{}, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	optimistic(sess)
	if err := s.refresh(ctx, sess); err != nil {
		log.Printf("ledger refetch after %s on %s failed: %v", want, spawnID, err)
	}
	return s.resolve(sess, obj), nil
}

// Interaction resolves a spawn's state for the session: remote snapshot, then
// cache, then the default.
func (s *Service) Interaction(id, spawnID string, want spawn.Category) (InteractionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return InteractionView{}, err
	}
	obj, err := s.catalog.Get(spawnID)
	if err != nil {
		return InteractionView{}, err
	}
	if obj.Category != want {
		return InteractionView{}, fmt.Errorf("%w: %s is a %s", ErrWrongCategory, spawnID, obj.Category)
	}
	return s.resolve(sess, obj), nil
}

func (s *Service) resolve(sess *Session, obj spawn.Object) InteractionView {
	remote := sess.remoteSnapshot()
	var res interaction.Resolution
	if obj.Category == spawn.CategoryCoin {
		res = interaction.ResolveLocked(remote, sess.cache, obj.ID)
	} else {
		res = interaction.ResolveCaptured(remote, sess.cache, obj.ID)
	}
	return InteractionView{SpawnID: obj.ID, Resolution: res}
}
