package ledger

import (
	"context"
	"errors"
	"fmt"

	"backend-arquest/internal/db"

	"github.com/jackc/pgx/v5"
)

const (
	msgCoinAlreadyLocked      = "coin already locked"
	msgCoinNotLocked          = "coin is not locked"
	msgMonsterAlreadyCaptured = "monster already captured"
)

// Service is a Postgres-backed Client.
type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

var _ Client = (*Service)(nil)

func (s *Service) ensurePlayer(ctx context.Context, playerID string) error {
	if _, err := s.db.Exec(ctx, `INSERT INTO players (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, playerID); err != nil {
		return fmt.Errorf("ensure player: %w", err)
	}
	return nil
}

func (s *Service) GetPlayerState(ctx context.Context, playerID string) (PlayerState, error) {
	if err := s.ensurePlayer(ctx, playerID); err != nil {
		return PlayerState{}, err
	}

	var state PlayerState
	if err := s.db.QueryRow(ctx, `SELECT xp FROM players WHERE id=$1`, playerID).Scan(&state.XP); err != nil {
		return PlayerState{}, fmt.Errorf("player xp: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT coin_id, locked FROM coin_locks
		WHERE player_id=$1
		ORDER BY coin_id
	`, playerID)
	if err != nil {
		return PlayerState{}, fmt.Errorf("coin locks: %w", err)
	}
	for rows.Next() {
		var l CoinLock
		if err := rows.Scan(&l.ID, &l.Locked); err != nil {
			rows.Close()
			return PlayerState{}, fmt.Errorf("coin locks: %w", err)
		}
		state.CoinLocks = append(state.CoinLocks, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return PlayerState{}, fmt.Errorf("coin locks: %w", err)
	}

	rows, err = s.db.Query(ctx, `
		SELECT monster_id, captured FROM monster_captures
		WHERE player_id=$1
		ORDER BY monster_id
	`, playerID)
	if err != nil {
		return PlayerState{}, fmt.Errorf("monster captures: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m MonsterCapture
		if err := rows.Scan(&m.ID, &m.Captured); err != nil {
			return PlayerState{}, fmt.Errorf("monster captures: %w", err)
		}
		state.Monsters = append(state.Monsters, m)
	}
	if err := rows.Err(); err != nil {
		return PlayerState{}, fmt.Errorf("monster captures: %w", err)
	}

	return state, nil
}

func (s *Service) LockCoin(ctx context.Context, playerID, coinID string) (Result, error) {
	if err := s.ensurePlayer(ctx, playerID); err != nil {
		return Result{}, err
	}

	var locked bool
	err := s.db.QueryRow(ctx, `
		INSERT INTO coin_locks (player_id, coin_id, locked)
		VALUES ($1, $2, true)
		ON CONFLICT (player_id, coin_id) DO UPDATE SET locked=true, updated_at=now()
		WHERE coin_locks.locked=false
		RETURNING locked
	`, playerID, coinID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{Successful: false, Message: msgCoinAlreadyLocked}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("lock coin: %w", err)
	}
	return Result{Successful: true}, nil
}

func (s *Service) UnlockCoin(ctx context.Context, playerID, coinID string) (Result, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE coin_locks SET locked=false, updated_at=now()
		WHERE player_id=$1 AND coin_id=$2 AND locked=true
	`, playerID, coinID)
	if err != nil {
		return Result{}, fmt.Errorf("unlock coin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Result{Successful: false, Message: msgCoinNotLocked}, nil
	}
	return Result{Successful: true}, nil
}

func (s *Service) CaptureMonster(ctx context.Context, playerID, monsterID string) (Result, error) {
	if err := s.ensurePlayer(ctx, playerID); err != nil {
		return Result{}, err
	}

	var captured bool
	err := s.db.QueryRow(ctx, `
		INSERT INTO monster_captures (player_id, monster_id, captured)
		VALUES ($1, $2, true)
		ON CONFLICT (player_id, monster_id) DO UPDATE SET captured=true, updated_at=now()
		WHERE monster_captures.captured=false
		RETURNING captured
	`, playerID, monsterID).Scan(&captured)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{Successful: false, Message: msgMonsterAlreadyCaptured}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("capture monster: %w", err)
	}
	return Result{Successful: true}, nil
}
