package ledger

import (
	"context"
	"fmt"
)

type CoinLock struct {
	ID     string `json:"id"`
	Locked bool   `json:"locked"`
}

type MonsterCapture struct {
	ID       string `json:"id"`
	Captured bool   `json:"captured"`
}

// PlayerState is the authoritative view of one player.
type PlayerState struct {
	XP        int64            `json:"xp"`
	CoinLocks []CoinLock       `json:"coinLocks"`
	Monsters  []MonsterCapture `json:"monsters"`
}

func (s PlayerState) Locks() map[string]bool {
	out := make(map[string]bool, len(s.CoinLocks))
	for _, l := range s.CoinLocks {
		out[l.ID] = l.Locked
	}
	return out
}

func (s PlayerState) Captures() map[string]bool {
	out := make(map[string]bool, len(s.Monsters))
	for _, m := range s.Monsters {
		out[m.ID] = m.Captured
	}
	return out
}

// Result is the ledger's answer to a mutation. An unsuccessful result is a
// refusal, not a transport failure.
type Result struct {
	Successful bool   `json:"successful"`
	Message    string `json:"message,omitempty"`
}

// Client is the remote authoritative ledger.
type Client interface {
	GetPlayerState(ctx context.Context, playerID string) (PlayerState, error)
	LockCoin(ctx context.Context, playerID, coinID string) (Result, error)
	UnlockCoin(ctx context.Context, playerID, coinID string) (Result, error)
	CaptureMonster(ctx context.Context, playerID, monsterID string) (Result, error)
}

// ActionError reports a mutation the ledger refused.
type ActionError struct {
	Message string
}

func (e *ActionError) Error() string {
	if e.Message == "" {
		return "ledger action failed"
	}
	return fmt.Sprintf("ledger action failed: %s", e.Message)
}

// Check turns a refused Result into an *ActionError.
func Check(res Result, err error) error {
	if err != nil {
		return err
	}
	if !res.Successful {
		return &ActionError{Message: res.Message}
	}
	return nil
}
