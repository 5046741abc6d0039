package spawn

import (
	"fmt"

	"backend-arquest/internal/shared/geo"
)

type Category string

const (
	CategoryCoin    Category = "coin"
	CategoryMonster Category = "monster"
)

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryCoin, CategoryMonster:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown spawn category %q", s)
}

// Object is a game object anchored to a fixed real-world coordinate. Objects are
// immutable for the lifetime of a session; lock and capture state is tracked
// elsewhere.
type Object struct {
	ID          string    `json:"id"`
	Location    geo.Point `json:"location"`
	Category    Category  `json:"category"`
	Subtype     string    `json:"subtype"`
	RewardValue float64   `json:"reward_value"`
}
