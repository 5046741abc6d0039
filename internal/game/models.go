package game

import (
	"time"

	"backend-arquest/internal/interaction"
	"backend-arquest/internal/sensor"
	"backend-arquest/internal/shared/geo"
	"backend-arquest/internal/visibility"
	"backend-arquest/internal/walking"
)

type SessionInfo struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	CreatedAt time.Time `json:"created_at"`
	XP        int64     `json:"xp"`
	Synced    bool      `json:"synced"`
}

// SensorRequest carries the permission outcomes the device got from its
// prompts. An empty outcome leaves that sensor untouched.
type SensorRequest struct {
	Position sensor.Outcome `json:"position"`
	Heading  sensor.Outcome `json:"heading"`
}

type SensorStatus struct {
	Position sensor.State `json:"position"`
	Heading  sensor.State `json:"heading"`
}

// PositionInput is either a fix or a device error code.
type PositionInput struct {
	sensor.PositionReading
	Error string `json:"error,omitempty"`
}

// HeadingInput is either an orientation event or a device error code.
type HeadingInput struct {
	sensor.OrientationReading
	Error string `json:"error,omitempty"`
}

type ReadingAck struct {
	Delivered int          `json:"delivered"`
	State     sensor.State `json:"state"`
}

type WalkingStatus struct {
	TotalMeters float64         `json:"total_meters"`
	Meters      int             `json:"meters"`
	LastOutcome walking.Outcome `json:"last_outcome,omitempty"`
}

type VisibleView struct {
	Position     *geo.Point          `json:"position"`
	Heading      *float64            `json:"heading"`
	XP           int64               `json:"xp"`
	RadiusM      float64             `json:"radius_m"`
	ToleranceDeg float64             `json:"tolerance_deg"`
	FOVDegrees   float64             `json:"fov_degrees"`
	Results      []visibility.Result `json:"results"`
}

type PlayerView struct {
	XP       int64                `json:"xp"`
	Remote   interaction.Snapshot `json:"remote"`
	Cached   interaction.Snapshot `json:"cached"`
	SyncedAt time.Time            `json:"synced_at"`
}

type InteractionView struct {
	SpawnID string `json:"spawn_id"`
	interaction.Resolution
}
