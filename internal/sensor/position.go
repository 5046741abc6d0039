package sensor

import (
	"math"
	"time"

	"backend-arquest/internal/shared/geo"
)

type PositionSample struct {
	Point     geo.Point `json:"point"`
	AccuracyM float64   `json:"accuracy_m"`
	Timestamp time.Time `json:"timestamp"`
}

// PositionStream is the GPS stream. A denied permission is terminal for the
// stream only; nothing else in the game depends on it.
type PositionStream struct {
	*stream[PositionReading, PositionSample]
}

func NewPositionStream(p PositionPlatform) *PositionStream {
	s := newStream[PositionReading, PositionSample](Position, p)
	s.process = func(r PositionReading) (PositionSample, bool) {
		if math.IsNaN(r.Lat) || math.IsNaN(r.Lng) || math.Abs(r.Lat) > 90 || math.Abs(r.Lng) > 180 {
			return PositionSample{}, false
		}
		return PositionSample{
			Point:     geo.Point{Lat: r.Lat, Lng: r.Lng},
			AccuracyM: r.AccuracyM,
			Timestamp: r.Timestamp,
		}, true
	}
	return &PositionStream{stream: s}
}
