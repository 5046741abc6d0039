package sensor

import (
	"math"
	"time"

	"backend-arquest/internal/shared/geo"

	"golang.org/x/time/rate"
)

// HeadingThrottle is the minimum spacing between accepted heading updates.
const HeadingThrottle = 100 * time.Millisecond

type HeadingSample struct {
	Degrees    float64   `json:"degrees"`
	CapturedAt time.Time `json:"captured_at"`
}

// HeadingStream is the compass stream. Readings are throttled to one per
// HeadingThrottle, measured on the reading timestamps.
type HeadingStream struct {
	*stream[OrientationReading, HeadingSample]
	limiter *rate.Limiter
	now     func() time.Time
}

func NewHeadingStream(p HeadingPlatform) *HeadingStream {
	h := &HeadingStream{
		limiter: rate.NewLimiter(rate.Every(HeadingThrottle), 1),
		now:     time.Now,
	}
	s := newStream[OrientationReading, HeadingSample](Heading, p)
	s.supported = p.Supported
	s.process = h.process
	h.stream = s
	return h
}

// process is called with the stream lock held.
func (h *HeadingStream) process(r OrientationReading) (HeadingSample, bool) {
	var raw float64
	switch {
	case r.CompassHeading != nil && !math.IsNaN(*r.CompassHeading):
		raw = *r.CompassHeading
	case r.Alpha != nil && !math.IsNaN(*r.Alpha):
		raw = *r.Alpha
	default:
		return HeadingSample{}, false
	}

	at := r.Timestamp
	if at.IsZero() {
		at = h.now()
	}
	if !h.limiter.AllowN(at, 1) {
		return HeadingSample{}, false
	}
	return HeadingSample{Degrees: geo.NormalizeDegrees(raw), CapturedAt: at}, true
}
