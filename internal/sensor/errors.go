package sensor

import (
	"context"
	"errors"
)

var (
	ErrPermissionDenied = errors.New("sensor permission denied")
	ErrUnsupported      = errors.New("sensor api unsupported")
	ErrUnavailable      = errors.New("sensor unavailable")
	ErrTimeout          = errors.New("sensor request timed out")
)

// Sensor names a device sensor for user-facing messages.
type Sensor string

const (
	Position Sensor = "position"
	Heading  Sensor = "heading"
)

var messages = map[Sensor]map[Kind]string{
	Position: {
		KindDenied:      "Location access was denied. Allow location access to see nearby spawns.",
		KindUnavailable: "Your location is currently unavailable. Try again in a moment.",
		KindTimeout:     "Getting your location took too long. Try again.",
		KindUnsupported: "This device does not support location services.",
	},
	Heading: {
		KindDenied:      "Compass access was denied. Allow motion and orientation access to use the camera view.",
		KindUnavailable: "The compass is currently unavailable. Try again in a moment.",
		KindTimeout:     "The compass did not respond in time. Try again.",
		KindUnsupported: "This device does not provide a compass heading.",
	},
}

// StateFromError maps a platform error onto the state it puts a stream in.
// Errors outside the sensor taxonomy are treated as the sensor being unavailable.
func StateFromError(s Sensor, err error) State {
	var kind Kind
	switch {
	case errors.Is(err, ErrPermissionDenied):
		kind = KindDenied
	case errors.Is(err, ErrUnsupported):
		kind = KindUnsupported
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	default:
		kind = KindUnavailable
	}
	return State{Kind: kind, Message: messages[s][kind]}
}

// ErrorFromCode turns a device-reported error code into a sensor error. Unknown
// codes return nil.
func ErrorFromCode(code string) error {
	switch code {
	case "denied", "permission_denied":
		return ErrPermissionDenied
	case "unavailable", "position_unavailable":
		return ErrUnavailable
	case "timeout":
		return ErrTimeout
	case "unsupported":
		return ErrUnsupported
	}
	return nil
}
