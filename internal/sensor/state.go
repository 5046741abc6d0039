package sensor

// Kind is the closed set of states a sensor stream can be in.
type Kind string

const (
	KindPrompt       Kind = "prompt"
	KindInitializing Kind = "initializing"
	KindActive       Kind = "active"
	KindDenied       Kind = "denied"
	KindUnavailable  Kind = "unavailable"
	KindTimeout      Kind = "timeout"
	KindUnsupported  Kind = "unsupported"
)

// State is a sensor state plus the user-facing message that goes with it.
type State struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`
}

var transitions = map[Kind]map[Kind]bool{
	KindPrompt:       {KindInitializing: true, KindUnsupported: true},
	KindInitializing: {KindActive: true, KindDenied: true, KindUnavailable: true, KindTimeout: true, KindUnsupported: true, KindPrompt: true},
	KindActive:       {KindUnavailable: true, KindTimeout: true, KindPrompt: true},
	KindUnavailable:  {KindInitializing: true, KindPrompt: true},
	KindTimeout:      {KindInitializing: true, KindPrompt: true},
	KindDenied:       {},
	KindUnsupported:  {},
}

// CanTransition reports whether a stream may move from one kind to another.
// Denied and Unsupported are terminal.
func CanTransition(from, to Kind) bool {
	return transitions[from][to]
}

// Retryable kinds can be left by starting the stream again.
func (k Kind) Retryable() bool {
	return k == KindUnavailable || k == KindTimeout
}

func (k Kind) Terminal() bool {
	return k == KindDenied || k == KindUnsupported
}

type machine struct {
	state State
}

func newMachine() machine {
	return machine{state: State{Kind: KindPrompt}}
}

func (m *machine) to(next State) bool {
	if !CanTransition(m.state.Kind, next.Kind) {
		return false
	}
	m.state = next
	return true
}
