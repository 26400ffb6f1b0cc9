package voice

// State is a pipeline run's position in the state machine.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateConverting
	StateRecognizing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateFetching:    "fetching",
	StateConverting:  "converting",
	StateRecognizing: "recognizing",
	StateDone:        "done",
	StateFailed:      "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
