package refresher

// State is the lifecycle state of a Refresher.
type State int32

const (
	// StateNew is the state before Run is called.
	StateNew State = iota
	StateStarting
	StateRefreshing
	StateIdle
	StateStopping
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateStarting:
		return "starting"
	case StateRefreshing:
		return "refreshing"
	case StateIdle:
		return "idle"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
