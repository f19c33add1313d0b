package verify

// State is the lifecycle position of a Session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateQuerying
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateQuerying:
		return "querying"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
