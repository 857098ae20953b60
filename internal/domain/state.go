package domain

// ConnState — состояние соединения сессии чата.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
	StateFailed
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateConnecting: "connecting",
	StateOpen:       "open",
	StateClosing:    "closing",
	StateClosed:     "closed",
	StateFailed:     "failed",
}

func (s ConnState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// Live: есть ли (или скоро будет) транспорт, который надо закрывать.
func (s ConnState) Live() bool {
	return s == StateConnecting || s == StateOpen
}
