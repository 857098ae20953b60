package domain

import "strings"

type ScopeKind int

const (
	ScopeInvalid ScopeKind = iota
	ScopeGlobal
	ScopeRoom
)

// Scope — к какой поверхности привязана сессия: общий чат или конкретная комната.
type Scope struct {
	Kind   ScopeKind
	RoomID string
}

func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

func RoomScope(roomID string) Scope {
	return Scope{Kind: ScopeRoom, RoomID: strings.TrimSpace(roomID)}
}

func (s Scope) Valid() bool {
	switch s.Kind {
	case ScopeGlobal:
		return true
	case ScopeRoom:
		return s.RoomID != ""
	default:
		return false
	}
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeGlobal:
		return "global"
	case ScopeRoom:
		return "room:" + s.RoomID
	default:
		return "invalid"
	}
}
