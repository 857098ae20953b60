package chat

import "errors"

var (
	ErrNoIdentity   = errors.New("chat: no identity")
	ErrInvalidScope = errors.New("chat: invalid scope")
	// ErrSuperseded — пока шёл dial, сессию перемонтировали или закрыли.
	ErrSuperseded = errors.New("chat: mount superseded")
	// ErrPeerClosed — бекенд закрыл соединение штатно (1000/1001).
	ErrPeerClosed = errors.New("chat: closed by peer")
	ErrMalformed  = errors.New("chat: malformed frame")
)
