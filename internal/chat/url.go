package chat

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cwrk-planet/news-chat/internal/domain"
)

// Endpoint собирает адрес соединения:
//
//	global: <base>/ws/{username}
//	room:   <base>/ws/chat/{roomID}/{username}
func Endpoint(base string, scope domain.Scope, identity string) (string, error) {
	if !scope.Valid() {
		return "", ErrInvalidScope
	}
	if identity == "" {
		return "", ErrNoIdentity
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("chat: parse base url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("chat: unsupported scheme %q", u.Scheme)
	}

	var segments []string
	switch scope.Kind {
	case domain.ScopeGlobal:
		segments = []string{"ws", identity}
	case domain.ScopeRoom:
		segments = []string{"ws", "chat", scope.RoomID, identity}
	}
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	u.RawPath = u.EscapedPath() + "/" + strings.Join(segments, "/")
	u.Path, _ = url.PathUnescape(u.RawPath)
	u.RawQuery = ""
	u.Fragment = ""

	return u.String(), nil
}
