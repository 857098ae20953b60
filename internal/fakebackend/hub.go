package fakebackend

import "sync"

type peer interface {
	Send(frame []byte) error
	Scope() string
}

// hub — scope -> набор соединений. Рассылка под эксклюзивным локом,
// поэтому все участники scope видят фреймы в одном порядке.
type hub struct {
	mu     sync.Mutex
	scopes map[string]map[peer]struct{}
}

func newHub() *hub {
	return &hub{scopes: make(map[string]map[peer]struct{})}
}

func (h *hub) Add(p peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.scopes[p.Scope()]
	if !ok {
		ps = make(map[peer]struct{})
		h.scopes[p.Scope()] = ps
	}
	ps[p] = struct{}{}
}

func (h *hub) Remove(p peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ps, ok := h.scopes[p.Scope()]; ok {
		delete(ps, p)
		if len(ps) == 0 {
			delete(h.scopes, p.Scope())
		}
	}
}

func (h *hub) Broadcast(scope string, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for p := range h.scopes[scope] {
		_ = p.Send(frame) // best-effort
	}
}

// Count считает соединения в scope.
func (h *hub) Count(scope string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.scopes[scope])
}
