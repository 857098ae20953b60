package domain

import "time"

// SystemSender — зарезервированный username для системных объявлений.
const SystemSender = "📢"

// Kind — как сообщение отрисовывается.
type Kind int

const (
	KindOther Kind = iota
	KindOwn
	KindSystem
)

func (k Kind) String() string {
	switch k {
	case KindOwn:
		return "own"
	case KindSystem:
		return "system"
	default:
		return "other"
	}
}

// ChatMessage — одно сообщение в истории сессии, позиция = индекс в истории.
type ChatMessage struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	// Kind — явный тег типа с бекенда, пусто если бекенд его не шлёт.
	Kind string `json:"kind,omitempty"`
}

// ProfileMessage — сообщение из "моей активности" в профиле.
type ProfileMessage struct {
	Message      string    `json:"message"`
	RoomID       int64     `json:"room_id"`
	TopicKeyword string    `json:"topic_keyword"`
	CreatedAt    time.Time `json:"created_at"`
}
