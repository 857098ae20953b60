package chat

import "context"

// Dialer открывает дуплексное соединение по url, в котором уже закодированы scope и identity.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Conn — одно соединение. ReadFrame зовёт только reader-горутина,
// WriteText и Close могут идти из других горутин.
type Conn interface {
	// ReadFrame блокируется до следующего фрейма. Штатное закрытие с той стороны -> ErrPeerClosed.
	ReadFrame() ([]byte, error)
	WriteText(text string) error
	// Close шлёт close-фрейм и рвёт транспорт; повторный вызов безопасен.
	Close() error
}

// IdentitySource — read-only доступ к текущему пользователю.
type IdentitySource interface {
	Identity() (string, bool)
}

// StaticIdentity — identity, не меняющаяся за время жизни процесса. Пустая строка = аноним.
type StaticIdentity string

func (s StaticIdentity) Identity() (string, bool) {
	return string(s), s != ""
}
