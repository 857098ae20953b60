package chat

import "github.com/cwrk-planet/news-chat/internal/domain"

const wireKindSystem = "system"

// Classify решает, как отрисовать сообщение для identity. Считается при отрисовке, на сообщении не хранится.
func Classify(msg domain.ChatMessage, identity string) domain.Kind {
	return ClassifyWith(msg, identity, domain.SystemSender)
}

// ClassifyWith делает то же с другим системным отправителем; пустой sentinel -> domain.SystemSender.
func ClassifyWith(msg domain.ChatMessage, identity, sentinel string) domain.Kind {
	if sentinel == "" {
		sentinel = domain.SystemSender
	}
	switch {
	case msg.Kind == wireKindSystem, msg.Username == sentinel:
		return domain.KindSystem
	case identity != "" && msg.Username == identity:
		return domain.KindOwn
	default:
		return domain.KindOther
	}
}
