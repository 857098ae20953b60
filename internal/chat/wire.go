package chat

import (
	"encoding/json"
	"fmt"

	"github.com/cwrk-planet/news-chat/internal/domain"
)

// inbound — фрейм бекенда: {"username": "...", "message": "...", "kind"?: "..."}.
type inbound struct {
	Username *string `json:"username"`
	Message  *string `json:"message"`
	Kind     string  `json:"kind"`
}

// DecodeFrame разбирает входящий фрейм. На фрейм без username или message отдаёт ErrMalformed.
func DecodeFrame(data []byte) (domain.ChatMessage, error) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if in.Username == nil || in.Message == nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: username and message are required", ErrMalformed)
	}

	return domain.ChatMessage{
		Username: *in.Username,
		Message:  *in.Message,
		Kind:     in.Kind,
	}, nil
}

// EncodeFrame пишет фрейм во входящем формате, нужен dev-бекенду.
func EncodeFrame(msg domain.ChatMessage) ([]byte, error) {
	return json.Marshal(msg)
}
