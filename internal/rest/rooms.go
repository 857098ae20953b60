package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/internal/errs"
)

// GET /api/chat/rooms?limit=  (limit <= 0 -> все комнаты)
func (c *Client) Rooms(ctx context.Context, limit int) ([]domain.RoomSummary, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out []domain.RoomSummary
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"api", "chat", "rooms"},
		query:  q,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.RoomSummary{}
	}

	return out, nil
}

// GET /api/chat/rooms/{roomID}
func (c *Client) Room(ctx context.Context, roomID string) (domain.Room, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return domain.Room{}, fmt.Errorf("%w: room id is required", errs.ErrInvalidInput)
	}
	var out domain.Room
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"api", "chat", "rooms", roomID},
		out:    &out,
	}); err != nil {
		return domain.Room{}, err
	}
	if out.Messages == nil {
		out.Messages = []domain.ChatMessage{}
	}
	if out.RelatedArticles == nil {
		out.RelatedArticles = []domain.Article{}
	}

	return out, nil
}
