package domain

import "time"

type RoomSummary struct {
	ID           int64  `json:"id"`
	TopicKeyword string `json:"topic_keyword"`
	TotalViews   int64  `json:"total_views"`
}

type RoomDetails struct {
	ID           int64     `json:"id"`
	TopicKeyword string    `json:"topic_keyword"`
	CreatedAt    time.Time `json:"created_at"`
}

// Room — всё, что страница комнаты получает одним запросом.
type Room struct {
	Details         RoomDetails   `json:"details"`
	Messages        []ChatMessage `json:"messages"`
	RelatedArticles []Article     `json:"related_articles"`
}
