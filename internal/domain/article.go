package domain

type Article struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Link          string `json:"link"`
	PublishedDate string `json:"published_date"`
	Category      string `json:"category"`
	SourceName    string `json:"source_name"`
	ViewCount     int64  `json:"view_count"`
}

// ArticleFeed — главная: свежие, популярные и по категориям.
type ArticleFeed struct {
	Latest      []Article            `json:"latest"`
	Popular     []Article            `json:"popular"`
	Categorized map[string][]Article `json:"categorized"`
}
