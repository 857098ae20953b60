package fakebackend

import "github.com/cwrk-planet/news-chat/internal/domain"

// Seed наполняет пустой Store демонстрационными статьями и комнатами.
func Seed(s *Store) {
	articles := []domain.Article{
		{Title: "Election turnout hits record high", Link: "https://news.example/1", Category: "정치", SourceName: "Example Daily"},
		{Title: "Markets rally after election results", Link: "https://news.example/2", Category: "경제", SourceName: "Example Daily"},
		{Title: "New battery chemistry doubles range", Link: "https://news.example/3", Category: "IT/과학", SourceName: "Tech Wire"},
		{Title: "Semiconductor exports rebound", Link: "https://news.example/4", Category: "경제", SourceName: "Tech Wire"},
		{Title: "Typhoon expected to make landfall", Link: "https://news.example/5", Category: headlineCategory, SourceName: "Weather Desk"},
	}
	for _, a := range articles {
		a.PublishedDate = "2024-05-01 09:00"
		s.AddArticle(a)
	}
	for _, topic := range []string{"election", "semiconductor", "typhoon"} {
		s.AddRoom(topic)
	}
}
