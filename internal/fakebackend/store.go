package fakebackend

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/internal/errs"
)

// headlineCategory в categorized не попадает.
const headlineCategory = "주요뉴스"

const (
	feedLimit    = 50
	profileLimit = 20
)

type userRow struct {
	domain.User
	hash string
}

type articleRow struct {
	domain.Article
	createdAt time.Time
}

type messageRow struct {
	username  string
	message   string
	createdAt time.Time
}

type roomRow struct {
	details  domain.RoomDetails
	messages []messageRow
}

// Store — состояние dev-бекенда в памяти.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users    map[string]*userRow // email -> user
	articles []*articleRow
	rooms    map[int64]*roomRow

	nextArticleID int64
	nextRoomID    int64
}

func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}

	return &Store{
		now:   now,
		users: make(map[string]*userRow),
		rooms: make(map[int64]*roomRow),
	}
}

func (s *Store) CreateUser(email, username, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := s.users[key]; ok {
		return errs.ErrConflict
	}
	s.users[key] = &userRow{User: domain.User{Email: email, Username: username}, hash: hash}

	return nil
}

func (s *Store) userByEmail(email string) (userRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return userRow{}, errs.ErrNotFound
	}

	return *u, nil
}

func (s *Store) setPasswordHash(email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return errs.ErrNotFound
	}
	u.hash = hash

	return nil
}

// AddArticle сам проставляет ID и время создания.
func (s *Store) AddArticle(a domain.Article) domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextArticleID++
	a.ID = s.nextArticleID
	s.articles = append(s.articles, &articleRow{Article: a, createdAt: s.now()})

	return a
}

func (s *Store) Feed() domain.ArticleFeed {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := s.sortedLocked(func(a, b *articleRow) bool {
		return a.createdAt.After(b.createdAt) || (a.createdAt.Equal(b.createdAt) && a.ID > b.ID)
	})
	popular := s.sortedLocked(func(a, b *articleRow) bool {
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		return a.createdAt.After(b.createdAt) || (a.createdAt.Equal(b.createdAt) && a.ID > b.ID)
	})

	categorized := make(map[string][]domain.Article)
	for _, a := range latest {
		if a.Category == "" || a.Category == headlineCategory {
			continue
		}
		categorized[a.Category] = append(categorized[a.Category], a)
	}

	return domain.ArticleFeed{Latest: latest, Popular: popular, Categorized: categorized}
}

func (s *Store) sortedLocked(less func(a, b *articleRow) bool) []domain.Article {
	rows := append([]*articleRow(nil), s.articles...)
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	if len(rows) > feedLimit {
		rows = rows[:feedLimit]
	}
	out := make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Article)
	}

	return out
}

func (s *Store) ArticlesByCategory(category string) []domain.Article {
	return s.filter(func(a *articleRow) bool { return a.Category == category })
}

func (s *Store) SearchArticles(query string) []domain.Article {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.Article{}
	}
	return s.filter(func(a *articleRow) bool { return strings.Contains(strings.ToLower(a.Title), q) })
}

func (s *Store) filter(keep func(a *articleRow) bool) []domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Article{}
	for i := len(s.articles) - 1; i >= 0; i-- {
		if keep(s.articles[i]) {
			out = append(out, s.articles[i].Article)
		}
	}

	return out
}

func (s *Store) IncrementView(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.articles {
		if a.ID == id {
			a.ViewCount++
			return nil
		}
	}

	return errs.ErrNotFound
}

func (s *Store) AddRoom(topic string) domain.RoomDetails {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRoomID++
	d := domain.RoomDetails{ID: s.nextRoomID, TopicKeyword: topic, CreatedAt: s.now().UTC()}
	s.rooms[d.ID] = &roomRow{details: d}

	return d
}

// Rooms — по убыванию суммы просмотров связанных статей; limit <= 0 -> все.
func (s *Store) Rooms(limit int) []domain.RoomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RoomSummary, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, domain.RoomSummary{
			ID:           r.details.ID,
			TopicKeyword: r.details.TopicKeyword,
			TotalViews:   s.viewsLocked(r.details.TopicKeyword),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalViews != out[j].TotalViews {
			return out[i].TotalViews > out[j].TotalViews
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

func (s *Store) HasRoom(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.rooms[id]
	return ok
}

func (s *Store) Room(id int64) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, errs.ErrNotFound
	}
	msgs := make([]domain.ChatMessage, 0, len(r.messages))
	for _, m := range r.messages {
		msgs = append(msgs, domain.ChatMessage{Username: m.username, Message: m.message})
	}
	related := []domain.Article{}
	for i := len(s.articles) - 1; i >= 0; i-- {
		if relatedTo(s.articles[i], r.details.TopicKeyword) {
			related = append(related, s.articles[i].Article)
		}
	}

	return domain.Room{Details: r.details, Messages: msgs, RelatedArticles: related}, nil
}

func (s *Store) AppendMessage(roomID int64, username, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return errs.ErrNotFound
	}
	r.messages = append(r.messages, messageRow{username: username, message: text, createdAt: s.now().UTC()})

	return nil
}

// ProfileMessages — последние сообщения пользователя по всем комнатам, новые первыми.
func (s *Store) ProfileMessages(username string) []domain.ProfileMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.ProfileMessage{}
	for _, r := range s.rooms {
		for _, m := range r.messages {
			if m.username != username {
				continue
			}
			out = append(out, domain.ProfileMessage{
				Message:      m.message,
				RoomID:       r.details.ID,
				TopicKeyword: r.details.TopicKeyword,
				CreatedAt:    m.createdAt,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > profileLimit {
		out = out[:profileLimit]
	}

	return out
}

func (s *Store) viewsLocked(topic string) int64 {
	var total int64
	for _, a := range s.articles {
		if relatedTo(a, topic) {
			total += a.ViewCount
		}
	}

	return total
}

func relatedTo(a *articleRow, topic string) bool {
	return topic != "" && strings.Contains(strings.ToLower(a.Title), strings.ToLower(topic))
}
