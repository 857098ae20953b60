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

// GET /api/articles
func (c *Client) Articles(ctx context.Context) (domain.ArticleFeed, error) {
	var out domain.ArticleFeed
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"api", "articles"},
		out:    &out,
	}); err != nil {
		return domain.ArticleFeed{}, err
	}
	if out.Categorized == nil {
		out.Categorized = map[string][]domain.Article{}
	}

	return out, nil
}

// GET /api/articles/category/{category}
func (c *Client) ArticlesByCategory(ctx context.Context, category string) ([]domain.Article, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", errs.ErrInvalidInput)
	}
	return c.articleList(ctx, call{
		method: http.MethodGet,
		path:   []string{"api", "articles", "category", category},
	})
}

// GET /api/articles/search?q=
func (c *Client) SearchArticles(ctx context.Context, query string) ([]domain.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		// на пустой запрос в сеть не ходим
		return []domain.Article{}, nil
	}
	return c.articleList(ctx, call{
		method: http.MethodGet,
		path:   []string{"api", "articles", "search"},
		query:  url.Values{"q": {query}},
	})
}

func (c *Client) articleList(ctx context.Context, cl call) ([]domain.Article, error) {
	var out []domain.Article
	cl.out = &out
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Article{}
	}

	return out, nil
}

// POST /api/articles/{id}/view
func (c *Client) IncrementView(ctx context.Context, articleID int64) error {
	if articleID <= 0 {
		return fmt.Errorf("%w: article id must be positive", errs.ErrInvalidInput)
	}
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   []string{"api", "articles", strconv.FormatInt(articleID, 10), "view"},
	})
}
