package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/internal/errs"
)

func newArticlesCommand(a *App) *cobra.Command {
	var (
		category string
		search   string
		popular  bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List news articles",
		Args:  cobra.NoArgs,
		Example: `  newschat articles
  newschat articles --popular
  newschat articles --category 경제
  newschat articles --search election`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				list []domain.Article
				err  error
			)
			switch {
			case search != "":
				list, err = a.api.SearchArticles(ctx, search)
			case category != "":
				list, err = a.api.ArticlesByCategory(ctx, category)
			default:
				var feed domain.ArticleFeed
				feed, err = a.api.Articles(ctx)
				list = feed.Latest
				if popular {
					list = feed.Popular
				}
			}
			if err != nil {
				return fmt.Errorf("load articles: %w", err)
			}
			if limit > 0 && len(list) > limit {
				list = list[:limit]
			}
			renderArticles(a.streams.Out, list)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only articles from this category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search article titles")
	cmd.Flags().BoolVar(&popular, "popular", false, "Sort by view count")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max articles to show (0 = all)")
	cmd.MarkFlagsMutuallyExclusive("category", "search", "popular")

	return cmd
}

func newViewCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view <articleID>",
		Short: "Count a view of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: article id must be a number", errs.ErrInvalidInput)
			}
			// best-effort: ошибка счётчика не мешает открыть статью
			if err := a.api.IncrementView(cmd.Context(), id); err != nil {
				fmt.Fprintf(a.streams.Err, "warning: view not counted: %v\n", err)
				return nil
			}
			fmt.Fprintf(a.streams.Out, "view counted for article %d\n", id)
			return nil
		},
	}
}

func newRoomsCommand(a *App) *cobra.Command {
	var (
		limit    int
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Show the most viewed discussion rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !watch {
				return a.printRooms(cmd.Context(), limit)
			}
			return a.watchRooms(cmd.Context(), limit, interval)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Number of rooms (0 = all)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh periodically until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "Refresh interval for --watch")

	return cmd
}

func (a *App) printRooms(ctx context.Context, limit int) error {
	rooms, err := a.api.Rooms(ctx, limit)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	renderRooms(a.streams.Out, rooms)
	return nil
}

// watchRooms перечитывает список каждые interval; ошибки печатаются, опрос продолжается.
func (a *App) watchRooms(ctx context.Context, limit int, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fmt.Fprintf(a.streams.Out, "\n-- top rooms at %s\n", time.Now().Format("15:04:05"))
		if err := a.printRooms(ctx, limit); err != nil {
			fmt.Fprintf(a.streams.Err, "warning: %v\n", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func newRoomCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "room <roomID>",
		Short: "Show a room: topic, related articles and chat history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			room, err := a.api.Room(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load room: %w", err)
			}
			a.initAuth(ctx)
			identity, _ := a.auth.Identity()
			renderRoom(a.streams.Out, room, identity, a.cfg.WS.Sentinel)
			return nil
		},
	}
}
