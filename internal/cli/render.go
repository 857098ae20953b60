package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cwrk-planet/news-chat/internal/chat"
	"github.com/cwrk-planet/news-chat/internal/domain"
)

// ownWidth — ширина колонки, к правому краю которой прижаты свои сообщения.
const ownWidth = 60

func renderMessage(w io.Writer, msg domain.ChatMessage, identity, sentinel string) {
	switch chat.ClassifyWith(msg, identity, sentinel) {
	case domain.KindSystem:
		fmt.Fprintf(w, "  *** %s\n", msg.Message)
	case domain.KindOwn:
		fmt.Fprintf(w, "%*s\n", ownWidth, msg.Message+" <me")
	default:
		fmt.Fprintf(w, "%s> %s\n", msg.Username, msg.Message)
	}
}

func renderArticles(w io.Writer, list []domain.Article) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no articles")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tSOURCE\tVIEWS")
	for _, a := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", a.ID, a.Category, a.Title, a.SourceName, a.ViewCount)
	}
	_ = tw.Flush()
}

func renderRooms(w io.Writer, rooms []domain.RoomSummary) {
	if len(rooms) == 0 {
		fmt.Fprintln(w, "no rooms yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tROOM\tTOPIC\tVIEWS")
	for i, r := range rooms {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", i+1, r.ID, r.TopicKeyword, r.TotalViews)
	}
	_ = tw.Flush()
}

func renderRoom(w io.Writer, room domain.Room, identity, sentinel string) {
	fmt.Fprintf(w, "# %s (room %d, since %s)\n", room.Details.TopicKeyword, room.Details.ID,
		room.Details.CreatedAt.Format("2006-01-02"))
	if len(room.RelatedArticles) > 0 {
		fmt.Fprintln(w, "\nrelated articles:")
		for _, a := range room.RelatedArticles {
			fmt.Fprintf(w, "  - %s (%s)\n", a.Title, a.Link)
		}
	}
	fmt.Fprintln(w)
	if len(room.Messages) == 0 {
		fmt.Fprintln(w, "no messages yet")
		return
	}
	for _, m := range room.Messages {
		renderMessage(w, m, identity, sentinel)
	}
}

func renderProfile(w io.Writer, p domain.Profile) {
	fmt.Fprintf(w, "%s <%s>\n", p.User.Username, p.User.Email)
	if len(p.Messages) == 0 {
		fmt.Fprintln(w, "no chat activity yet")
		return
	}
	fmt.Fprintln(w, "\nrecent messages:")
	for _, m := range p.Messages {
		fmt.Fprintf(w, "  %s  [#%d %s] %s\n", m.CreatedAt.Local().Format("01-02 15:04"), m.RoomID, m.TopicKeyword,
			strings.TrimSpace(m.Message))
	}
}

func renderState(w io.Writer, s chat.Snapshot) {
	switch s.State {
	case domain.StateConnecting:
		fmt.Fprintf(w, "-- connecting to %s chat...\n", scopeLabel(s.Scope))
	case domain.StateOpen:
		fmt.Fprintf(w, "-- joined %s chat as %s (/room <id>, /global, /quit)\n", scopeLabel(s.Scope), s.Identity)
	case domain.StateClosed:
		fmt.Fprintln(w, "-- disconnected")
	case domain.StateFailed:
		fmt.Fprintf(w, "-- connection failed: %s\n", s.Err)
	}
}

func scopeLabel(s domain.Scope) string {
	if s.Kind == domain.ScopeRoom {
		return "room " + s.RoomID
	}
	return "global"
}
