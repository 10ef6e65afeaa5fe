package rest

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/dfryer1193/memento/memento/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
	"github.com/rs/zerolog/log"
)

const (
	siteTitle       = "Daily Memento Mori"
	siteDescription = "A gentle daily reminder to live well — one short item a day."
	feedLength      = 30
)

// RSSFeed serves the most recent posts as RSS 2.0
func (h *PostHandler) RSSFeed(c *gin.Context) {
	h.serveFeed(c, "application/rss+xml; charset=utf-8", (*feeds.Feed).ToRss)
}

// AtomFeed serves the most recent posts as Atom
func (h *PostHandler) AtomFeed(c *gin.Context) {
	h.serveFeed(c, "application/atom+xml; charset=utf-8", (*feeds.Feed).ToAtom)
}

func (h *PostHandler) serveFeed(c *gin.Context, contentType string, encode func(*feeds.Feed) (string, error)) {
	feed, err := h.buildFeed(c, baseURL(c.Request))
	if err != nil {
		h.writeError(c, err)
		return
	}

	out, err := encode(feed)
	if err != nil {
		h.writeError(c, fmt.Errorf("failed to encode feed: %w", err))
		return
	}

	c.Data(http.StatusOK, contentType, []byte(out))
}

func (h *PostHandler) buildFeed(c *gin.Context, base string) (*feeds.Feed, error) {
	posts, err := h.service.ListPosts(c.Request.Context(), feedLength)
	if err != nil {
		return nil, err
	}

	feed := &feeds.Feed{
		Title:       siteTitle,
		Link:        &feeds.Link{Href: base + "/"},
		Description: siteDescription,
		Id:          base + "/",
	}

	for _, p := range posts {
		created, err := domain.ParseDateKey(p.Date)
		if err != nil {
			log.Warn().Str("date", p.Date).Msg("Skipping post with an invalid date key in feed")
			continue
		}

		if feed.Created.IsZero() || created.After(feed.Created) {
			feed.Created = created
		}

		link := base + "/posts/" + p.Date
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       feedItemTitle(p),
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Created:     created,
			Description: h.feedItemDescription(p),
		})
	}

	if feed.Created.IsZero() {
		feed.Created = time.Now()
	}

	return feed, nil
}

func feedItemTitle(p *domain.Post) string {
	switch {
	case p.Title != "" && p.Type != "":
		return p.Type + ": " + p.Title
	case p.Title != "":
		return p.Title
	case p.Type != "":
		return p.Type
	default:
		return siteTitle + " " + p.Date
	}
}

func (h *PostHandler) feedItemDescription(p *domain.Post) string {
	var sb strings.Builder

	body, err := h.renderer.Render(p.Body)
	if err != nil {
		log.Warn().Err(err).Str("date", p.Date).Msg("Falling back to escaped body in feed")
		body = "<p>" + html.EscapeString(p.Body) + "</p>"
	}
	sb.WriteString(body)

	if p.Takeaway != "" {
		sb.WriteString("<p><strong>Takeaway:</strong> ")
		sb.WriteString(html.EscapeString(p.Takeaway))
		sb.WriteString("</p>")
	}
	return sb.String()
}

// baseURL reconstructs the external origin of the request
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
