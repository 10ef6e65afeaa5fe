package rest

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/dfryer1193/memento/memento/application"
	"github.com/dfryer1193/memento/memento/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templates embed.FS

const postTemplate = "post.html"

type postPage struct {
	SiteTitle       string
	SiteDescription string
	Post            *domain.Post
	BodyHTML        template.HTML
	Snippet         string
	Error           string
}

// TodayPage renders today's post
func (h *PostHandler) TodayPage(c *gin.Context) {
	post, err := h.service.GetTodayPost(c.Request.Context())
	if errors.Is(err, domain.ErrPostNotFound) {
		h.renderPage(c, http.StatusNotFound, nil, "No post for today yet")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to load today's post")
		h.renderPage(c, http.StatusInternalServerError, nil, err.Error())
		return
	}
	h.renderPage(c, http.StatusOK, post, "")
}

// PostPage renders the post stored for the :date path parameter
func (h *PostHandler) PostPage(c *gin.Context) {
	post, err := h.service.GetPost(c.Request.Context(), c.Param("date"))
	if errors.Is(err, domain.ErrPostNotFound) {
		h.renderPage(c, http.StatusNotFound, nil, "Not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("date", c.Param("date")).Msg("Failed to load post")
		h.renderPage(c, http.StatusInternalServerError, nil, err.Error())
		return
	}
	h.renderPage(c, http.StatusOK, post, "")
}

func (h *PostHandler) renderPage(c *gin.Context, status int, post *domain.Post, errMessage string) {
	page := postPage{
		SiteTitle:       siteTitle,
		SiteDescription: siteDescription,
		Post:            post,
		Error:           errMessage,
	}

	if post != nil {
		body, err := h.renderer.Render(post.Body)
		if err != nil {
			log.Warn().Err(err).Str("date", post.Date).Msg("Failed to render post body")
			body = template.HTMLEscapeString(post.Body)
		}
		// The renderer escapes raw HTML, so its output is trusted here
		page.BodyHTML = template.HTML(body)
		page.Snippet = application.Snippet(post.Body)
	}

	c.HTML(status, postTemplate, page)
}
