package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/memento/api"
	"github.com/dfryer1193/memento/memento/application"
	"github.com/dfryer1193/memento/memento/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PostHandler struct {
	service  *application.PostService
	renderer application.BodyRenderer
}

func NewPostHandler(service *application.PostService, renderer application.BodyRenderer) *PostHandler {
	return &PostHandler{
		service:  service,
		renderer: renderer,
	}
}

// GetPost serves the stored post for ?date=YYYY-MM-DD, or for today when date is omitted
func (h *PostHandler) GetPost(c *gin.Context) {
	date := c.Query("date")

	if date == "" {
		post, err := h.service.GetTodayPost(c.Request.Context())
		if errors.Is(err, domain.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No post for today yet"})
			return
		}
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, api.FromDomain(post))
		return
	}

	post, err := h.service.GetPost(c.Request.Context(), date)
	if errors.Is(err, domain.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Not found"})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromDomain(post))
}

// ListPosts serves every stored post, newest first
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.service.ListPosts(c.Request.Context(), 0)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromDomainList(posts))
}

// Generate returns today's post, generating it first when needed. Only POST is accepted.
func (h *PostHandler) Generate(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		c.String(http.StatusMethodNotAllowed, "Only POST")
		return
	}

	result, err := h.service.GetOrCreateTodayPost(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.GenerateResponse{OK: true, Post: api.FromDomain(result.Post)})
}

// writeError maps service errors onto HTTP responses
func (h *PostHandler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		configErr   *domain.ConfigurationError
		providerErr *domain.ProviderError
		storageErr  *domain.StorageError
	)

	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Not found"})
	case errors.As(err, &configErr):
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: configErr.Error()})
	case errors.As(err, &providerErr):
		log.Error().Err(err).Int("status", providerErr.StatusCode).Msg("Text provider call failed")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
	case errors.As(err, &storageErr):
		log.Error().Err(err).Msg("Post storage failed")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Msg("Unexpected error")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
	}
}
