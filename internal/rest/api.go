package rest

import (
	"html/template"

	"github.com/gin-gonic/gin"
)

// NewApi registers the JSON API, the feeds and the HTML pages on router
func NewApi(router *gin.Engine, handler *PostHandler) {
	router.SetHTMLTemplate(template.Must(template.ParseFS(templates, "templates/*.html")))

	apiGroup := router.Group("api")
	{
		apiGroup.GET("/post", handler.GetPost)
		apiGroup.GET("/posts", handler.ListPosts)
		apiGroup.Any("/generate", handler.Generate)
	}

	router.GET("/feed.rss", handler.RSSFeed)
	router.GET("/feed.atom", handler.AtomFeed)

	router.GET("/", handler.TodayPage)
	router.GET("/posts/:date", handler.PostPage)
}
