// Package web serves the RFM Workbench page and its JSON API.
package web

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	app := router.Group("/", h.SessionMiddleware())
	app.GET("/", h.Index)
	app.POST("/upload", h.Upload)
	app.POST("/rfm", h.RFM)
	app.GET("/rfm/download", h.Download)
	app.POST("/chat", h.Chat)
	app.POST("/reset", h.Reset)

	api := app.Group("/api")
	api.GET("/dataset", h.GetDataset)
	api.POST("/dataset", h.PostDataset)
	api.GET("/rfm", h.GetRFM)
	api.POST("/rfm", h.PostRFM)
	api.POST("/chat", h.PostChat)

	return router
}
