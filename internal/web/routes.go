package web

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the UI pages and the embedded static assets.
func RegisterRoutes(router gin.IRouter, h *Handler) {
	staticFS, _ := fs.Sub(content, "static")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/login", h.LoginPageHandler)
	router.POST("/login", h.LoginHandler)
	router.POST("/logout", h.LogoutHandler)

	pages := router.Group("", h.RequireSession)
	{
		pages.GET("/", h.ViewHandler)
		pages.GET("/edit", h.EditPageHandler)
		pages.POST("/edit", h.EditActionHandler)
	}
}
