package handlers

import (
	"net/http"

	"elca-web/internal/osit"

	"github.com/gin-gonic/gin"
)

func IndexPage(c *gin.Context) {
	render(c, http.StatusOK, "index.html", gin.H{
		"Osit": osit.New("Start", "/"),
	})
}

func NoAccess(c *gin.Context) {
	render(c, http.StatusForbidden, "noaccess.html", gin.H{
		"Osit": osit.New("No access", ""),
	})
}

func NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "error.html", gin.H{
		"Status":  http.StatusNotFound,
		"Message": "The page you requested does not exist.",
		"Osit":    osit.New("Not found", ""),
	})
}
