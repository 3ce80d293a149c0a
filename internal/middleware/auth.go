package middleware

import (
	"net/http"
	"net/url"

	"elca-web/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireAuth sends anonymous users to the login page and remembers where
// they came from.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole checks the role of the current user as stored in the
// database, so demoted users lose access without logging out.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			c.Redirect(http.StatusFound, "/noaccess")
			c.Abort()
			return
		}
		c.Next()
	}
}

func LoginURL(origin string) string {
	if origin == "" || origin == "/" {
		return "/login"
	}
	return "/login?origin=" + url.QueryEscape(origin)
}
