package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const CSRFFieldName = "csrf_token"

// CSRF adapts gorilla/csrf to gin. Requests failing the token check are
// answered by gorilla and never reach the next handler.
func CSRF(authKey []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName(CSRFFieldName),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
		})),
	)

	return func(c *gin.Context) {
		passed := false
		h := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		}))

		req := c.Request
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}
		h.ServeHTTP(c.Writer, req)
		if !passed {
			c.Abort()
		}
	}
}
