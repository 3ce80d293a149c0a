package middleware

import (
	"elca-web/internal/database"
	"elca-web/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "CurrentUser"

// InjectUser loads the logged in user into the context. Sessions of
// deleted or locked users are dropped.
func InjectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uidRaw := sess.Get("user_id"); uidRaw != nil {
			uid, ok := uidRaw.(uint)
			var user models.User
			if ok && uid > 0 && database.DB.First(&user, uid).Error == nil && user.Status != models.UserLocked {
				c.Set(currentUserKey, user)
			} else {
				sess.Delete("user_id")
				sess.Delete("role")
				_ = sess.Save()
			}
		}

		c.Next()
	}
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
