package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RequireAuth is a middleware that ensures the user is authenticated
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(KeyUserID)

		if userID == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// User is authenticated - set context values for downstream handlers
		c.Set(KeyUserID, userID)
		c.Set(KeyUserName, session.Get(KeyUserName))
		c.Set(KeyAuthMethod, session.Get(KeyAuthMethod))

		c.Next()
	}
}
