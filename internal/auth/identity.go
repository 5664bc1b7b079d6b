package auth

import (
	"github.com/gin-gonic/gin"
)

// Session and context keys for the established identity.
const (
	KeyUserID     = "user_id"
	KeyUserName   = "user_name"
	KeyAuthMethod = "auth_method"
)

// Identity is the normalized current identity, resolved once per request by
// RequireAuth regardless of how the session was established.
type Identity struct {
	UserID uint
	Name   string
	Method string // models.AuthMethodLocal or models.AuthMethodGoogle
}

// CurrentIdentity returns the identity resolved by RequireAuth. The zero
// value means the request never passed the auth gate.
func CurrentIdentity(c *gin.Context) Identity {
	id := Identity{}
	if v, ok := c.Get(KeyUserID); ok {
		if userID, ok := v.(uint); ok {
			id.UserID = userID
		}
	}
	if v, ok := c.Get(KeyUserName); ok {
		if name, ok := v.(string); ok {
			id.Name = name
		}
	}
	if v, ok := c.Get(KeyAuthMethod); ok {
		if method, ok := v.(string); ok {
			id.Method = method
		}
	}
	return id
}
