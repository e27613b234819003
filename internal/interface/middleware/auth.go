package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/croptrack/croptrack/pkg/helpers"
	"github.com/croptrack/croptrack/pkg/response"
)

const CtxUserIDKey = "userID"

// LoginPath is where unauthenticated requests are pointed to.
const LoginPath = "/login"

// ResolveUserID validates the session cookie against Redis and returns the
// authenticated user id. ok is false when no valid session exists.
func ResolveUserID(c *gin.Context, rdb *redis.Client, tokens *helpers.TokenManager) (int64, bool) {
	token, err := c.Cookie(helpers.SessionCookieName)
	if err != nil || token == "" {
		return 0, false
	}
	claims, err := tokens.ParseSessionToken(token)
	if err != nil {
		return 0, false
	}
	if rdb != nil {
		key := "user:session:" + strconv.FormatInt(claims.UserID, 10)
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return 0, false
		}
	}
	return claims.UserID, true
}

// Auth guards protected routes. When the session resolves it injects the
// user id into the Gin context and invokes the handler; otherwise it
// short-circuits with 401 and the login target, never invoking the handler.
func Auth(rdb *redis.Client, tokens *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := ResolveUserID(c, rdb, tokens)
		if !ok {
			response.Error[any](c, http.StatusUnauthorized, "you must log in to access this page", gin.H{"login": LoginPath})
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}
