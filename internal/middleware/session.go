package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ContextKeySessionID is the Gin context key holding the caller's quiz session id.
const ContextKeySessionID = "quiz_session_id"

// SessionCookie carries the opaque quiz session token between requests.
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Extract copies the session cookie (if any) into the Gin context so handlers
// can read it with SessionID.
func (sc SessionCookie) Extract() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, err := c.Cookie(sc.Name); err == nil && v != "" {
			c.Set(ContextKeySessionID, v)
		}
		c.Next()
	}
}

// Set writes the session cookie: HttpOnly, SameSite=Lax, path /.
func (sc SessionCookie) Set(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, sessionID, int(sc.MaxAge.Seconds()), "/", "", sc.Secure, true)
}

// Clear expires the session cookie on the client.
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// SessionID returns the session id extracted from the cookie, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}
