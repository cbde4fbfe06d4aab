package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/medstore/internal/auth"
)

// loadSessions verifies the session cookies, if present, and exposes the
// verified identity to handlers. Invalid or expired tokens are ignored.
func (s *Server) loadSessions(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		if claims, err := s.sessions.Verify(token); err == nil && claims.Role == auth.RoleCustomer {
			c.Set(ctxIdentity, claims.Identity)
		}
	}

	if token, err := c.Cookie(adminCookie); err == nil && token != "" {
		if claims, err := s.sessions.Verify(token); err == nil && claims.Role == auth.RoleAdmin {
			c.Set(ctxAdmin, claims.Identity)
		}
	}

	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	if c.GetString(ctxAdmin) == "" {
		respondError(c, http.StatusUnauthorized, "admin login required", "/admin-panel/login/")
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) setSessionCookie(c *gin.Context, name, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, token, int(s.sessions.MaxAge().Seconds()), "/", "", false, true)
}

func clearSessionCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", false, true)
}
