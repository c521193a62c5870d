package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loykin/schemarun/internal/auth"
	"github.com/loykin/schemarun/internal/reqctx"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithRequest(c.Request.Method, c.Request.URL.Path).Debug("request served",
			"status", c.Writer.Status(), "duration", time.Since(start))
	}
}

// authenticate verifies the Bearer token and attaches a reqctx.Context
// bound to the server's database.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		claims, err := auth.Verify(tok, s.cfg.JWT)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				s.logger.Error("token verification misconfigured", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		rc, err := reqctx.FromClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		rc.DB = s.handle.DB
		reqctx.Set(c, rc)
		c.Next()
	}
}

func requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := reqctx.Get(c)
		if !ok || !rc.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.Next()
	}
}

func requireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := reqctx.Get(c)
		if !ok || !rc.IsSuperAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.Next()
	}
}
