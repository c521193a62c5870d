package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/loykin/schemarun/internal/introspect"
	"github.com/loykin/schemarun/internal/reqctx"
)

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()
	if err := s.handle.DB.PingContext(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"driver":   s.handle.Dialect.Name(),
		"database": s.handle.Config.Name,
	})
}

func (s *Server) columns(c *gin.Context) {
	rc, _ := reqctx.Get(c)
	ctx, cancel := s.requestContext(c)
	defer cancel()

	cols, err := introspect.ShowColumns(ctx, rc.DB, s.handle.Dialect, c.Param("table"), c.QueryArray("field")...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cols)
}

func (s *Server) tenants(c *gin.Context) {
	rc, _ := reqctx.Get(c)
	ctx, cancel := s.requestContext(c)
	defer cancel()

	names, err := introspect.ListTenantDatabases(ctx, rc.DB, s.handle.Dialect, s.cfg.TenantPattern, s.handle.Config.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	body := gin.H{"databases": names}
	if table := c.Query("count"); table != "" {
		body["counts"] = introspect.CountTenantRows(ctx, rc.DB, s.handle.Dialect, names, table, s.handle.Config.Name)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) history(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run history is disabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	runs, err := s.ledger.List(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
