package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/samudrayan/backend/internal/verification"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// requestMeta captures the caller details recorded in verification audit rows.
func requestMeta(c *gin.Context) verification.RequestMeta {
	meta := verification.RequestMeta{}
	if c == nil {
		return meta
	}
	meta.IPAddress = c.ClientIP()
	if c.Request != nil {
		meta.UserAgent = c.Request.UserAgent()
	}
	return meta
}
