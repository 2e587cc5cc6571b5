// Package requestid tags every request with an ID that is echoed back to
// the client and attached to log lines.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header carries the request ID on the wire. A caller-supplied value
	// is trusted as-is so IDs survive proxy hops.
	Header = "X-Request-ID"

	contextKey = "request_id"
)

// Middleware ensures every request has an ID, generating one when the
// client sent none.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the current request's ID, or "" outside the middleware.
func Value(c *gin.Context) string {
	id, _ := c.Value(contextKey).(string)
	return id
}
