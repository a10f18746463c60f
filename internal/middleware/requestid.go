package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request identifier on the wire.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is where the identifier lives in gin.Context, so the
	// request logger can pick it up without re-reading headers.
	RequestIDKey = "request_id"
)

// RequestIDMiddleware tags every request with an identifier. An X-Request-ID
// supplied by the caller or an upstream proxy is kept as-is; otherwise a
// fresh UUID is minted. The value is stored under RequestIDKey and echoed
// back in the response header so a client report can be matched against the
// structured logs.
//
// Register it before the logging middleware, or log lines lose the ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
