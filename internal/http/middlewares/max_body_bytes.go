package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes is 1 MiB; the largest legitimate payload here is a
// registration body of a few hundred bytes.
const DefaultMaxBodyBytes int64 = 1 << 20

// MaxBodyBytes caps how much of the request body a handler can read.
// Oversized payloads fail at bind time instead of being buffered whole.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = DefaultMaxBodyBytes
	}

	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
