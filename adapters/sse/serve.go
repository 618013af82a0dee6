package sse

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// Serve writes every message from ch to the client as an SSE event named
// event, with a keep-alive comment event every keepAlive. It returns when the
// client goes away or ch is closed.
func Serve[T any](c *gin.Context, event string, ch <-chan T, keepAlive time.Duration) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	done := c.Request.Context().Done()
	c.Stream(func(io.Writer) bool {
		select {
		case <-done:
			return false
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(event, msg)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
