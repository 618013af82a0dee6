package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"goldpawn/notify"
)

// PostNotify sends the contact form, or a new-listing notice when itemTitle is set.
// It answers with {message} or {error} instead of the usual Result envelope.
// (ANY /api/notify)
func (impl *ServerImpl) PostNotify(c *gin.Context) {
	const op = "PostNotify"
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notify handler panicked", slog.String("op", op), slog.Any("panic", r))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
	}()

	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	var req notify.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Malformed request body: %v", err)})
		return
	}
	if err := impl.notifier.Deliver(c, req); err != nil {
		slog.Warn("Fail to send notification", slog.String("op", op), slog.Any("error", err))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
}
