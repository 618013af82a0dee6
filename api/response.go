package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"goldpawn/adapters/s3"
	"goldpawn/lifecycle"
	"goldpawn/marketplace"
	"goldpawn/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Result is the envelope of every JSON response except the notification endpoint.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Result{Success: true, Message: message, Data: data})
}

func reject(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Result{Success: false, Message: message})
}

// statusOf maps domain errors to HTTP status codes. Unknown errors are 500.
func statusOf(err error) int {
	var reachLimit *s3.ReachLimitError
	switch {
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, s3.ErrInsecureImage),
		errors.As(err, &reachLimit):
		return http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, lifecycle.ErrNotFound),
		errors.Is(err, marketplace.ErrListingNotFound),
		errors.Is(err, marketplace.ErrCommentNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrKindMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a failed Result. Internal errors are logged and replaced
// with a generic message.
func fail(c *gin.Context, op string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("op", op), slog.Any("error", err))
		reject(c, status, "Something went wrong, please try again later")
		return
	}
	reject(c, status, userMessage(err))
}

// userMessage drops the wrapping prefixes added by fmt.Errorf("[op] ...").
func userMessage(err error) string {
	msg := err.Error()
	for strings.HasPrefix(msg, "[") {
		end := strings.Index(msg, "] ")
		if end < 0 {
			break
		}
		msg = msg[end+2:]
	}
	return msg
}

// bindJSON decodes the request body into v, answering 400 on malformed input.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		reject(c, http.StatusBadRequest, "Malformed request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses a uuid path parameter, answering 404 when it is not one.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		reject(c, http.StatusNotFound, "Not found")
		return uuid.Nil, false
	}
	return id, true
}
