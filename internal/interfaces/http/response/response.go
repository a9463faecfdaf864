package response

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends a rejection in the gateway's wire shape:
// {error, message?, retryAfter?}. Anything that is not an AppError collapses
// to a generic 500 so internals never leak to the caller.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = domainerrors.InternalError(err)
	}

	body := gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	if appErr.RetryAfter > 0 {
		body["retryAfter"] = appErr.RetryAfter
		c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
	}

	c.JSON(appErr.Status, body)
}

// Abort sends the rejection and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
