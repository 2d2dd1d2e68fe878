package response

import (
	"errors"
	"net/http"

	"anoa.com/boardinghouse/pkg/apperror"
	"anoa.com/boardinghouse/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("internal error", zap.Error(err))
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(code, gin.H{"error": "validation failed", "fields": validationErr.Fields})
		return
	}

	// Guard rejections carry no detail about why.
	if code == http.StatusForbidden {
		c.JSON(code, gin.H{"error": apperror.ErrForbidden.Error()})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	ResponseError(c, err)
	c.Abort()
}
