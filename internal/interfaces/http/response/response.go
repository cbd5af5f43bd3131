package response

import (
	"github.com/gin-gonic/gin"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends the uniform failure body {"status":"FAILED","reasons":[...]}
func Error(c *gin.Context, err error) {
	appErr, ok := err.(*domainerrors.AppError)
	if !ok {
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Code, gin.H{
		"status":  "FAILED",
		"reasons": appErr.Reasons,
	})
}

// AbortError sends the failure body and stops the handler chain.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
