package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

// MapError classifies any failure into the status and message sent to the
// client. Unclassified failures become internal errors.
func MapError(err error) *apperrors.Error {
	return apperrors.FromOS(err)
}

func writeMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

func writeError(c *gin.Context, appErr *apperrors.Error) {
	writeMessage(c, appErr.Status, appErr.Message)
}
