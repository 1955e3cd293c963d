package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/drivegate/errors"
	"github.com/kbukum/drivegate/server/middleware"
)

// RespondWithError renders err in the error envelope. An *apperrors.AppError
// picks the status and body; anything else becomes a generic 500.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse(c.Writer.Header().Get(middleware.HeaderRequestID)))
}

// RespondOK sends data as a 200 JSON body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
