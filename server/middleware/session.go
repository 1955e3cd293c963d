package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/drivegate/auth"
	apperrors "github.com/kbukum/drivegate/errors"
)

// ClaimsKey is the gin context key holding the validated session claims.
const ClaimsKey = "session_claims"

// RequireSession aborts with the validator's error unless the request
// carries a valid token in cookieName. A missing cookie is validated as an
// empty token so the validator decides between UNAUTHENTICATED and a
// configuration error.
func RequireSession(validator auth.TokenValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil {
			token = ""
		}
		claims, err := validator.ValidateToken(token)
		if err != nil {
			appErr, ok := apperrors.AsAppError(err)
			if !ok {
				appErr = apperrors.Unauthenticated().WithCause(err)
			}
			abortWithError(c, appErr)
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
