package response

import (
	"net/http"

	"anoa.com/proofofgrind/pkg/address"
	"anoa.com/proofofgrind/pkg/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextAddressKey is where the auth middleware stores the caller address.
const ContextAddressKey = "address"

// GetAddress retrieves the authenticated caller address from the context
func GetAddress(c *gin.Context) (string, error) {
	raw := c.GetString(ContextAddressKey)
	if raw == "" {
		return "", apperror.ErrUnauthorized
	}

	addr, err := address.Normalize(raw)
	if err != nil {
		return "", apperror.ErrUnauthorized
	}

	return addr, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		zap.L().Error("internal error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
