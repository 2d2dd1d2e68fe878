package middleware

import (
	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// PrincipalKey is the gin context key holding the resolved access.Principal.
const PrincipalKey = "principal"

// GetPrincipal retrieves the caller resolved by EnsureIdentity.
func GetPrincipal(c *gin.Context) (access.Principal, error) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return access.Principal{}, apperror.ErrUnauthorized
	}

	p, ok := v.(access.Principal)
	if !ok {
		return access.Principal{}, apperror.ErrUnauthorized
	}
	return p, nil
}
