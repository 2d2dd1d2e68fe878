package middleware

import (
	"errors"
	"fmt"
	"strings"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	identityService "anoa.com/boardinghouse/internal/modules/identity/service"
	userRepo "anoa.com/boardinghouse/internal/modules/user/repository"
	userService "anoa.com/boardinghouse/internal/modules/user/service"
	"anoa.com/boardinghouse/pkg/apperror"
	"anoa.com/boardinghouse/pkg/logger"
	"anoa.com/boardinghouse/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const userIDKey = "user_id"

var errCredentialsMissing = fmt.Errorf("%w: authentication credentials were not provided", apperror.ErrUnauthorized)

type AuthMiddleware struct {
	tokens     userService.AuthService
	userRepo   userRepo.UserRepository
	identities identityService.IdentityService
}

func NewAuthMiddleware(tokens userService.AuthService, userRepo userRepo.UserRepository, identities identityService.IdentityService) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		userRepo:   userRepo,
		identities: identities,
	}
}

// RequireAuth accepts a bearer token from the Authorization header or, for
// websocket clients, the token query parameter.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			response.Abort(c, errCredentialsMissing)
			return
		}

		userID, err := m.tokens.ParseAccessToken(tokenString)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(userIDKey, userID)
		log := logger.FromContext(c.Request.Context()).With(zap.Uint("user_id", userID))
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))
		c.Next()
	}
}

// EnsureIdentity resolves the caller's identity once per request and stores
// the resulting access.Principal for the guards.
func (m *AuthMiddleware) EnsureIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(userIDKey)
		if userID == 0 {
			response.Abort(c, apperror.ErrUnauthorized)
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Abort(c, apperror.ErrUnauthorized)
				return
			}
			response.Abort(c, err)
			return
		}

		principal, err := m.identities.Principal(c.Request.Context(), user)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return requireRole(access.IsStaff)
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return requireRole(access.IsAdmin)
}

func requireRole(allowed func(entity.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := GetPrincipal(c)
		if err != nil {
			response.Abort(c, err)
			return
		}

		if !allowed(principal.Role) {
			response.Abort(c, apperror.ErrForbidden)
			return
		}

		c.Next()
	}
}
