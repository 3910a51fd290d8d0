package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/healthrec/record-api/internal/policy"
	"github.com/healthrec/record-api/internal/service/account"
	"github.com/healthrec/record-api/pkg/auth"
)

const actorContextKey = "actor"

type AuthMiddleware struct {
	jwtSvc     auth.JWTService
	accountSvc account.Service
}

func NewAuthMiddleware(jwtSvc auth.JWTService, accountSvc account.Service) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc:     jwtSvc,
		accountSvc: accountSvc,
	}
}

// Authenticate verifies the bearer token and loads the actor, with its role
// profile, into the request context. The profile is loaded fresh on every
// request so assignment changes take effect immediately.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		claims, err := m.jwtSvc.ValidateAccessToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		actor, err := m.accountSvc.LoadActor(c.Request.Context(), claims.AccountID)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// ActorFrom returns the authenticated actor from the gin context.
func ActorFrom(c *gin.Context) (policy.Actor, bool) {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return policy.Actor{}, false
	}
	actor, ok := value.(policy.Actor)
	return actor, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": http.StatusUnauthorized, "message": message},
	})
}
