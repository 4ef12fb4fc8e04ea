package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type PrincipalReader interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users PrincipalReader
	cache *cache.Cache
}

func NewAuthMiddleware(jwt TokenVerifier, users PrincipalReader, principalCache *cache.Cache) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:   jwt,
		users: users,
		cache: principalCache,
	}
}

// RequireAuth verifies the bearer token and resolves the subject claim to a
// stored user, which becomes the request principal. Everything fails closed
// with a 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		principal, err := m.resolvePrincipal(c, claims.Username)
		if err != nil {
			// token is valid but the account is gone: still a 401
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		SetPrincipal(c, principal)

		c.Next()
	}
}

func (m *AuthMiddleware) resolvePrincipal(c *gin.Context, username string) (user.User, error) {
	cacheKey := "principal:" + username

	if m.cache != nil {
		if v, ok := m.cache.Get(cacheKey); ok {
			if u, ok := v.(user.User); ok {
				return u, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := m.users.GetByUsername(ctx, username)
	if err != nil {
		return user.User{}, err
	}

	if m.cache != nil {
		m.cache.Set(cacheKey, u)
	}

	return u, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  http.StatusUnauthorized,
		"error":   "Unauthorized",
		"message": message,
		"path":    c.Request.URL.Path,
	})
}

// Helpers so handlers and tests don't need to know the magic key.

func SetPrincipal(c *gin.Context, u user.User) {
	c.Set(ctxPrincipalKey, u)
}

func PrincipalFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
