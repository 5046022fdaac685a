package auth

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/gin-gonic/gin"
)

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
	RoleUser  = "user"

	identityKey = "identity"
)

// Verifier checks a Firebase ID token. *auth.Client implements it.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// RoleLookup resolves the role of users whose token carries no role claim.
type RoleLookup func(ctx context.Context, uid string) (string, error)

type Identity struct {
	UID   string
	Email string
	Role  string
}

func AuthMiddleware(verifier Verifier, lookup RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}
		idToken, ok := BearerToken(authHeader)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
			c.Abort()
			return
		}

		token, err := verifier.VerifyIDToken(c, idToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ID token"})
			c.Abort()
			return
		}

		identity := IdentityFromToken(token)
		if identity.Role == "" && lookup != nil {
			if role, err := lookup(c, identity.UID); err == nil {
				identity.Role = role
			}
		}
		if identity.Role == "" {
			identity.Role = RoleUser
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRole lets the request through only for one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			c.Abort()
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		c.Abort()
	}
}

func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func IdentityFromToken(token *fbauth.Token) Identity {
	identity := Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if role, ok := token.Claims["role"].(string); ok {
		identity.Role = role
	}
	return identity
}

func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

// WithIdentity stores identity on c. Handlers under test use it in place of
// the middleware.
func WithIdentity(c *gin.Context, identity Identity) {
	c.Set(identityKey, identity)
}

// UserKey returns the caller's UID, or "" when unauthenticated.
func UserKey(c *gin.Context) string {
	identity, _ := FromContext(c)
	return identity.UID
}
