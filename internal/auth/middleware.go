package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/internal/accounts"
)

const principalKey = "auth.principal"

// Middleware verifies bearer tokens and resolves the request principal.
// Token issuance lives with the identity provider; only HS256 verification
// against the shared secret happens here.
type Middleware struct {
	secret []byte
	users  *accounts.Service
	logger *zap.Logger
}

func NewMiddleware(secret string, users *accounts.Service, logger *zap.Logger) *Middleware {
	return &Middleware{secret: []byte(secret), users: users, logger: logger}
}

// Authenticate requires a valid bearer token, provisions the user on first
// sight and stores the principal on the request context.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.verify(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"message": "authentication required"},
			})
			return
		}

		user, err := m.users.Provision(c.Request.Context(), claims)
		if err != nil {
			m.logger.Error("failed to provision user", zap.String("email", claims.Email), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"message": "authentication required"},
			})
			return
		}

		c.Set(principalKey, FromUser(user))
		c.Next()
	}
}

// RequireVerifiedAgent gates listing management to verified agents.
func (m *Middleware) RequireVerifiedAgent() gin.HandlerFunc {
	return requirePrincipal(func(p *Principal) bool { return p.CanPublishListings() },
		"only verified agents can manage listings")
}

// RequireProjectAdmin gates development-project management.
func (m *Middleware) RequireProjectAdmin() gin.HandlerFunc {
	return requirePrincipal(func(p *Principal) bool { return p.IsProjectAdmin() },
		"only project administrators have access")
}

// RequireStaff gates the review queue and other staff-only surfaces.
func (m *Middleware) RequireStaff() gin.HandlerFunc {
	return requirePrincipal(func(p *Principal) bool { return p.IsStaff }, "staff access required")
}

func requirePrincipal(check func(*Principal) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil || !check(p) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"message": message},
			})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the request principal, or nil on unauthenticated
// routes.
func PrincipalFrom(c *gin.Context) *Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}

func (m *Middleware) verify(header string) (accounts.Claims, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return accounts.Claims{}, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return accounts.Claims{}, fmt.Errorf("invalid token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return accounts.Claims{}, fmt.Errorf("unexpected claims type")
	}

	claims := accounts.Claims{}
	if v, ok := mapClaims["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := mapClaims["given_name"].(string); ok {
		claims.FirstName = v
	}
	if v, ok := mapClaims["family_name"].(string); ok {
		claims.LastName = v
	}
	if claims.Email == "" {
		return accounts.Claims{}, fmt.Errorf("token carries no email claim")
	}
	return claims, nil
}
