package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/luma-learn/luma-api/model"
	"github.com/luma-learn/luma-api/utils/response"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Identity is the authenticated caller as asserted by the external
// identity provider. RoleClaim is only a hint: the local users row, when
// one exists, is the system of record for role decisions.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	RoleClaim string
}

// identityClaims is the token shape the identity provider issues.
type identityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// AuthMiddleware verifies bearer tokens issued by the identity provider.
// It never issues tokens itself.
type AuthMiddleware struct {
	secret string
	issuer string
	db     *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(secret, issuer string, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		secret: secret,
		issuer: issuer,
		db:     db,
	}
}

func (m *AuthMiddleware) parseToken(tokenString string) (*identityClaims, error) {
	claims := &identityClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Required is middleware that requires a valid identity-provider token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		claims, err := m.parseToken(parts[1])
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		c.Locals("identity", &Identity{
			UserID:    claims.Subject,
			Email:     claims.Email,
			Name:      claims.Name,
			RoleClaim: claims.Role,
		})

		return c.Next()
	}
}

// RequireInstructor gates authoring endpoints. The local users row wins
// over the provider's role claim; the claim only decides for callers who
// have never touched the store before.
func (m *AuthMiddleware) RequireInstructor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := GetIdentity(c)
		if !ok {
			return response.Unauthorized(c, "User not authenticated")
		}

		role := identity.RoleClaim
		var user model.User
		err := m.db.First(&user, "id = ?", identity.UserID).Error
		if err == nil {
			role = user.Role
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return response.InternalServerError(c, "Failed to load user")
		}

		if role != model.RoleInstructor {
			return response.Forbidden(c, "Instructor role required")
		}

		return c.Next()
	}
}

// GetIdentity retrieves the authenticated identity from the request context
func GetIdentity(c *fiber.Ctx) (*Identity, bool) {
	identity, ok := c.Locals("identity").(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
