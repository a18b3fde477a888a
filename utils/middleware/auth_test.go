package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/luma-learn/luma-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testSecret = "test-secret"
	testIssuer = "https://idp.example.com"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	return db
}

func signToken(t *testing.T, secret, issuer, subject, role string, expiresAt time.Time) string {
	t.Helper()
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: subject + "@example.com",
		Role:  role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestApp(t *testing.T, db *gorm.DB, requireInstructor bool) *fiber.App {
	t.Helper()
	auth := NewAuthMiddleware(testSecret, testIssuer, db)

	app := fiber.New()
	handlers := []fiber.Handler{auth.Required()}
	if requireInstructor {
		handlers = append(handlers, auth.RequireInstructor())
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		identity, _ := GetIdentity(c)
		return c.JSON(fiber.Map{"user_id": identity.UserID})
	})
	app.Get("/protected", handlers...)
	return app
}

func request(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRequiredAcceptsValidToken(t *testing.T) {
	app := newTestApp(t, newTestDB(t), false)
	token := signToken(t, testSecret, testIssuer, "user-1", "", time.Now().Add(time.Hour))
	resp := request(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequiredRejectsMissingHeader(t *testing.T) {
	app := newTestApp(t, newTestDB(t), false)
	resp := request(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredRejectsMalformedHeader(t *testing.T) {
	app := newTestApp(t, newTestDB(t), false)
	resp := request(t, app, "Token abc")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredRejectsExpiredToken(t *testing.T) {
	app := newTestApp(t, newTestDB(t), false)
	token := signToken(t, testSecret, testIssuer, "user-1", "", time.Now().Add(-time.Hour))
	resp := request(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredRejectsWrongSecret(t *testing.T) {
	app := newTestApp(t, newTestDB(t), false)
	token := signToken(t, "other-secret", testIssuer, "user-1", "", time.Now().Add(time.Hour))
	resp := request(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredRejectsWrongIssuer(t *testing.T) {
	app := newTestApp(t, newTestDB(t), false)
	token := signToken(t, testSecret, "https://other.example.com", "user-1", "", time.Now().Add(time.Hour))
	resp := request(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireInstructorTrustsClaimForUnknownUser(t *testing.T) {
	app := newTestApp(t, newTestDB(t), true)
	token := signToken(t, testSecret, testIssuer, "new-user", model.RoleInstructor, time.Now().Add(time.Hour))
	resp := request(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireInstructorLocalRowOverridesClaim(t *testing.T) {
	db := newTestDB(t)
	user := model.User{ID: "user-1", Email: "user-1@example.com", Role: model.RoleStudent}
	require.NoError(t, db.Create(&user).Error)

	app := newTestApp(t, db, true)

	// The stale claim says instructor; the local row says student and wins.
	token := signToken(t, testSecret, testIssuer, "user-1", model.RoleInstructor, time.Now().Add(time.Hour))
	resp := request(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireInstructorRejectsStudent(t *testing.T) {
	app := newTestApp(t, newTestDB(t), true)
	token := signToken(t, testSecret, testIssuer, "user-1", model.RoleStudent, time.Now().Add(time.Hour))
	resp := request(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
