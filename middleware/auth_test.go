package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-0123456789-0123456789")

	app := fiber.New()
	app.Get("/protected", AuthMiddleware, func(c *fiber.Ctx) error {
		userID, err := GetUserID(c)
		if err != nil {
			return err
		}
		username, err := GetUsername(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user_id": userID, "username": username})
	})
	return app
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	app := authTestApp(t)

	signed := signToken(t, "test-secret-0123456789-0123456789", jwt.MapClaims{
		"user_id":  float64(7),
		"username": "alice",
		"is_admin": false,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAuthMiddlewareRejections(t *testing.T) {
	app := authTestApp(t)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "NotBearer abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{
			"wrong secret",
			"Bearer " + signToken(t, "some-other-secret-that-is-long-enough", jwt.MapClaims{
				"user_id": float64(7), "exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			"expired token",
			"Bearer " + signToken(t, "test-secret-0123456789-0123456789", jwt.MapClaims{
				"user_id": float64(7), "exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, 401, resp.StatusCode)
		})
	}
}

func TestWebSocketAuthMiddlewareCookieFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-0123456789-0123456789")

	app := fiber.New()
	app.Get("/ws", WebSocketAuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})

	signed := signToken(t, "test-secret-0123456789-0123456789", jwt.MapClaims{
		"user_id":  float64(7),
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signed})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	// No header and no cookie
	resp, err = app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
