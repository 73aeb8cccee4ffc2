package utils

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdcshop/backend/config"
)

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}

	token, issued, err := GenerateJWTToken("demo-student-001", "student", cfg)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := ParseJWTToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, "demo-student-001", claims.UserID)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, issued.ExpiresAt.Unix(), claims.ExpiresAt.Unix())

	_, err = ParseJWTToken(token, &config.Config{JWTSecret: "other"})
	assert.Error(t, err)
}

func TestExtractTokenClaims(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	token, _, err := GenerateJWTToken("u1", "admin", cfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		claims, err := ExtractTokenClaims(c, cfg)
		if err != nil {
			return err
		}
		return c.SendString(claims.UserID)
	})

	for _, header := range []string{token, "Bearer " + token} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "u1", string(body))
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
