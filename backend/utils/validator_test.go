package utils

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,role"`
}

func TestFormatValidationErrors(t *testing.T) {
	err := Validate.Struct(signupInput{Email: "nope", Password: "123", Role: "wizard"})
	fields := FormatValidationErrors(err)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Equal(t, "role is invalid", fields["role"])

	assert.Nil(t, FormatValidationErrors(nil))
	assert.NoError(t, Validate.Struct(signupInput{Email: "a@b.com", Password: "123456", Role: "teacher"}))
}

func TestParseAndValidate(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var in signupInput
		if ok, err := ParseAndValidate(c, &in); !ok {
			return err
		}
		return c.SendString(in.Email)
	})

	send := func(body string) int {
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, send(`{"email":"a@b.com","password":"123456"}`))
	assert.Equal(t, fiber.StatusBadRequest, send(`{bad json`))

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","password":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.NotNil(t, body.Details)
}
