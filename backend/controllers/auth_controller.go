package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"rdcshop/backend/auth"
	"rdcshop/backend/config"
	"rdcshop/backend/middleware"
	"rdcshop/backend/models"
	"rdcshop/backend/utils"
)

type AuthController struct {
	Provider    auth.Provider
	Google      *auth.GoogleProvider
	Revocations *auth.Revocations
	Cfg         *config.Config
	Logger      *log.Logger
}

func NewAuthController(provider auth.Provider, google *auth.GoogleProvider, revocations *auth.Revocations, cfg *config.Config, logger *log.Logger) *AuthController {
	return &AuthController{Provider: provider, Google: google, Revocations: revocations, Cfg: cfg, Logger: logger}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required" example:"demo@edulms.com"`
	Password string `json:"password" validate:"required" example:"demo123456"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

func (ac *AuthController) issue(c *fiber.Ctx, status int, user *models.User) error {
	token, claims, err := utils.GenerateJWTToken(user.ID, user.Role, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	return utils.Success(c, status, TokenResponse{Token: token, ExpiresAt: claims.ExpiresAt, User: user})
}

// authError answers with the user-facing text of a sign-in error.
func (ac *AuthController) authError(c *fiber.Ctx, err error) error {
	msg := auth.Message(err)
	switch {
	case errors.Is(err, auth.ErrEmailInUse):
		return utils.Conflict(c, msg)
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		return utils.BadRequest(c, msg)
	case errors.Is(err, auth.ErrTooManyAttempts):
		return utils.TooManyRequests(c, msg)
	case errors.Is(err, auth.ErrGoogleNotConfigured):
		return utils.ServiceUnavailable(c, msg)
	case auth.IsUserError(err):
		return utils.Unauthorized(c, msg)
	}
	ac.Logger.Printf("auth: %+v", err)
	return utils.ServiceUnavailable(c, msg)
}

// [+] Register godoc
// @Summary Register a new user
// @Description Creates an account and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body auth.SignUpInput true "User registration data"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input auth.SignUpInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	user, err := ac.Provider.SignUp(c.UserContext(), input)
	if err != nil {
		return ac.authError(c, err)
	}
	return ac.issue(c, fiber.StatusCreated, user)
}

// [+] Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	user, err := ac.Provider.SignIn(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return ac.authError(c, err)
	}
	return ac.issue(c, fiber.StatusOK, user)
}

// Logout revokes the presented token and ends the provider session.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	ctx := c.UserContext()
	if err := ac.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return ac.authError(c, err)
	}
	if err := ac.Provider.SignOut(ctx, claims.UserID); err != nil {
		return ac.authError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusOK, "Signed out", nil)
}

// GoogleLogin returns the Google consent URL to send the browser to.
func (ac *AuthController) GoogleLogin(c *fiber.Ctx) error {
	if ac.Google == nil {
		return ac.authError(c, auth.ErrGoogleNotConfigured)
	}
	url, err := ac.Google.AuthURL(c.UserContext())
	if err != nil {
		return ac.authError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"url": url})
}

func (ac *AuthController) GoogleCallback(c *fiber.Ctx) error {
	if ac.Google == nil {
		return ac.authError(c, auth.ErrGoogleNotConfigured)
	}
	if c.Query("error") != "" {
		return ac.authError(c, auth.ErrSignInCancelled)
	}

	user, err := ac.Google.Callback(c.UserContext(), c.Query("state"), c.Query("code"))
	if err != nil {
		return ac.authError(c, err)
	}
	return ac.issue(c, fiber.StatusOK, user)
}

// DemoCredentials lists the fixed demo logins. Only available in demo mode.
func (ac *AuthController) DemoCredentials(c *fiber.Ctx) error {
	if !ac.Cfg.IsDemo() {
		return utils.NotFound(c, "Demo mode is not enabled")
	}
	return utils.Success(c, fiber.StatusOK, auth.DemoCredentials)
}
