package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"rdcshop/backend/auth"
	"rdcshop/backend/middleware"
	"rdcshop/backend/models"
	"rdcshop/backend/store"
	"rdcshop/backend/utils"
)

type UserController struct {
	Provider auth.Provider
	Users    store.Users
	Logger   *log.Logger
}

func NewUserController(provider auth.Provider, users store.Users, logger *log.Logger) *UserController {
	return &UserController{Provider: provider, Users: users, Logger: logger}
}

type UpdateUserRequest struct {
	Name        *string             `json:"name" validate:"omitempty,min=1,max=120"`
	Phone       *string             `json:"phone" validate:"omitempty,max=32"`
	Avatar      *string             `json:"avatar" validate:"omitempty,max=512"`
	Preferences *models.Preferences `json:"preferences"`
	Profile     *struct {
		DateOfBirth *string  `json:"dateOfBirth"`
		Education   *string  `json:"education"`
		Interests   []string `json:"interests"`
		Location    *string  `json:"location"`
		Bio         *string  `json:"bio"`
	} `json:"profile"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the signed-in user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user, err := uc.Provider.CurrentUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, uc.Logger, err, "User")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Changes the editable parts of the signed-in user
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input UpdateUserRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	ctx := c.UserContext()
	user, err := uc.Provider.CurrentUser(ctx, middleware.UserID(c))
	if err != nil {
		return respondError(c, uc.Logger, err, "User")
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if p := input.Preferences; p != nil {
		if p.Language != "bn" && p.Language != "en" {
			return utils.BadRequest(c, "Language must be bn or en")
		}
		if p.Theme != "light" && p.Theme != "dark" {
			return utils.BadRequest(c, "Theme must be light or dark")
		}
		user.Preferences = *p
	}
	if p := input.Profile; p != nil {
		if p.DateOfBirth != nil {
			user.Profile.DateOfBirth = *p.DateOfBirth
		}
		if p.Education != nil {
			user.Profile.Education = *p.Education
		}
		if p.Interests != nil {
			user.Profile.Interests = p.Interests
		}
		if p.Location != nil {
			user.Profile.Location = *p.Location
		}
		if p.Bio != nil {
			user.Profile.Bio = *p.Bio
		}
	}

	if err := uc.Users.UpdateUser(ctx, user); err != nil {
		return respondError(c, uc.Logger, err, "User")
	}
	return utils.Success(c, fiber.StatusOK, user)
}
