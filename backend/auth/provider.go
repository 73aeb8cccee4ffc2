// Package auth signs users in against the hosted user store, the fixed demo
// accounts, or Google.
package auth

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"rdcshop/backend/models"
)

const MinPasswordLength = 6

// Provider is one way of establishing who a user is.
type Provider interface {
	Name() string
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	SignUp(ctx context.Context, in SignUpInput) (*models.User, error)
	// SignOut ends any server-side session state the provider keeps.
	SignOut(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type SignUpInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone,omitempty"`
	// Role is honored by the demo provider only; hosted sign-ups are students.
	Role string `json:"role,omitempty"`
}

var validate = validator.New()

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// newStudent is the record every hosted sign-up starts from.
func newStudent(name, email, phone string) *models.User {
	return &models.User{
		Name:             name,
		Email:            email,
		Phone:            phone,
		Avatar:           models.PlaceholderAvatar,
		Role:             models.RoleStudent,
		EnrolledCourses:  []string{},
		CompletedCourses: []string{},
		Preferences:      models.DefaultPreferences(),
		Profile:          models.Profile{Interests: []string{}},
	}
}
