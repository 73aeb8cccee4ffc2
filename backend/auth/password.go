package auth

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"rdcshop/backend/models"
	"rdcshop/backend/store"
)

// PasswordProvider keeps bcrypt password hashes on the user records of the
// hosted store.
type PasswordProvider struct {
	users store.Users
	cost  int
}

func NewPasswordProvider(users store.Users) *PasswordProvider {
	return &PasswordProvider{users: users, cost: bcrypt.DefaultCost}
}

// HashPassword returns the bcrypt hash stored on password accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func (p *PasswordProvider) Name() string { return models.ProviderPassword }

func (p *PasswordProvider) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	user, err := p.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}

	if user.PasswordHash == "" {
		return nil, ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	return user, nil
}

func (p *PasswordProvider) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := newStudent(in.Name, email, in.Phone)
	user.PasswordHash = string(hash)
	user.Provider = models.ProviderPassword

	err = p.users.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrEmailInUse
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	return user, nil
}

func (p *PasswordProvider) SignOut(ctx context.Context, userID string) error {
	return nil
}

func (p *PasswordProvider) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := p.users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	return user, nil
}
