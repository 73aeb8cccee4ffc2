package auth

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"rdcshop/backend/config"
	"rdcshop/backend/kv"
	"rdcshop/backend/models"
	"rdcshop/backend/store"
)

const (
	oauthStateKey = "oauth_state:"
	oauthStateTTL = 10 * time.Minute
)

// GoogleProfile is the part of the Google account a user record is built from.
type GoogleProfile struct {
	Email         string
	VerifiedEmail bool
	Name          string
	Picture       string
}

// GoogleProvider runs the OAuth authorization-code flow against Google and
// upserts the resulting account by email.
type GoogleProvider struct {
	oauth  *oauth2.Config
	kv     kv.Store
	users  store.Users
	logger *log.Logger

	exchange     func(ctx context.Context, code string) (*oauth2.Token, error)
	fetchProfile func(ctx context.Context, tok *oauth2.Token) (*GoogleProfile, error)
}

func NewGoogleProvider(cfg *config.Config, s kv.Store, users store.Users, logger *log.Logger) *GoogleProvider {
	g := &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		kv:     s,
		users:  users,
		logger: logger,
	}
	g.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return g.oauth.Exchange(ctx, code)
	}
	g.fetchProfile = g.userinfo
	return g
}

func (g *GoogleProvider) configured() bool {
	return g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

// AuthURL starts a sign-in and returns the Google consent URL. The state
// nonce is valid for ten minutes.
func (g *GoogleProvider) AuthURL(ctx context.Context) (string, error) {
	if !g.configured() {
		return "", ErrGoogleNotConfigured
	}
	state := uuid.NewString()
	if err := g.kv.Set(ctx, oauthStateKey+state, "1", oauthStateTTL); err != nil {
		return "", errors.Wrap(ErrUnavailable, err.Error())
	}
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

// Callback completes a sign-in. Each state nonce is accepted once.
func (g *GoogleProvider) Callback(ctx context.Context, state, code string) (*models.User, error) {
	if !g.configured() {
		return nil, ErrGoogleNotConfigured
	}
	if state == "" || code == "" {
		return nil, ErrSignInCancelled
	}
	if _, err := g.kv.Get(ctx, oauthStateKey+state); err != nil {
		return nil, ErrSignInCancelled
	}
	if err := g.kv.Delete(ctx, oauthStateKey+state); err != nil {
		// The nonce must be gone before the code is used.
		g.logger.Printf("google sign-in: dropping state %s: %v", state, err)
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}

	tok, err := g.exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	profile, err := g.fetchProfile(ctx, tok)
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	return g.upsert(ctx, profile)
}

func (g *GoogleProvider) userinfo(ctx context.Context, tok *oauth2.Token) (*GoogleProfile, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(g.oauth.TokenSource(ctx, tok)))
	if err != nil {
		return nil, err
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	profile := &GoogleProfile{Email: info.Email, Name: info.Name, Picture: info.Picture}
	if info.VerifiedEmail != nil {
		profile.VerifiedEmail = *info.VerifiedEmail
	}
	return profile, nil
}

func (g *GoogleProvider) upsert(ctx context.Context, profile *GoogleProfile) (*models.User, error) {
	email := normalizeEmail(profile.Email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !profile.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	user, err := g.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}

	user = newStudent(profile.Name, email, "")
	user.Provider = models.ProviderGoogle
	if profile.Picture != "" {
		user.Avatar = profile.Picture
	}
	if err := g.users.CreateUser(ctx, user); err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	return user, nil
}
