package auth

import (
	"context"
	"io"
	"log"
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"rdcshop/backend/config"
	"rdcshop/backend/kv"
	"rdcshop/backend/models"
	"rdcshop/backend/store/demostore"
)

func newDeps() (*kv.Memory, *demostore.Store) {
	mem := kv.NewMemory()
	return mem, demostore.New(mem)
}

var discard = log.New(io.Discard, "", 0)

// brokenDelete is a kv store whose deletes fail.
type brokenDelete struct {
	kv.Store
}

func (brokenDelete) Delete(context.Context, ...string) error {
	return errors.New("connection reset")
}

func newTestGoogle(s kv.Store, users *demostore.Store, profile GoogleProfile) *GoogleProvider {
	cfg := &config.Config{GoogleClientID: "id", GoogleClientSecret: "secret", GoogleRedirectURL: "http://localhost/cb"}
	g := NewGoogleProvider(cfg, s, users, discard)
	g.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "at"}, nil
	}
	g.fetchProfile = func(ctx context.Context, tok *oauth2.Token) (*GoogleProfile, error) {
		p := profile
		return &p, nil
	}
	return g
}

func startState(t *testing.T, g *GoogleProvider) string {
	t.Helper()
	authURL, err := g.AuthURL(context.Background())
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestDemoCredentialsMapToRoles(t *testing.T) {
	ctx := context.Background()
	mem, st := newDeps()
	p := NewDemoProvider(mem, st)

	for _, cred := range DemoCredentials {
		user, err := p.SignIn(ctx, cred.Email, cred.Password)
		require.NoError(t, err, cred.Email)
		assert.Equal(t, cred.Role, user.Role)
		assert.Equal(t, cred.Email, user.Email)

		role, err := p.SessionRole(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, cred.Role, role)
	}

	_, err := p.SignIn(ctx, "demo@edulms.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "teacher@edulms.com", "demo123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "nobody@example.com", "demo123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDemoUserProfiles(t *testing.T) {
	teacher, ok := DemoUser(models.RoleTeacher)
	require.True(t, ok)
	assert.Equal(t, "Dr. Rahman Ahmed", teacher.Name)
	assert.Equal(t, "PhD in Physics", teacher.Profile.Education)

	affiliate, _ := DemoUser(models.RoleAffiliate)
	assert.Equal(t, "AFF001", affiliate.Profile.ReferralCode)
	assert.Equal(t, 15.0, affiliate.Profile.CommissionRate)

	admin, _ := DemoUser(models.RoleAdmin)
	assert.Equal(t, "dark", admin.Preferences.Theme)

	_, ok = DemoUser("wizard")
	assert.False(t, ok)

	// Each call is an independent copy.
	a, _ := DemoUser(models.RoleStudent)
	a.EnrolledCourses = append(a.EnrolledCourses, "x")
	b, _ := DemoUser(models.RoleStudent)
	assert.Len(t, b.EnrolledCourses, 2)
}

func TestDemoSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	mem, st := newDeps()
	p := NewDemoProvider(mem, st)

	user, err := p.SignIn(ctx, "demo@edulms.com", "demo123456")
	require.NoError(t, err)

	// Changes to the stored record show through CurrentUser.
	user.AddEnrolledCourse("course-9")
	require.NoError(t, st.UpdateUser(ctx, user))
	cur, err := p.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, cur.HasEnrolled("course-9"))

	// Signing in again keeps the stored record.
	again, err := p.SignIn(ctx, "demo@edulms.com", "demo123456")
	require.NoError(t, err)
	assert.True(t, again.HasEnrolled("course-9"))

	require.NoError(t, p.SignOut(ctx, user.ID))
	_, err = p.CurrentUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotSignedIn)
	_, err = p.SessionRole(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestDemoSignUp(t *testing.T) {
	ctx := context.Background()
	mem, st := newDeps()
	p := NewDemoProvider(mem, st)
	p.now = func() time.Time { return time.Unix(0, 42) }

	user, err := p.SignUp(ctx, SignUpInput{Name: "Karim", Email: "karim@example.com", Role: "teacher"})
	require.NoError(t, err)
	assert.Equal(t, "demo-teacher-42", user.ID)
	assert.Equal(t, "Karim", user.Name)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.Equal(t, "+8801700000001", user.Phone, "phone falls back to the template")

	p.now = func() time.Time { return time.Unix(0, 43) }
	user, err = p.SignUp(ctx, SignUpInput{Name: "X", Email: "x@example.com", Role: "wizard"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "demo-student-43", user.ID)

	_, err = p.SignUp(ctx, SignUpInput{Name: "Y", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestDemoSignUpCannotTakeFixedAccounts(t *testing.T) {
	ctx := context.Background()
	mem, st := newDeps()
	p := NewDemoProvider(mem, st)

	for _, cred := range DemoCredentials {
		_, err := p.SignUp(ctx, SignUpInput{Name: "Squatter", Email: " " + cred.Email, Role: models.RoleStudent})
		assert.ErrorIs(t, err, ErrEmailInUse, cred.Email)
	}

	user, err := p.SignIn(ctx, "teacher@edulms.com", "teacher123456")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.Equal(t, "demo-teacher-001", user.ID)
}

func TestDemoSignInRejectsForeignRecord(t *testing.T) {
	ctx := context.Background()
	mem, st := newDeps()
	p := NewDemoProvider(mem, st)

	// A record written straight to the store under a fixed email, with
	// another role, is never handed out as the demo account.
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "other", Email: "admin@edulms.com", Role: models.RoleStudent}))
	_, err := p.SignIn(ctx, "admin@edulms.com", "admin123456")
	assert.ErrorIs(t, err, ErrEmailInUse)

	// A matching role is reused, as with the seeded admin.
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "admin", Email: "affiliate@edulms.com", Role: models.RoleAffiliate}))
	user, err := p.SignIn(ctx, "affiliate@edulms.com", "affiliate123456")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.ID)
	assert.Equal(t, models.RoleAffiliate, user.Role)
}

func TestPasswordProvider(t *testing.T) {
	ctx := context.Background()
	_, st := newDeps()
	p := NewPasswordProvider(st)
	p.cost = bcrypt.MinCost

	_, err := p.SignUp(ctx, SignUpInput{Name: "R", Email: "r@example.com", Password: "12345"})
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = p.SignUp(ctx, SignUpInput{Name: "R", Email: "bad", Password: "123456"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	user, err := p.SignUp(ctx, SignUpInput{Name: "Rahim", Email: " Rahim@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "rahim@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, models.DefaultPreferences(), user.Preferences)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = p.SignUp(ctx, SignUpInput{Name: "Again", Email: "rahim@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailInUse)

	got, err := p.SignIn(ctx, "rahim@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = p.SignIn(ctx, "rahim@example.com", "wrong!")
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, err = p.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = p.SignIn(ctx, "nope", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestGoogleCallback(t *testing.T) {
	ctx := context.Background()
	mem, st := newDeps()
	g := newTestGoogle(mem, st, GoogleProfile{Email: "Nadia@Gmail.com", VerifiedEmail: true, Name: "Nadia", Picture: "https://img/p.png"})

	state := startState(t, g)

	_, err := g.Callback(ctx, "forged", "code")
	assert.ErrorIs(t, err, ErrSignInCancelled)

	user, err := g.Callback(ctx, state, "code")
	require.NoError(t, err)
	assert.Equal(t, "nadia@gmail.com", user.Email)
	assert.Equal(t, models.ProviderGoogle, user.Provider)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "https://img/p.png", user.Avatar)

	_, err = g.Callback(ctx, state, "code")
	assert.ErrorIs(t, err, ErrSignInCancelled, "state is single use")

	// A second sign-in finds the same account.
	again, err := g.Callback(ctx, startState(t, g), "code")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestGoogleCallbackRejectsUnverifiedEmail(t *testing.T) {
	ctx := context.Background()
	mem, st := newDeps()
	require.NoError(t, st.CreateUser(ctx, &models.User{Email: "victim@example.com", Role: models.RoleTeacher}))
	g := newTestGoogle(mem, st, GoogleProfile{Email: "victim@example.com", Name: "Mallory"})

	_, err := g.Callback(ctx, startState(t, g), "code")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.True(t, IsUserError(err))
}

func TestGoogleCallbackNeedsStateConsumed(t *testing.T) {
	ctx := context.Background()
	mem, st := newDeps()
	g := newTestGoogle(brokenDelete{mem}, st, GoogleProfile{Email: "nadia@gmail.com", VerifiedEmail: true})

	_, err := g.Callback(ctx, startState(t, g), "code")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = st.GetUserByEmail(ctx, "nadia@gmail.com")
	assert.Error(t, err, "no account is created")
}

func TestGoogleNotConfigured(t *testing.T) {
	mem, st := newDeps()
	g := NewGoogleProvider(&config.Config{}, mem, st, discard)
	_, err := g.AuthURL(context.Background())
	assert.ErrorIs(t, err, ErrGoogleNotConfigured)
}

func TestRevocations(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	r := NewRevocations(mem)

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-2", time.Now().Add(-time.Hour)))
	revoked, _ = r.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked, "already expired tokens need no entry")
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Incorrect password", Message(ErrWrongPassword))
	assert.Equal(t, ErrUnavailable.Error(), Message(errors.New("dial tcp: refused")))
	assert.Equal(t, "", Message(nil))
	assert.True(t, IsUserError(ErrEmailInUse))
	assert.False(t, IsUserError(ErrUnavailable))
}
