package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"rdcshop/backend/kv"
	"rdcshop/backend/models"
	"rdcshop/backend/store"
)

const (
	demoUserKey     = "edulms_demo_user:"
	demoUserRoleKey = "edulms_demo_user_role:"

	SessionTTL = 72 * time.Hour
)

type DemoCredential struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DemoCredentials are the four fixed demo logins, one per role.
var DemoCredentials = []DemoCredential{
	{Role: models.RoleStudent, Email: "demo@edulms.com", Password: "demo123456"},
	{Role: models.RoleTeacher, Email: "teacher@edulms.com", Password: "teacher123456"},
	{Role: models.RoleAdmin, Email: "admin@edulms.com", Password: "admin123456"},
	{Role: models.RoleAffiliate, Email: "affiliate@edulms.com", Password: "affiliate123456"},
}

func reservedDemoEmail(email string) bool {
	for _, cred := range DemoCredentials {
		if email == cred.Email {
			return true
		}
	}
	return false
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DemoUser returns a fresh copy of the fixed demo account for role, or false
// when role is unknown.
func DemoUser(role string) (*models.User, bool) {
	base := models.User{
		Avatar:           models.PlaceholderAvatar,
		Provider:         models.ProviderDemo,
		Role:             role,
		EnrolledCourses:  []string{},
		CompletedCourses: []string{},
		Preferences:      models.DefaultPreferences(),
	}

	switch role {
	case models.RoleStudent:
		base.ID = "demo-student-001"
		base.Name = "Demo Student"
		base.Email = "demo@edulms.com"
		base.Phone = "+8801700000000"
		base.EnrolledCourses = []string{"course-1", "course-2"}
		base.CompletedCourses = []string{"course-1"}
		base.Profile = models.Profile{
			DateOfBirth: "1995-01-01",
			Education:   "HSC",
			Interests:   []string{"Physics", "Mathematics", "Programming"},
			Location:    "Dhaka, Bangladesh",
		}
		base.CreatedAt = date(2024, time.January, 1)
	case models.RoleTeacher:
		base.ID = "demo-teacher-001"
		base.Name = "Dr. Rahman Ahmed"
		base.Email = "teacher@edulms.com"
		base.Phone = "+8801700000001"
		base.Profile = models.Profile{
			DateOfBirth:    "1980-01-01",
			Education:      "PhD in Physics",
			Interests:      []string{"Physics", "Teaching", "Research"},
			Location:       "Dhaka, Bangladesh",
			Bio:            "Physics expert with 15+ years experience",
			Specialization: "HSC Physics, Quantum Mechanics",
			TotalStudents:  12500,
			Rating:         4.9,
		}
		base.CreatedAt = date(2023, time.January, 1)
	case models.RoleAdmin:
		base.ID = "demo-admin-001"
		base.Name = "Admin User"
		base.Email = "admin@edulms.com"
		base.Phone = "+8801700000002"
		base.Preferences.Theme = "dark"
		base.Profile = models.Profile{
			DateOfBirth: "1985-01-01",
			Education:   "MBA",
			Interests:   []string{"Management", "Education Technology", "Analytics"},
			Location:    "Dhaka, Bangladesh",
			Department:  "Platform Management",
			Permissions: []string{"all"},
		}
		base.CreatedAt = date(2022, time.January, 1)
	case models.RoleAffiliate:
		base.ID = "demo-affiliate-001"
		base.Name = "Affiliate Partner"
		base.Email = "affiliate@edulms.com"
		base.Phone = "+8801700000003"
		base.Profile = models.Profile{
			DateOfBirth:    "1990-01-01",
			Education:      "BBA",
			Interests:      []string{"Marketing", "Sales", "Business Development"},
			Location:       "Dhaka, Bangladesh",
			CommissionRate: 15,
			TotalEarnings:  50000,
			ReferralCode:   "AFF001",
		}
		base.CreatedAt = date(2023, time.June, 1)
	default:
		return nil, false
	}
	return &base, true
}

// DemoProvider accepts only the fixed demo credentials. Demo accounts are
// written to the demo store on first sign-in so enrollments and orders have
// a user record to attach to. The session mirrors what the browser kept:
// the user document and its role under per-user keys.
type DemoProvider struct {
	kv    kv.Store
	users store.Users
	now   func() time.Time
}

func NewDemoProvider(s kv.Store, users store.Users) *DemoProvider {
	return &DemoProvider{kv: s, users: users, now: time.Now}
}

func (p *DemoProvider) Name() string { return models.ProviderDemo }

func (p *DemoProvider) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	for _, cred := range DemoCredentials {
		if email != cred.Email || password != cred.Password {
			continue
		}
		template, _ := DemoUser(cred.Role)
		user, err := p.ensureUser(ctx, template)
		if err != nil {
			return nil, err
		}
		return user, p.startSession(ctx, user)
	}
	return nil, ErrInvalidCredentials
}

func (p *DemoProvider) ensureUser(ctx context.Context, template *models.User) (*models.User, error) {
	user, err := p.users.GetUser(ctx, template.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	template.UpdatedAt = p.now()
	err = p.users.CreateUser(ctx, template)
	if errors.Is(err, store.ErrDuplicate) {
		// The email is already taken, e.g. by the seeded admin account.
		existing, lookupErr := p.users.GetUserByEmail(ctx, template.Email)
		if lookupErr != nil {
			return nil, errors.Wrap(ErrUnavailable, lookupErr.Error())
		}
		if existing.Role != template.Role {
			return nil, ErrEmailInUse
		}
		return existing, nil
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	return template, nil
}

// SignUp clones the template of the requested role (student when unknown)
// under a fresh demo ID.
func (p *DemoProvider) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if reservedDemoEmail(email) {
		return nil, ErrEmailInUse
	}

	role := strings.ToLower(in.Role)
	user, ok := DemoUser(role)
	if !ok {
		role = models.RoleStudent
		user, _ = DemoUser(role)
	}

	now := p.now()
	user.ID = fmt.Sprintf("demo-%s-%d", role, now.UnixNano())
	user.Name = in.Name
	user.Email = email
	if in.Phone != "" {
		user.Phone = in.Phone
	}
	user.CreatedAt, user.UpdatedAt = now, now

	err := p.users.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrEmailInUse
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	return user, p.startSession(ctx, user)
}

func (p *DemoProvider) startSession(ctx context.Context, user *models.User) error {
	if err := kv.SetJSON(ctx, p.kv, demoUserKey+user.ID, user, SessionTTL); err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	if err := p.kv.Set(ctx, demoUserRoleKey+user.ID, user.Role, SessionTTL); err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

func (p *DemoProvider) SignOut(ctx context.Context, userID string) error {
	return p.kv.Delete(ctx, demoUserKey+userID, demoUserRoleKey+userID)
}

// CurrentUser returns the signed-in demo user, preferring the stored record
// over the session snapshot.
func (p *DemoProvider) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	var snapshot models.User
	err := kv.GetJSON(ctx, p.kv, demoUserKey+userID, &snapshot)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}

	user, err := p.users.GetUser(ctx, userID)
	if err != nil {
		return &snapshot, nil
	}
	return user, nil
}

// SessionRole returns the role recorded for the user's demo session.
func (p *DemoProvider) SessionRole(ctx context.Context, userID string) (string, error) {
	role, err := p.kv.Get(ctx, demoUserRoleKey+userID)
	if errors.Is(err, kv.ErrNotFound) {
		return "", ErrNotSignedIn
	}
	return role, err
}
