package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleStudent   = "student"
	RoleTeacher   = "teacher"
	RoleAdmin     = "admin"
	RoleAffiliate = "affiliate"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderDemo     = "demo"
)

const PlaceholderAvatar = "/placeholder.svg?height=80&width=80"

// NewID returns a fresh document ID.
func NewID() string {
	return uuid.NewString()
}

// EnsureID assigns a fresh ID when id is empty.
func EnsureID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}

// ValidRole reports whether role is one of the four platform roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleAffiliate:
		return true
	}
	return false
}

type Preferences struct {
	Language      string `json:"language"` // bn, en
	Notifications bool   `json:"notifications"`
	Theme         string `json:"theme"` // light, dark
}

// DefaultPreferences is what every new account starts with.
func DefaultPreferences() Preferences {
	return Preferences{Language: "bn", Notifications: true, Theme: "light"}
}

// Profile holds the role-dependent part of a user. Fields that do not apply
// to the user's role stay empty.
type Profile struct {
	DateOfBirth string   `json:"dateOfBirth,omitempty"`
	Education   string   `json:"education,omitempty"`
	Interests   []string `json:"interests"`
	Location    string   `json:"location,omitempty"`

	// teacher
	Bio            string  `json:"bio,omitempty"`
	Specialization string  `json:"specialization,omitempty"`
	TotalStudents  int     `json:"totalStudents,omitempty"`
	Rating         float64 `json:"rating,omitempty"`

	// admin
	Department  string   `json:"department,omitempty"`
	Permissions []string `json:"permissions,omitempty"`

	// affiliate
	CommissionRate float64 `json:"commissionRate,omitempty"`
	TotalEarnings  float64 `json:"totalEarnings,omitempty"`
	ReferralCode   string  `json:"referralCode,omitempty"`
}

type User struct {
	ID               string                      `gorm:"primaryKey;size:64" json:"id"`
	Name             string                      `gorm:"not null" json:"name"`
	Email            string                      `gorm:"uniqueIndex;not null" json:"email"`
	Phone            string                      `json:"phone,omitempty"`
	Avatar           string                      `json:"avatar,omitempty"`
	PasswordHash     string                      `json:"-"`
	Provider         string                      `gorm:"default:password" json:"provider"`
	Role             string                      `gorm:"index;default:student" json:"role"`
	EnrolledCourses  datatypes.JSONSlice[string] `json:"enrolledCourses"`
	CompletedCourses datatypes.JSONSlice[string] `json:"completedCourses"`
	Preferences      Preferences                 `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Profile          Profile                     `gorm:"serializer:json" json:"profile"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

// HasEnrolled reports whether courseID is among the user's enrolled courses.
func (u *User) HasEnrolled(courseID string) bool {
	return contains(u.EnrolledCourses, courseID)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// appendUnique appends v unless it is already present.
func appendUnique(list datatypes.JSONSlice[string], v string) datatypes.JSONSlice[string] {
	if contains(list, v) {
		return list
	}
	return append(list, v)
}

// AddEnrolledCourse records courseID once.
func (u *User) AddEnrolledCourse(courseID string) {
	u.EnrolledCourses = appendUnique(u.EnrolledCourses, courseID)
}

// AddCompletedCourse records courseID once.
func (u *User) AddCompletedCourse(courseID string) {
	u.CompletedCourses = appendUnique(u.CompletedCourses, courseID)
}
