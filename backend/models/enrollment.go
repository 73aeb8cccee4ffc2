package models

import "time"

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

type EnrollmentProgress struct {
	CompletedLessons     []string `json:"completedLessons"`
	CompletedQuizzes     []string `json:"completedQuizzes"`
	CompletedAssignments []string `json:"completedAssignments"`
	OverallProgress      float64  `json:"overallProgress"`
}

// Done is the number of finished items of any kind.
func (p EnrollmentProgress) Done() int {
	return len(p.CompletedLessons) + len(p.CompletedQuizzes) + len(p.CompletedAssignments)
}

type Certificate struct {
	ID             string    `json:"id"`
	IssuedAt       time.Time `json:"issuedAt"`
	CertificateURL string    `json:"certificateUrl"`
}

type Enrollment struct {
	ID          string             `gorm:"primaryKey;size:64" json:"id"`
	UserID      string             `gorm:"uniqueIndex:idx_enrollment_user_course;size:64" json:"userId"`
	CourseID    string             `gorm:"index;uniqueIndex:idx_enrollment_user_course;size:64" json:"courseId"`
	EnrolledAt  time.Time          `json:"enrolledAt"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
	Progress    EnrollmentProgress `gorm:"serializer:json" json:"progress"`
	Certificate *Certificate       `gorm:"serializer:json" json:"certificate,omitempty"`
	Status      string             `gorm:"index;default:active" json:"status"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NewEnrollment starts an active enrollment with empty progress.
func NewEnrollment(userID, courseID string, now time.Time) *Enrollment {
	return &Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: now,
		Progress: EnrollmentProgress{
			CompletedLessons:     []string{},
			CompletedQuizzes:     []string{},
			CompletedAssignments: []string{},
		},
		Status: EnrollmentActive,
	}
}
