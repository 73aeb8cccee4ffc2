package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"rdcshop/backend/models"
	"rdcshop/backend/services/pricing"
	"rdcshop/backend/store"
)

var ErrInvalidRating = errors.New("Rating must be between 1 and 5")

type CourseService struct {
	store store.Store
	now   func() time.Time
}

func (s *CourseService) List(ctx context.Context, f store.CourseFilter) ([]models.Course, int64, error) {
	courses, total, err := s.store.ListCourses(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list courses")
	}
	for i := range courses {
		courses[i].ApplyDefaults()
	}
	return courses, total, nil
}

// Get returns the course with read-time fallbacks filled in.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	c, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	return c, nil
}

// Create stores a new course. Content counts left at zero are derived from
// the syllabus.
func (s *CourseService) Create(ctx context.Context, c *models.Course) error {
	if c.Status == "" {
		c.Status = models.CourseStatusDraft
	}
	if c.Currency == "" {
		c.Currency = "BDT"
	}
	c.Features.IsFree = c.Price == 0
	lessons, quizzes, assignments := c.Syllabus.Items()
	if c.Content.TotalLessons == 0 {
		c.Content.TotalLessons = lessons
	}
	if c.Content.TotalQuizzes == 0 {
		c.Content.TotalQuizzes = quizzes
	}
	if c.Content.TotalAssignments == 0 {
		c.Content.TotalAssignments = assignments
	}
	return s.store.CreateCourse(ctx, c)
}

// Enroll signs userID up for a free course. Paid courses are enrolled in
// by completing an order. Enrolling twice returns the existing enrollment
// with created false.
func (s *CourseService) Enroll(ctx context.Context, userID, courseID string) (e *models.Enrollment, created bool, err error) {
	return s.enroll(ctx, userID, courseID, false)
}

func (s *CourseService) enroll(ctx context.Context, userID, courseID string, paid bool) (*models.Enrollment, bool, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.store.GetEnrollment(ctx, userID, courseID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, errors.Wrap(err, "look up enrollment")
	}
	if !paid && !course.Free() {
		return nil, false, ErrPaymentRequired
	}

	e := models.NewEnrollment(userID, courseID, s.now())
	err = s.store.CreateEnrollment(ctx, e)
	if errors.Is(err, store.ErrDuplicate) {
		// A concurrent request enrolled first.
		existing, err := s.store.GetEnrollment(ctx, userID, courseID)
		if err != nil {
			return nil, false, errors.Wrap(err, "look up enrollment")
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "create enrollment")
	}

	if err := s.updateUser(ctx, userID, func(u *models.User) { u.AddEnrolledCourse(courseID) }); err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// updateUser applies fn to the stored user. Users without a stored record
// are skipped.
func (s *CourseService) updateUser(ctx context.Context, userID string, fn func(*models.User)) error {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load user")
	}
	fn(u)
	return errors.Wrap(s.store.UpdateUser(ctx, u), "update user")
}

// ProgressUpdate marks at most one item of each kind as done.
type ProgressUpdate struct {
	LessonID     string `json:"lessonId"`
	QuizID       string `json:"quizId"`
	AssignmentID string `json:"assignmentId"`
}

func (u ProgressUpdate) empty() bool {
	return u.LessonID == "" && u.QuizID == "" && u.AssignmentID == ""
}

func appendOnce(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

// UpdateProgress records finished items and recomputes the overall
// percentage. Reaching 100% completes the enrollment and issues a
// certificate once.
func (s *CourseService) UpdateProgress(ctx context.Context, userID, courseID string, upd ProgressUpdate) (*models.Enrollment, error) {
	if upd.empty() {
		return nil, ErrInvalidInput
	}

	e, err := s.store.GetEnrollment(ctx, userID, courseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotEnrolled
	}
	if err != nil {
		return nil, errors.Wrap(err, "load enrollment")
	}
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for _, item := range []struct{ kind, id string }{
		{models.ItemLesson, upd.LessonID},
		{models.ItemQuiz, upd.QuizID},
		{models.ItemAssignment, upd.AssignmentID},
	} {
		if item.id != "" && !course.HasItem(item.kind, item.id) {
			return nil, errors.Wrapf(ErrInvalidInput, "unknown %s %q", item.kind, item.id)
		}
	}

	p := &e.Progress
	p.CompletedLessons = appendOnce(p.CompletedLessons, upd.LessonID)
	p.CompletedQuizzes = appendOnce(p.CompletedQuizzes, upd.QuizID)
	p.CompletedAssignments = appendOnce(p.CompletedAssignments, upd.AssignmentID)

	if total := course.TotalItems(); total > 0 {
		p.OverallProgress = pricing.Round(float64(p.Done()) / float64(total) * 100)
		if p.OverallProgress > 100 {
			p.OverallProgress = 100
		}
	}

	justCompleted := p.OverallProgress >= 100 && e.Status != models.EnrollmentCompleted
	if justCompleted {
		now := s.now()
		e.Status = models.EnrollmentCompleted
		e.CompletedAt = &now
		certID := models.NewID()
		e.Certificate = &models.Certificate{
			ID:             certID,
			IssuedAt:       now,
			CertificateURL: fmt.Sprintf("/certificates/%s", certID),
		}
	}

	if err := s.store.UpdateEnrollment(ctx, e); err != nil {
		return nil, errors.Wrap(err, "update enrollment")
	}
	if justCompleted {
		if err := s.updateUser(ctx, userID, func(u *models.User) { u.AddCompletedCourse(courseID) }); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (s *CourseService) Reviews(ctx context.Context, courseID string) ([]models.Review, error) {
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	reviews, err := s.store.ListReviews(ctx, courseID)
	return reviews, errors.Wrap(err, "list reviews")
}

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"max=200"`
	Comment string `json:"comment" validate:"max=5000"`
}

// AddReview stores a review. Reviews by enrolled students are marked
// verified.
func (s *CourseService) AddReview(ctx context.Context, userID, courseID string, in ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	_, err := s.store.GetEnrollment(ctx, userID, courseID)
	verified := err == nil

	r := &models.Review{
		UserID:     userID,
		CourseID:   courseID,
		Rating:     in.Rating,
		Title:      in.Title,
		Comment:    in.Comment,
		IsVerified: verified,
	}
	if err := s.store.CreateReview(ctx, r); err != nil {
		return nil, errors.Wrap(err, "create review")
	}
	return r, nil
}
